package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/stats"
)

func sampleTrajectory(id string) *models.Trajectory {
	base := models.BrowserAction{
		ElementType:      "button",
		URL:              "https://example-store.com/",
		PageTitle:        "Home - example-store.com",
		IsIntentional:    true,
		Confidence:       1,
		ElementVisible:   true,
		ElementClickable: true,
		SessionID:        "session_" + id,
		TabID:            "tab_" + id,
	}
	a1, a2, a3 := base, base, base
	a1.ActionID, a1.Timestamp, a1.Params, a1.ElementSelector = "action_001", 0, models.NavigateParams{}, "body"
	a2.ActionID, a2.Timestamp, a2.Params, a2.ElementSelector = "action_002", 1200, models.TypeParams{Value: "shoes"}, "#search"
	a3.ActionID, a3.Timestamp, a3.Params, a3.ElementSelector = "action_003", 2500, models.ClickParams{Coordinates: &models.Point{X: 10, Y: 20}}, "#go"

	t := &models.Trajectory{
		TrajectoryID:      id,
		SessionID:         "session_" + id,
		Actions:           []models.BrowserAction{a1, a2, a3},
		WorkflowType:      models.WorkflowECommerce,
		Domain:            "example-store.com",
		UserType:          models.UserCasual,
		DeviceType:        "desktop",
		BrowserType:       "firefox",
		Goal:              "browse_products",
		GoalAchieved:      true,
		SuccessIndicators: []string{"browse_products"},
		CreatedAt:         time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	t.StampTiming()
	return t
}

func sampleBatch(ids ...string) Batch {
	var trajs []*models.Trajectory
	for _, id := range ids {
		trajs = append(trajs, sampleTrajectory(id))
	}
	return Batch{
		Config:       models.JobConfig{Name: "unit", NTrajectories: len(ids)},
		Trajectories: trajs,
		Stats:        stats.Summarize(trajs),
		Result: models.JobResult{
			JobName:   "unit",
			Requested: len(ids),
			Accepted:  len(ids),
			EndedAt:   time.Date(2025, 1, 2, 3, 5, 0, 0, time.UTC),
		},
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	in := []*models.Trajectory{sampleTrajectory("traj_a"), sampleTrajectory("traj_b")}

	var sb strings.Builder
	require.NoError(t, WriteJSONL(&sb, in))
	assert.Equal(t, 2, strings.Count(sb.String(), "\n"))

	out, err := ReadJSONL(strings.NewReader(sb.String() + "\n\n"))
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSONLReportsLine(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("{}\n{not json}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadJSONLMissingFile(t *testing.T) {
	_, err := LoadJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
}

func TestJSONLWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewJSONLWriter(dir, 1)
	require.NoError(t, err)
	require.NoError(t, w.WriteConfig(models.JobConfig{Name: "unit"}))
	require.NoError(t, w.Write(context.Background(), sampleBatch("traj_a", "traj_b")))
	require.NoError(t, w.Close())

	for _, name := range []string{TrajectoriesFile, SampleFile, MetadataFile, StatisticsFile, ReportsFile, ConfigFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	trajs, err := LoadJSONL(filepath.Join(dir, TrajectoriesFile))
	require.NoError(t, err)
	assert.Len(t, trajs, 2)

	sample, err := LoadJSONL(filepath.Join(dir, SampleFile))
	require.NoError(t, err)
	require.Len(t, sample, 1)
	assert.Equal(t, "traj_a", sample[0].TrajectoryID)

	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, Version, meta.DatasetVersion)
	assert.Equal(t, 2, meta.TotalTrajectories)
	assert.Equal(t, "unit", meta.Config.Name)
}

func TestJSONLWriterRefusesExistingDir(t *testing.T) {
	dir := t.TempDir()
	_, err := NewJSONLWriter(dir, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_SaveAndLoadRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	b := sampleBatch("traj_b", "traj_a")

	runID, err := st.SaveRun(ctx, b)
	require.NoError(t, err)

	got, err := st.LoadRun(ctx, runID)
	require.NoError(t, err)
	if diff := cmp.Diff(b.Trajectories, got); diff != "" {
		t.Errorf("loaded run mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLite_ActionTypeCounts(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, st.Write(ctx, sampleBatch("traj_a", "traj_b")))

	counts, err := st.ActionTypeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"navigate": 2, "type": 2, "click": 2}, counts)
}

func TestSQLite_DuplicateTrajectoryRollsBack(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, st.Write(ctx, sampleBatch("traj_a")))

	err := st.Write(ctx, sampleBatch("traj_c", "traj_a"))
	require.Error(t, err)

	counts, err := st.ActionTypeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["navigate"], "failed run must leave no rows behind")
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestSQLite_LatestRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.LatestRun(ctx)
	require.Error(t, err)

	_, err = st.SaveRun(ctx, sampleBatch("traj_a"))
	require.NoError(t, err)
	second, err := st.SaveRun(ctx, sampleBatch("traj_b", "traj_c"))
	require.NoError(t, err)

	latest, err := st.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest)
}
