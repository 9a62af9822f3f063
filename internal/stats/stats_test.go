package stats

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

func act(id string, ts int64, p models.ActionParams, elem string) models.BrowserAction {
	return models.BrowserAction{
		ActionID:         id,
		Timestamp:        ts,
		Params:           p,
		ElementType:      elem,
		ElementSelector:  "#" + id,
		URL:              "https://example-store.com/",
		IsIntentional:    true,
		Confidence:       1,
		ElementVisible:   true,
		ElementClickable: true,
	}
}

func traj(id string, wf models.WorkflowType, u models.UserType, achieved bool, actions ...models.BrowserAction) *models.Trajectory {
	t := &models.Trajectory{
		TrajectoryID: id,
		WorkflowType: wf,
		UserType:     u,
		DeviceType:   "desktop",
		BrowserType:  "chrome",
		Goal:         "purchase_product",
		GoalAchieved: achieved,
		Actions:      actions,
	}
	t.StampTiming()
	return t
}

func fixture() []*models.Trajectory {
	hidden := act("a3", 5000, models.ClickParams{}, "button")
	hidden.ElementVisible = false
	hidden.ElementClickable = false
	hidden.IsIntentional = false
	hidden.Confidence = 0.5

	return []*models.Trajectory{
		traj("t1", models.WorkflowECommerce, models.UserCasual, true,
			act("a1", 0, models.NavigateParams{}, "page"),
			act("a2", 2000, models.ClickParams{}, "button"),
			hidden,
		),
		traj("t2", models.WorkflowResearch, models.UserPowerUser, false,
			act("a1", 0, models.NavigateParams{}, "page"),
			act("a2", 1000, models.BackParams{}, "page"),
			act("a3", 2000, models.ForwardParams{}, "page"),
			act("a4", 3000, models.ScrollParams{}, "body"),
			act("a5", 4000, models.BackParams{}, "page"),
			act("a6", 6000, models.ClickParams{}, "link"),
		),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixture())

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 9, s.TotalActions)
	assert.Equal(t, map[int]int{3: 1, 6: 1}, s.LengthHistogram)
	assert.Equal(t, map[string]int{"e_commerce": 1, "research": 1}, s.WorkflowTypes)
	assert.Equal(t, map[string]int{"casual": 1, "power_user": 1}, s.UserTypes)
	assert.Equal(t, map[string]int{"desktop": 2}, s.DeviceTypes)
	assert.Equal(t, 3, s.ActionTypes["click"])
	assert.Equal(t, 2, s.ActionTypes["back"])
	assert.Equal(t, 5, s.ElementTypes["page"])

	assert.InDelta(t, 0.5, s.GoalAchievementRate, 1e-9)
	assert.InDelta(t, 4.5, s.MeanActions, 1e-9)
	assert.InDelta(t, 0.5, s.MeanErrorCount, 1e-9)
	assert.InDelta(t, 0.5, s.MedianErrorCount, 1e-9)
	assert.InDelta(t, 1.5, s.MeanBacktrackCount, 1e-9)
	assert.InDelta(t, 1.5, s.MedianBacktrackCount, 1e-9)
	// t1 averages 2.5s between actions, t2 1.2s.
	assert.InDelta(t, 1.85, s.MeanAvgActionInterval, 1e-9)
	assert.InDelta(t, 5.5, s.MeanDurationSec, 1e-9)
	assert.InDelta(t, 8.0/9.0, s.IntentionalRatio, 1e-9)
	assert.InDelta(t, 8.5/9.0, s.MeanConfidence, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.GoalAchievementRate)
	assert.NotNil(t, s.ActionTypes)
	assert.Empty(t, s.LengthHistogram)
}

func TestSummarizeIsDeterministic(t *testing.T) {
	in := fixture()
	if diff := cmp.Diff(Summarize(in), Summarize(in)); diff != "" {
		t.Errorf("summaries differ (-first +second):\n%s", diff)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{nil, 0},
		{[]float64{3}, 3},
		{[]float64{5, 1, 3}, 3},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, median(tt.in), "median(%v)", tt.in)
	}
}

func TestAnalyze(t *testing.T) {
	a := Analyze(fixture())

	assert.Equal(t, 2, a.Total)
	assert.Equal(t, ErrorStatistics{TotalActions: 9, NotVisible: 1, NotClickable: 1, BothUnreachable: 1}, a.Errors)

	require.Len(t, a.WithErrors, 1)
	assert.Equal(t, "t1", a.WithErrors[0].TrajectoryID)
	require.Len(t, a.WithErrors[0].Actions, 1)
	assert.Equal(t, "a3", a.WithErrors[0].Actions[0].ActionID)

	require.Len(t, a.FailedGoals, 1)
	assert.Equal(t, FailedGoal{TrajectoryID: "t2", Goal: "purchase_product", ActionCount: 6, LastActionType: models.ActionClick}, a.FailedGoals[0])

	require.Len(t, a.SkippedSteps, 1)
	assert.Equal(t, []models.ActionType{models.ActionNavigate, models.ActionClick, models.ActionClick}, a.SkippedSteps[0].Actions)
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("Dataset Statistics", Summarize(fixture()))

	assert.True(t, strings.HasPrefix(out, "# Dataset Statistics\n"))
	assert.Contains(t, out, "| Trajectories | 2 |")
	assert.Contains(t, out, "| Goal achievement rate | 50.0% |")
	assert.Contains(t, out, "| e_commerce | 1 | 50.0% |")
	assert.Contains(t, out, "| 6 | 1 |")
	assert.Less(t, strings.Index(out, "| e_commerce |"), strings.Index(out, "| research |"))
}

func TestRenderAnalysisLimitsSamples(t *testing.T) {
	out := RenderAnalysis(Analyze(fixture()), 0)
	assert.Contains(t, out, "Trajectories with errors: 1")
	assert.NotContains(t, out, "### t1")

	out = RenderAnalysis(Analyze(fixture()), 3)
	assert.Contains(t, out, "### t1")
	assert.Contains(t, out, "navigate -> click -> click")
}
