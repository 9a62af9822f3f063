package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/dataset"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/stats"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores flag defaults so that one execution does not leak into the next.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"generate", "validate", "dedup", "stats", "analyze"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestGenerateCommand_Flags(t *testing.T) {
	for _, name := range []string{"config", "n", "seed", "concurrency", "generator", "output-dir", "format"} {
		assert.NotNil(t, generateCmd.Flags().Lookup(name), "generate should have --%s flag", name)
	}
	assert.Equal(t, "c", generateCmd.Flags().Lookup("config").Shorthand)
}

func TestLoadJobEnvOverride(t *testing.T) {
	t.Setenv("TRAJGEN_N_TRAJECTORIES", "17")
	t.Setenv("TRAJGEN_GENERATOR_TYPE", "template")

	cfg, err := loadJob("")
	require.NoError(t, err)
	assert.Equal(t, 17, cfg.NTrajectories)
	assert.Equal(t, "template", cfg.Generator.Type)
}

func TestCommandsEndToEnd(t *testing.T) {
	outDir := t.TempDir()

	_, _, err := execute(t, "generate", "--n", "8", "--seed", "3", "--concurrency", "2", "--output-dir", outDir, "--log-level", "error")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(outDir, "*", dataset.TrajectoriesFile))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	file := matches[0]

	trajs, err := dataset.LoadJSONL(file)
	require.NoError(t, err)
	require.NotEmpty(t, trajs)

	t.Run("validate", func(t *testing.T) {
		stdout, stderr, err := execute(t, "validate", file)
		require.NoError(t, err)
		got, err := dataset.ReadJSONL(strings.NewReader(stdout))
		require.NoError(t, err)
		assert.Len(t, got, len(trajs), "generated trajectories were already validated")
		assert.Contains(t, stderr, "Validation")
	})

	t.Run("dedup", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "kept.jsonl")
		_, stderr, err := execute(t, "dedup", file, "-o", out)
		require.NoError(t, err)
		got, err := dataset.LoadJSONL(out)
		require.NoError(t, err)
		assert.Len(t, got, len(trajs), "generated trajectories were already deduplicated")
		assert.Contains(t, stderr, "Exact removed:  0")
	})

	t.Run("stats", func(t *testing.T) {
		stdout, _, err := execute(t, "stats", file)
		require.NoError(t, err)
		var s stats.Stats
		require.NoError(t, json.Unmarshal([]byte(stdout), &s))
		assert.Equal(t, len(trajs), s.Count)
	})

	t.Run("stats markdown", func(t *testing.T) {
		stdout, _, err := execute(t, "stats", file, "--markdown")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, "# Dataset Statistics"))
	})

	t.Run("analyze", func(t *testing.T) {
		stdout, _, err := execute(t, "analyze", file, "--json")
		require.NoError(t, err)
		var a stats.Analysis
		require.NoError(t, json.Unmarshal([]byte(stdout), &a))
		assert.Equal(t, len(trajs), a.Total)
	})
}

func TestCommandsReadSQLite(t *testing.T) {
	outDir := t.TempDir()

	_, _, err := execute(t, "generate", "--n", "6", "--seed", "5", "--format", "both", "--output-dir", outDir, "--log-level", "error")
	require.NoError(t, err)

	dbs, err := filepath.Glob(filepath.Join(outDir, "*", dataset.SQLiteFile))
	require.NoError(t, err)
	require.Len(t, dbs, 1)
	db := dbs[0]

	trajs, err := dataset.LoadJSONL(filepath.Join(filepath.Dir(db), dataset.TrajectoriesFile))
	require.NoError(t, err)
	require.NotEmpty(t, trajs)

	t.Run("stats latest run", func(t *testing.T) {
		stdout, _, err := execute(t, "stats", db)
		require.NoError(t, err)
		var s stats.Stats
		require.NoError(t, json.Unmarshal([]byte(stdout), &s))
		assert.Equal(t, stats.Summarize(trajs), s)
	})

	t.Run("action types", func(t *testing.T) {
		stdout, _, err := execute(t, "stats", db, "--action-types")
		require.NoError(t, err)
		var counts map[string]int
		require.NoError(t, json.Unmarshal([]byte(stdout), &counts))
		assert.Equal(t, stats.Summarize(trajs).ActionTypes, counts)
	})

	t.Run("action types needs db", func(t *testing.T) {
		_, _, err := execute(t, "stats", filepath.Join(filepath.Dir(db), dataset.TrajectoriesFile), "--action-types")
		require.Error(t, err)
	})

	t.Run("unknown run", func(t *testing.T) {
		stdout, _, err := execute(t, "analyze", db, "--run", "nope", "--json")
		require.NoError(t, err)
		var a stats.Analysis
		require.NoError(t, json.Unmarshal([]byte(stdout), &a))
		assert.Zero(t, a.Total)
	})

	t.Run("missing db is not created", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "none.db")
		_, _, err := execute(t, "stats", missing)
		require.Error(t, err)
		assert.NoFileExists(t, missing)
	})
}

func TestValidateMissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	out := renderSummary(&models.JobResult{
		JobName:   "demo",
		Requested: 10,
		Accepted:  8,
		Shortfall: 2,
		Generation: models.GenerationReport{
			Succeeded:           9,
			Failed:              1,
			FailureRate:         0.1,
			FailureRateExceeded: false,
		},
	})
	assert.Contains(t, out, "Job demo")
	assert.Contains(t, out, "8 / 10 (short 2)")
	assert.Contains(t, out, "9 ok, 1 failed, 0 skipped")
}
