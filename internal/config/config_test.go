package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/config"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

func TestLoadJobConfig(t *testing.T) {
	jobYaml := `name: test-job
output_dir: test-output
n_trajectories: 25
n_concurrent: 8
seed: 7
max_failure_rate: 0.5
workflow_distribution:
  e_commerce: 1
  research: 3
user_type_distribution:
  casual: 1
length_distribution:
  - {min: 3, max: 5, weight: 1}
  - {min: 6, max: 10, weight: 2}
generator:
  type: anthropic
  model: claude-haiku-4-5
  requests_per_second: 2
  burst: 4
dedup:
  near_duplicate: true
  near_threshold: 0.85
validation:
  soft_issue_threshold: 3
output:
  format: both
  sample_size: 5
log:
  level: debug
  format: json
`
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(jobYaml), 0644))

	cfg, err := config.LoadJobConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "test-job", cfg.Name)
	assert.Equal(t, "test-output", cfg.OutputDir)
	assert.Equal(t, 25, cfg.NTrajectories)
	assert.Equal(t, 8, cfg.NConcurrent)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 0.5, cfg.MaxFailureRate)
	assert.Equal(t, map[models.WorkflowType]float64{models.WorkflowECommerce: 1, models.WorkflowResearch: 3}, cfg.WorkflowDistribution)
	assert.Equal(t, map[models.UserType]float64{models.UserCasual: 1}, cfg.UserTypeDistribution)
	assert.Equal(t, []models.LengthBucket{{Min: 3, Max: 5, Weight: 1}, {Min: 6, Max: 10, Weight: 2}}, cfg.LengthDistribution)

	assert.Equal(t, "anthropic", cfg.Generator.Type)
	assert.Equal(t, "claude-haiku-4-5", cfg.Generator.Model)
	assert.Equal(t, 2.0, cfg.Generator.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Generator.Burst)
	// Untouched nested fields keep their defaults.
	assert.Equal(t, 4096, cfg.Generator.MaxTokens)
	assert.Equal(t, float64(config.DefaultCallTimeoutSec), cfg.Generator.CallTimeoutSec)

	assert.True(t, cfg.Dedup.Enabled)
	assert.True(t, cfg.Dedup.NearDuplicate)
	assert.Equal(t, 0.85, cfg.Dedup.NearThreshold)
	assert.Equal(t, 3, cfg.Validation.SoftIssueThreshold)
	assert.Equal(t, 10000, cfg.Validation.ViewportWidth)
	assert.Equal(t, models.OutputBoth, cfg.Output.Format)
	assert.Equal(t, 5, cfg.Output.SampleSize)
	assert.Equal(t, models.LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestParseJobConfigDefaults(t *testing.T) {
	cfg, err := config.ParseJobConfig([]byte("name: minimal\n"))
	require.NoError(t, err)

	want := config.DefaultJobConfig()
	want.Name = "minimal"
	assert.Equal(t, want, cfg)
}

func TestParseJobConfigFillsZeroValues(t *testing.T) {
	cfg, err := config.ParseJobConfig([]byte(`output_dir: ""
n_trajectories: 0
generator:
  type: ""
output:
  format: ""
`))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, config.DefaultNTrajectories, cfg.NTrajectories)
	assert.Equal(t, "template", cfg.Generator.Type)
	assert.Equal(t, models.OutputJSONL, cfg.Output.Format)
}

func TestParseJobConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative count", "n_trajectories: -1\n", "n_trajectories"},
		{"failure rate above one", "max_failure_rate: 1.5\n", "max_failure_rate"},
		{"unknown workflow", "workflow_distribution:\n  banking: 1\n", "unknown workflow type"},
		{"negative workflow weight", "workflow_distribution:\n  research: -1\n", "must not be negative"},
		{"all zero workflow weights", "workflow_distribution:\n  research: 0\n", "must not all be zero"},
		{"unknown user type", "user_type_distribution:\n  robot: 1\n", "unknown user type"},
		{"bucket below minimum", "length_distribution:\n  - {min: 2, max: 4, weight: 1}\n", "length_distribution[0]"},
		{"bucket above maximum", "length_distribution:\n  - {min: 8, max: 12, weight: 1}\n", "length_distribution[0]"},
		{"inverted bucket", "length_distribution:\n  - {min: 6, max: 4, weight: 1}\n", "length_distribution[0]"},
		{"near threshold", "dedup:\n  near_threshold: 2\n", "near_threshold"},
		{"catalog path and url", "catalog:\n  path: a.toml\n  url: http://x\n", "both"},
		{"output format", "output:\n  format: parquet\n", "output.format"},
		{"bad yaml", "n_trajectories: [\n", "parsing job config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseJobConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadJobConfigMissingFile(t *testing.T) {
	_, err := config.LoadJobConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading job config")
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	require.NoError(t, config.InitLogger(models.LogConfig{Level: "warn", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))
	assert.True(t, zap.L().Core().Enabled(zap.WarnLevel))

	require.NoError(t, config.InitLogger(models.LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.Error(t, config.InitLogger(models.LogConfig{Level: "loud"}))
	require.Error(t, config.InitLogger(models.LogConfig{Level: "info", Format: "xml"}))
}

func TestLoadSampleJob(t *testing.T) {
	cfg, err := config.LoadJobConfig(filepath.Join("..", "..", "testdata", "job.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sample", cfg.Name)
	assert.Equal(t, models.OutputBoth, cfg.Output.Format)
	assert.Len(t, cfg.LengthDistribution, 4)
	assert.True(t, cfg.Dedup.BucketByWorkflow)
}
