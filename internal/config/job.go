package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/dedup"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/validator"
)

const (
	DefaultOutputDir      = "output"
	DefaultNTrajectories  = 100
	DefaultNConcurrent    = 4
	DefaultSeed           = 42
	DefaultMaxFailureRate = 0.2
	DefaultSampleSize     = 10
	DefaultCallTimeoutSec = 60
	DefaultTemperature    = 0.7
)

// DefaultJobConfig returns a JobConfig with default values.
func DefaultJobConfig() models.JobConfig {
	return models.JobConfig{
		OutputDir:      DefaultOutputDir,
		NTrajectories:  DefaultNTrajectories,
		NConcurrent:    DefaultNConcurrent,
		Seed:           DefaultSeed,
		MaxFailureRate: DefaultMaxFailureRate,
		Generator: models.GeneratorConfig{
			Type:           "template",
			MaxTokens:      4096,
			Temperature:    DefaultTemperature,
			CallTimeoutSec: DefaultCallTimeoutSec,
		},
		Dedup:      dedup.DefaultConfig(),
		Validation: validator.DefaultConfig(),
		Output: models.OutputConfig{
			Format:     models.OutputJSONL,
			SampleSize: DefaultSampleSize,
		},
		Log: models.LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadJobConfig loads and parses a job.yaml file.
func LoadJobConfig(path string) (models.JobConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultJobConfig(), eris.Wrap(err, "reading job config")
	}
	return ParseJobConfig(data)
}

// ParseJobConfig decodes YAML onto the defaults, validates the result and
// fills any zero values left behind.
func ParseJobConfig(data []byte) (models.JobConfig, error) {
	cfg := DefaultJobConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrap(err, "parsing job config")
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	// Apply defaults for missing values
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.NTrajectories == 0 {
		cfg.NTrajectories = DefaultNTrajectories
	}
	if cfg.NConcurrent == 0 {
		cfg.NConcurrent = DefaultNConcurrent
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "template"
	}
	if cfg.Generator.CallTimeoutSec == 0 {
		cfg.Generator.CallTimeoutSec = DefaultCallTimeoutSec
	}
	if cfg.Dedup.NearThreshold == 0 {
		cfg.Dedup.NearThreshold = dedup.DefaultNearThreshold
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = models.OutputJSONL
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	return cfg, nil
}

// Validate checks cross-field constraints of a job configuration.
func Validate(cfg models.JobConfig) error {
	if cfg.NTrajectories < 0 {
		return eris.Errorf("n_trajectories must not be negative, got %d", cfg.NTrajectories)
	}
	if cfg.NConcurrent < 0 {
		return eris.Errorf("n_concurrent must not be negative, got %d", cfg.NConcurrent)
	}
	if cfg.MaxFailureRate < 0 || cfg.MaxFailureRate > 1 {
		return eris.Errorf("max_failure_rate must be within [0,1], got %g", cfg.MaxFailureRate)
	}

	for w, weight := range cfg.WorkflowDistribution {
		if !w.Valid() {
			return eris.Errorf("workflow_distribution: unknown workflow type %q", w)
		}
		if weight < 0 {
			return eris.Errorf("workflow_distribution[%s]: weight must not be negative", w)
		}
	}
	if len(cfg.WorkflowDistribution) > 0 && sum(cfg.WorkflowDistribution) == 0 {
		return eris.New("workflow_distribution: weights must not all be zero")
	}

	for u, weight := range cfg.UserTypeDistribution {
		if !u.Valid() {
			return eris.Errorf("user_type_distribution: unknown user type %q", u)
		}
		if weight < 0 {
			return eris.Errorf("user_type_distribution[%s]: weight must not be negative", u)
		}
	}
	if len(cfg.UserTypeDistribution) > 0 && sum(cfg.UserTypeDistribution) == 0 {
		return eris.New("user_type_distribution: weights must not all be zero")
	}

	var total float64
	for i, b := range cfg.LengthDistribution {
		if b.Min < models.MinActions || b.Max > models.MaxActions || b.Min > b.Max {
			return eris.Errorf("length_distribution[%d]: range %d-%d must lie within %d-%d",
				i, b.Min, b.Max, models.MinActions, models.MaxActions)
		}
		if b.Weight < 0 {
			return eris.Errorf("length_distribution[%d]: weight must not be negative", i)
		}
		total += b.Weight
	}
	if len(cfg.LengthDistribution) > 0 && total == 0 {
		return eris.New("length_distribution: weights must not all be zero")
	}

	if cfg.Dedup.NearThreshold < 0 || cfg.Dedup.NearThreshold > 1 {
		return eris.Errorf("dedup.near_threshold must be within [0,1], got %g", cfg.Dedup.NearThreshold)
	}
	if cfg.Dedup.SequenceWeight < 0 || cfg.Dedup.SequenceWeight > 1 {
		return eris.Errorf("dedup.sequence_weight must be within [0,1], got %g", cfg.Dedup.SequenceWeight)
	}

	if cfg.Catalog.Path != "" && cfg.Catalog.URL != "" {
		return eris.New("catalog: cannot specify both 'path' and 'url'")
	}

	switch cfg.Output.Format {
	case "", models.OutputJSONL, models.OutputSQLite, models.OutputBoth:
	default:
		return eris.Errorf("output.format: unsupported format %q", cfg.Output.Format)
	}
	if cfg.Output.SampleSize < 0 {
		return eris.Errorf("output.sample_size must not be negative, got %d", cfg.Output.SampleSize)
	}
	if cfg.Generator.RequestsPerSecond < 0 {
		return eris.Errorf("generator.requests_per_second must not be negative, got %g", cfg.Generator.RequestsPerSecond)
	}
	return nil
}

func sum[K comparable](weights map[K]float64) float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	return total
}
