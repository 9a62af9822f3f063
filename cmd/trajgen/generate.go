package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/config"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/executor"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

var generateConfigPath string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a trajectory dataset",
	Long:  "Generates trajectories as described by a job file, then deduplicates, validates and writes them to the output directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadJob(generateConfigPath)
		if err != nil {
			return err
		}
		// The job file's log settings apply unless a flag or env var overrides them.
		if generateConfigPath != "" && !v.IsSet("log.level") && !v.IsSet("log.format") {
			if err := config.InitLogger(cfg.Log); err != nil {
				return eris.Wrap(err, "init logger")
			}
		}

		orchestrator, err := executor.NewOrchestrator(cfg, nil)
		if err != nil {
			return eris.Wrap(err, "creating orchestrator")
		}
		result, err := orchestrator.Run(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "job failed")
		}

		cmd.Println(renderSummary(result))

		if result.Cancelled {
			return eris.New("job cancelled before all trajectories were generated")
		}
		if result.Generation.FailureRateExceeded {
			return eris.Errorf("generation failure rate %.1f%% exceeds max_failure_rate %.1f%%",
				result.Generation.FailureRate*100, cfg.MaxFailureRate*100)
		}
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateConfigPath, "config", "c", "", "path to job.yaml (defaults are used when omitted)")
	f.Int("n", 0, "number of trajectories to request")
	f.Uint64("seed", 0, "random seed")
	f.Int("concurrency", 0, "maximum concurrent generation tasks")
	f.String("generator", "", "skeleton generator (template, anthropic)")
	f.String("output-dir", "", "parent directory for the dataset")
	f.String("format", "", "output format (jsonl, sqlite, both)")

	_ = v.BindPFlag("n_trajectories", f.Lookup("n"))
	_ = v.BindPFlag("seed", f.Lookup("seed"))
	_ = v.BindPFlag("n_concurrent", f.Lookup("concurrency"))
	_ = v.BindPFlag("generator.type", f.Lookup("generator"))
	_ = v.BindPFlag("output.dir", f.Lookup("output-dir"))
	_ = v.BindPFlag("output.format", f.Lookup("format"))

	rootCmd.AddCommand(generateCmd)
}

// loadJob reads the job file, or the defaults, and applies flag and
// TRAJGEN_* environment overrides.
func loadJob(path string) (models.JobConfig, error) {
	cfg := config.DefaultJobConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadJobConfig(path); err != nil {
			return cfg, err
		}
	}

	if v.IsSet("n_trajectories") {
		cfg.NTrajectories = v.GetInt("n_trajectories")
	}
	if v.IsSet("seed") {
		cfg.Seed = v.GetUint64("seed")
	}
	if v.IsSet("n_concurrent") {
		cfg.NConcurrent = v.GetInt("n_concurrent")
	}
	if v.IsSet("generator.type") {
		cfg.Generator.Type = v.GetString("generator.type")
	}
	if v.IsSet("output.dir") {
		cfg.OutputDir = v.GetString("output.dir")
	}
	if v.IsSet("output.format") {
		cfg.Output.Format = models.OutputFormat(v.GetString("output.format"))
	}
	return cfg, config.Validate(cfg)
}
