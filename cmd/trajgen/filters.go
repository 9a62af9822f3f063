package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/dedup"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/validator"
)

var (
	validateOutput    string
	validateThreshold int

	dedupOutput    string
	dedupNear      bool
	dedupThreshold float64
	dedupBucket    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate trajectories and keep the accepted ones",
	Long:  "Runs the validation rules over a JSONL file. Accepted trajectories are written as JSONL; the report goes to stderr.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trajs, err := readTrajectories(cmd, args[0])
		if err != nil {
			return err
		}

		cfg := validator.DefaultConfig()
		if cmd.Flags().Changed("soft-threshold") {
			cfg.SoftIssueThreshold = validateThreshold
		}
		accepted, report := validator.New(cfg).Filter(trajs)
		if err := writeTrajectories(cmd, validateOutput, accepted); err != nil {
			return err
		}

		lines := []string{
			fmt.Sprintf("Input:     %d", report.Input),
			fmt.Sprintf("Accepted:  %d", report.Accepted),
			fmt.Sprintf("Rejected:  %d", report.Rejected),
			fmt.Sprintf("Repaired:  %d", report.Repaired),
		}
		for _, rule := range slices.Sorted(maps.Keys(report.IssueCounts)) {
			lines = append(lines, fmt.Sprintf("  %s: %d", rule, report.IssueCounts[rule]))
		}
		fmt.Fprintln(cmd.ErrOrStderr(), renderReport("Validation", lines...))
		return nil
	},
}

var dedupCmd = &cobra.Command{
	Use:   "dedup FILE",
	Short: "Remove duplicate trajectories",
	Long:  "Removes exact duplicates by fingerprint and, with --near, near duplicates by similarity. The first occurrence is kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trajs, err := readTrajectories(cmd, args[0])
		if err != nil {
			return err
		}

		cfg := dedup.DefaultConfig()
		cfg.NearDuplicate = dedupNear
		cfg.NearThreshold = dedupThreshold
		cfg.BucketByWorkflow = dedupBucket
		kept, report := dedup.New(cfg).Filter(trajs)
		if err := writeTrajectories(cmd, dedupOutput, kept); err != nil {
			return err
		}

		lines := []string{
			fmt.Sprintf("Input:          %d", report.Input),
			fmt.Sprintf("Exact removed:  %d", report.ExactRemoved),
			fmt.Sprintf("Near removed:   %d", report.NearRemoved),
			fmt.Sprintf("Kept:           %d", report.Kept),
		}
		for _, p := range report.NearPairs {
			lines = append(lines, fmt.Sprintf("  %s ~ %s (%.3f)", p.RemovedID, p.KeptID, p.Score))
		}
		fmt.Fprintln(cmd.ErrOrStderr(), renderReport("Deduplication", lines...))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "write accepted trajectories here (default: stdout)")
	validateCmd.Flags().IntVar(&validateThreshold, "soft-threshold", 2, "soft issues tolerated before rejection")

	dedupCmd.Flags().StringVarP(&dedupOutput, "output", "o", "", "write kept trajectories here (default: stdout)")
	dedupCmd.Flags().BoolVar(&dedupNear, "near", false, "also remove near duplicates")
	dedupCmd.Flags().Float64Var(&dedupThreshold, "threshold", dedup.DefaultNearThreshold, "near-duplicate similarity threshold")
	dedupCmd.Flags().BoolVar(&dedupBucket, "bucket-by-workflow", false, "only compare trajectories of the same workflow type")

	addRunFlag(validateCmd)
	addRunFlag(dedupCmd)

	rootCmd.AddCommand(validateCmd, dedupCmd)
}
