package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/stats"
)

var (
	statsMarkdown    bool
	statsTitle       string
	statsActionTypes bool

	analyzeJSON  bool
	analyzeLimit int
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Summarise a trajectory file",
	Long:  "Summarises a JSONL file or one run of a trajectories.db. With --action-types, a .db input reports action type counts across every stored run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsActionTypes {
			return actionTypeCounts(cmd, args[0])
		}
		trajs, err := readTrajectories(cmd, args[0])
		if err != nil {
			return err
		}
		s := stats.Summarize(trajs)
		if statsMarkdown {
			fmt.Fprint(cmd.OutOrStdout(), stats.RenderMarkdown(statsTitle, s))
			return nil
		}
		return writeJSON(cmd, s)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "List error cases, failed goals and skipped-step trajectories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trajs, err := readTrajectories(cmd, args[0])
		if err != nil {
			return err
		}
		a := stats.Analyze(trajs)
		if analyzeJSON {
			return writeJSON(cmd, a)
		}
		fmt.Fprint(cmd.OutOrStdout(), stats.RenderAnalysis(a, analyzeLimit))
		return nil
	},
}

func actionTypeCounts(cmd *cobra.Command, path string) error {
	if !isSQLite(path) {
		return eris.Errorf("--action-types needs a .db input, got %s", path)
	}
	st, err := openStore(path)
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.ActionTypeCounts(cmd.Context())
	if err != nil {
		return err
	}
	return writeJSON(cmd, counts)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encoding json")
}

func init() {
	statsCmd.Flags().BoolVar(&statsMarkdown, "markdown", false, "render a Markdown report instead of JSON")
	statsCmd.Flags().StringVar(&statsTitle, "title", "Dataset Statistics", "Markdown report title")
	statsCmd.Flags().BoolVar(&statsActionTypes, "action-types", false, "count action types across every run of a .db input")
	addRunFlag(statsCmd)
	addRunFlag(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the full analysis as JSON")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 3, "samples shown per section")

	rootCmd.AddCommand(statsCmd, analyzeCmd)
}
