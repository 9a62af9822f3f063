package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/dataset"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// inputRun selects the run read from a SQLite input; empty means the latest.
var inputRun string

func addRunFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&inputRun, "run", "", "run id to read from a .db input (default: latest run)")
}

func isSQLite(path string) bool {
	return filepath.Ext(path) == ".db"
}

// openStore opens an existing trajectory database. It never creates one.
func openStore(path string) (*dataset.SQLiteStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(err, "opening %s", path)
	}
	return dataset.OpenSQLite(path)
}

// readTrajectories loads a JSONL file, a run of a .db file, or stdin when
// path is "-".
func readTrajectories(cmd *cobra.Command, path string) ([]*models.Trajectory, error) {
	switch {
	case path == "-":
		return dataset.ReadJSONL(cmd.InOrStdin())
	case isSQLite(path):
		return readRun(cmd, path)
	}
	return dataset.LoadJSONL(path)
}

func readRun(cmd *cobra.Command, path string) ([]*models.Trajectory, error) {
	st, err := openStore(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	runID := inputRun
	if runID == "" {
		if runID, err = st.LatestRun(cmd.Context()); err != nil {
			return nil, err
		}
	}
	return st.LoadRun(cmd.Context(), runID)
}

// writeTrajectories writes JSONL to path, or stdout when path is empty or "-".
func writeTrajectories(cmd *cobra.Command, path string, trajs []*models.Trajectory) error {
	if path == "" || path == "-" {
		return dataset.WriteJSONL(cmd.OutOrStdout(), trajs)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "creating %s", path)
	}
	if err := dataset.WriteJSONL(f, trajs); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "closing %s", path)
}
