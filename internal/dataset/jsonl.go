package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

const (
	TrajectoriesFile = "trajectories.jsonl"
	SampleFile       = "sample.jsonl"
	MetadataFile     = "metadata.json"
	StatisticsFile   = "statistics.json"
	ReportsFile      = "reports.json"
	ConfigFile       = "config.json"
)

// JSONLWriter writes a dataset directory.
type JSONLWriter struct {
	dir         string
	sampleSize  int
	reportsOnly bool
}

// NewJSONLWriter creates dir. It refuses to reuse an existing directory so a
// finished dataset is never overwritten.
func NewJSONLWriter(dir string, sampleSize int) (*JSONLWriter, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, eris.Errorf("output directory already exists: %s (will not overwrite existing results)", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, eris.Wrap(err, "creating output directory")
	}
	return &JSONLWriter{dir: dir, sampleSize: sampleSize}, nil
}

func (w *JSONLWriter) Dir() string { return w.dir }

// ReportsOnly stops Write from emitting trajectory files, for jobs whose
// trajectories go to another sink.
func (w *JSONLWriter) ReportsOnly() { w.reportsOnly = true }

// WriteConfig stores the job configuration before generation starts.
func (w *JSONLWriter) WriteConfig(cfg models.JobConfig) error {
	return w.writeJSON(ConfigFile, cfg)
}

// Write stores the trajectories, a sample, metadata, statistics and reports.
func (w *JSONLWriter) Write(_ context.Context, b Batch) error {
	if !w.reportsOnly {
		if err := w.writeTrajectories(TrajectoriesFile, b.Trajectories); err != nil {
			return err
		}
		if w.sampleSize > 0 {
			if err := w.writeTrajectories(SampleFile, head(b.Trajectories, w.sampleSize)); err != nil {
				return err
			}
		}
	}
	if err := w.writeJSON(MetadataFile, metadataFor(b)); err != nil {
		return err
	}
	if err := w.writeJSON(StatisticsFile, b.Stats); err != nil {
		return err
	}
	if err := w.writeJSON(ReportsFile, b.Result); err != nil {
		return err
	}
	zap.L().Info("dataset written",
		zap.String("dir", w.dir),
		zap.Int("trajectories", len(b.Trajectories)),
	)
	return nil
}

func (w *JSONLWriter) Close() error { return nil }

func (w *JSONLWriter) writeTrajectories(name string, trajs []*models.Trajectory) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "creating %s", name)
	}
	if err := WriteJSONL(f, trajs); err != nil {
		f.Close()
		return eris.Wrapf(err, "writing %s", name)
	}
	return eris.Wrapf(f.Close(), "closing %s", name)
}

func (w *JSONLWriter) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "marshaling %s", name)
	}
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0644); err != nil {
		return eris.Wrapf(err, "writing %s", name)
	}
	return nil
}

func head(trajs []*models.Trajectory, n int) []*models.Trajectory {
	if len(trajs) > n {
		return trajs[:n]
	}
	return trajs
}
