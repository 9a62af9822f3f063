// Package dataset persists finished trajectory batches and reads them back.
package dataset

import (
	"context"
	"time"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/stats"
)

// Version is stamped into metadata.json and the SQLite runs table.
const Version = "1.0"

// Batch is everything a sink receives at the end of a job.
type Batch struct {
	Config       models.JobConfig
	Trajectories []*models.Trajectory
	Stats        stats.Stats
	Result       models.JobResult
}

// Metadata describes a written dataset.
type Metadata struct {
	DatasetVersion    string           `json:"dataset_version"`
	GenerationDate    time.Time        `json:"generation_date"`
	TotalTrajectories int              `json:"total_trajectories"`
	Requested         int              `json:"requested"`
	Shortfall         int              `json:"shortfall"`
	Config            models.JobConfig `json:"config"`
}

// Sink is a persistence target for finished batches.
type Sink interface {
	Write(ctx context.Context, b Batch) error
	Close() error
}

func metadataFor(b Batch) Metadata {
	return Metadata{
		DatasetVersion:    Version,
		GenerationDate:    b.Result.EndedAt,
		TotalTrajectories: len(b.Trajectories),
		Requested:         b.Result.Requested,
		Shortfall:         b.Result.Shortfall,
		Config:            b.Config,
	}
}
