// Package dedup removes exact and near-duplicate trajectories from a batch.
package dedup

import (
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

const (
	DefaultNearThreshold  = 0.9
	DefaultSequenceWeight = 0.5
)

// DefaultConfig enables exact dedup only.
func DefaultConfig() models.DedupConfig {
	return models.DedupConfig{
		Enabled:        true,
		NearThreshold:  DefaultNearThreshold,
		SequenceWeight: DefaultSequenceWeight,
	}
}

type Deduplicator struct {
	cfg models.DedupConfig
}

func New(cfg models.DedupConfig) *Deduplicator {
	if cfg.NearThreshold <= 0 {
		cfg.NearThreshold = DefaultNearThreshold
	}
	if cfg.SequenceWeight <= 0 || cfg.SequenceWeight > 1 {
		cfg.SequenceWeight = DefaultSequenceWeight
	}
	return &Deduplicator{cfg: cfg}
}

// Filter keeps the first occurrence of every fingerprint, in input order, and
// then, if enabled, drops any trajectory scoring at least the near threshold
// against an earlier kept one. Filter is idempotent.
func (d *Deduplicator) Filter(trajs []*models.Trajectory) ([]*models.Trajectory, models.DedupReport) {
	report := models.DedupReport{Input: len(trajs), NearPairs: []models.NearDuplicatePair{}}
	if !d.cfg.Enabled {
		report.Kept = len(trajs)
		return trajs, report
	}

	fps := make([]string, len(trajs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range trajs {
		g.Go(func() error {
			fps[i] = Fingerprint(t)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	// Insertion into the seen set is serial so the first occurrence wins.
	seen := make(map[string]struct{}, len(trajs))
	kept := make([]*models.Trajectory, 0, len(trajs))
	for i, t := range trajs {
		if _, dup := seen[fps[i]]; dup {
			report.ExactRemoved++
			zap.L().Debug("exact duplicate removed", zap.String("trajectory_id", t.TrajectoryID))
			continue
		}
		seen[fps[i]] = struct{}{}
		kept = append(kept, t)
	}

	if d.cfg.NearDuplicate {
		var pairs []models.NearDuplicatePair
		kept, pairs = d.nearFilter(kept)
		report.NearRemoved = len(pairs)
		report.NearPairs = append(report.NearPairs, pairs...)
	}
	report.Kept = len(kept)
	return kept, report
}

// nearFilter is the O(k²) pass over the exact-deduplicated set.
func (d *Deduplicator) nearFilter(trajs []*models.Trajectory) ([]*models.Trajectory, []models.NearDuplicatePair) {
	feats := make([]features, len(trajs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range trajs {
		g.Go(func() error {
			feats[i] = extract(t)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	kept := make([]*models.Trajectory, 0, len(trajs))
	var keptF []int
	var pairs []models.NearDuplicatePair
	for j, t := range trajs {
		removed := false
		for _, i := range keptF {
			if d.cfg.BucketByWorkflow && trajs[i].WorkflowType != t.WorkflowType {
				continue
			}
			score := similarity(feats[i], feats[j], d.cfg.SequenceWeight)
			if score >= d.cfg.NearThreshold {
				pairs = append(pairs, models.NearDuplicatePair{KeptID: trajs[i].TrajectoryID, RemovedID: t.TrajectoryID, Score: score})
				zap.L().Debug("near duplicate removed",
					zap.String("kept_id", trajs[i].TrajectoryID),
					zap.String("removed_id", t.TrajectoryID),
					zap.Float64("score", score),
				)
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, t)
			keptF = append(keptF, j)
		}
	}
	return kept, pairs
}
