package executor

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/assembler"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/catalog"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/config"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/dataset"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/dedup"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/generator"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/stats"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/validator"
)

// progressEvery is how many finished tasks pass between progress log lines.
const progressEvery = 10

// NewGeneratorFunc creates the skeleton generator for a job.
type NewGeneratorFunc func(cfg models.GeneratorConfig, c *catalog.Catalog) (generator.StructuredGenerator, error)

// Dataset is the outcome of GenerateDataset: the accepted trajectories in
// request order and the reports of every stage.
type Dataset struct {
	Trajectories []*models.Trajectory
	Stats        stats.Stats
	Result       models.JobResult
}

// Orchestrator coordinates a whole job: generation, filtering and persistence.
type Orchestrator struct {
	cfg          models.JobConfig
	newGenerator NewGeneratorFunc
}

// NewOrchestrator creates a new job orchestrator.
func NewOrchestrator(cfg models.JobConfig, newGenerator NewGeneratorFunc) (*Orchestrator, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, eris.Wrap(err, "invalid job config")
	}
	if newGenerator == nil {
		newGenerator = generator.New
	}
	return &Orchestrator{cfg: cfg, newGenerator: newGenerator}, nil
}

// Run generates the dataset and writes it to the job's output directory.
// It refuses to run when that directory already exists and removes the
// directory again when setup or generation fails.
func (o *Orchestrator) Run(ctx context.Context) (*models.JobResult, error) {
	jobName := o.cfg.Name
	if jobName == "" {
		jobName = time.Now().Format("2006-01-02__15-04-05")
	}
	cfg := o.cfg
	cfg.Name = jobName
	jobDir := filepath.Join(cfg.OutputDir, jobName)

	cat, err := catalog.Load(ctx, cfg.Catalog)
	if err != nil {
		return nil, eris.Wrap(err, "loading catalog")
	}
	gen, err := o.newGenerator(cfg.Generator, cat)
	if err != nil {
		return nil, eris.Wrap(err, "creating generator")
	}

	writer, err := dataset.NewJSONLWriter(jobDir, cfg.Output.SampleSize)
	if err != nil {
		return nil, err
	}
	// Until the dataset reaches the sinks, a failed run leaves no directory
	// behind so that the same job name can be rerun.
	persisted := false
	defer func() {
		if persisted {
			return
		}
		if err := os.RemoveAll(jobDir); err != nil {
			zap.L().Warn("failed to remove job directory", zap.String("dir", jobDir), zap.Error(err))
		}
	}()
	if err := writer.WriteConfig(cfg); err != nil {
		return nil, err
	}

	sinks, err := openSinks(ctx, cfg.Output.Format, writer)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, s := range sinks {
			s.Close()
		}
	}()

	ds, err := GenerateDataset(ctx, cfg, gen, cat)
	if err != nil {
		return nil, err
	}

	// Persist even after cancellation so that finished work is kept.
	batch := dataset.Batch{
		Config:       cfg,
		Trajectories: ds.Trajectories,
		Stats:        ds.Stats,
		Result:       ds.Result,
	}
	persisted = true
	for _, s := range sinks {
		if err := s.Write(context.WithoutCancel(ctx), batch); err != nil {
			return nil, eris.Wrap(err, "writing dataset")
		}
	}
	return &ds.Result, nil
}

func openSinks(ctx context.Context, format models.OutputFormat, writer *dataset.JSONLWriter) ([]dataset.Sink, error) {
	if format == models.OutputSQLite {
		writer.ReportsOnly()
	}
	sinks := []dataset.Sink{writer}
	if format == models.OutputSQLite || format == models.OutputBoth {
		st, err := dataset.OpenSQLite(filepath.Join(writer.Dir(), dataset.SQLiteFile))
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		sinks = append(sinks, st)
	}
	return sinks, nil
}

// GenerateDataset runs the batch pipeline: bounded parallel generation,
// deduplication, validation and statistics. It never fails because of
// individual trajectories; a short dataset is reported through
// JobResult.Shortfall instead.
func GenerateDataset(ctx context.Context, cfg models.JobConfig, gen generator.StructuredGenerator, cat *catalog.Catalog) (*Dataset, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, eris.Wrap(err, "invalid job config")
	}
	startTime := time.Now()

	sampler := assembler.NewSampler(cfg, cat)
	tasks := make([]generationTask, cfg.NTrajectories)
	for i := range tasks {
		tasks[i] = generationTask{Index: i, Request: sampler.Next()}
	}

	callTimeout := time.Duration(cfg.Generator.CallTimeoutSec * float64(time.Second))
	asm := assembler.New(gen, cat, callTimeout)

	nWorkers := cfg.NConcurrent
	if nWorkers <= 0 {
		nWorkers = 1
	}
	results := runConcurrent(ctx, asm, tasks, nWorkers)

	generated, genReport := aggregateGeneration(results, cfg.MaxFailureRate)
	if genReport.FailureRateExceeded {
		zap.L().Warn("generation failure rate exceeded",
			zap.Float64("failure_rate", genReport.FailureRate),
			zap.Float64("max_failure_rate", cfg.MaxFailureRate),
		)
	}

	kept, dedupReport := dedup.New(cfg.Dedup).Filter(generated)
	accepted, validationReport := validator.New(cfg.Validation).Filter(kept)

	endTime := time.Now()
	result := models.JobResult{
		JobName:          cfg.Name,
		Cancelled:        ctx.Err() != nil || genReport.Skipped > 0,
		Requested:        cfg.NTrajectories,
		Accepted:         len(accepted),
		Shortfall:        max(cfg.NTrajectories-len(accepted), 0),
		TotalDurationSec: endTime.Sub(startTime).Seconds(),
		StartedAt:        startTime,
		EndedAt:          endTime,
		Generation:       genReport,
		Dedup:            dedupReport,
		Validation:       validationReport,
	}
	zap.L().Info("dataset generation finished",
		zap.Int("requested", result.Requested),
		zap.Int("accepted", result.Accepted),
		zap.Int("shortfall", result.Shortfall),
		zap.Int("failed", genReport.Failed),
		zap.Int("duplicates", dedupReport.ExactRemoved+dedupReport.NearRemoved),
		zap.Int("rejected", validationReport.Rejected),
		zap.Bool("cancelled", result.Cancelled),
	)

	return &Dataset{
		Trajectories: accepted,
		Stats:        stats.Summarize(accepted),
		Result:       result,
	}, nil
}

// runConcurrent executes tasks with at most nWorkers in flight. Results are
// stored by task index; slots never started are left zero.
func runConcurrent(ctx context.Context, asm *assembler.Assembler, tasks []generationTask, nWorkers int) []taskResult {
	results := make([]taskResult, len(tasks))

	var g errgroup.Group
	g.SetLimit(nWorkers)

	var done atomic.Int64
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[task.Index] = runTask(ctx, asm, task)
			if n := done.Add(1); n%progressEvery == 0 {
				zap.L().Info("generation progress",
					zap.Int64("completed", n),
					zap.Int("total", len(tasks)),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// aggregateGeneration collects successful trajectories in task order and
// builds the generation report. Unstarted and cancelled tasks count as
// skipped, not failed.
func aggregateGeneration(results []taskResult, maxFailureRate float64) ([]*models.Trajectory, models.GenerationReport) {
	report := models.GenerationReport{
		Requested: len(results),
		Failures:  []models.TaskFailure{},
	}
	var trajs []*models.Trajectory
	for _, r := range results {
		report.DroppedActions += r.Outcome.DroppedActions
		if r.Outcome.Attempts > 1 {
			report.Retries += r.Outcome.Attempts - 1
		}
		switch {
		case r.Trajectory != nil:
			report.Attempted++
			report.Succeeded++
			trajs = append(trajs, r.Trajectory)
		case r.Failure == nil, r.cancelled():
			report.Skipped++
		default:
			report.Attempted++
			report.Failed++
			report.Failures = append(report.Failures, *r.Failure)
		}
	}
	if report.Attempted > 0 {
		report.FailureRate = float64(report.Failed) / float64(report.Attempted)
	}
	report.FailureRateExceeded = report.FailureRate > maxFailureRate
	return trajs, report
}

// RunFromConfig loads a job config file and executes the job.
func RunFromConfig(ctx context.Context, configPath string) (*models.JobResult, error) {
	cfg, err := config.LoadJobConfig(configPath)
	if err != nil {
		return nil, eris.Wrap(err, "loading job config")
	}

	orchestrator, err := NewOrchestrator(cfg, generator.New)
	if err != nil {
		return nil, eris.Wrap(err, "creating orchestrator")
	}

	return orchestrator.Run(ctx)
}
