package executor

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/assembler"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// generationTask is one slot of the batch.
type generationTask struct {
	Index   int
	Request assembler.Request
}

// taskResult is what a worker reports back for one slot. Exactly one of
// Trajectory and Failure is set.
type taskResult struct {
	Trajectory *models.Trajectory
	Failure    *models.TaskFailure
	Outcome    assembler.Outcome
}

func (r taskResult) cancelled() bool {
	return r.Failure != nil && r.Failure.Type == models.FailCancelled
}

// runTask assembles a single trajectory. Assembly errors never escape; they
// become a TaskFailure so that one bad trajectory cannot stop the batch.
func runTask(ctx context.Context, asm *assembler.Assembler, task generationTask) taskResult {
	traj, out, err := asm.Assemble(ctx, task.Request)
	if err == nil {
		return taskResult{Trajectory: traj, Outcome: out}
	}

	failure := &models.TaskFailure{
		TaskIndex:    task.Index,
		WorkflowType: string(task.Request.WorkflowType),
		Goal:         task.Request.Goal,
		Type:         models.FailInternal,
		Message:      err.Error(),
		Attempts:     out.Attempts,
	}
	var gf *models.GenerationFailure
	if errors.As(err, &gf) {
		failure.Type = gf.Type
		failure.Attempts = gf.Attempts
	}
	if failure.Type != models.FailCancelled {
		zap.L().Warn("trajectory generation failed",
			zap.Int("task_index", task.Index),
			zap.String("workflow_type", failure.WorkflowType),
			zap.String("goal", failure.Goal),
			zap.String("failure_type", string(failure.Type)),
			zap.Int("attempts", failure.Attempts),
			zap.Error(err),
		)
	}
	return taskResult{Failure: failure, Outcome: out}
}
