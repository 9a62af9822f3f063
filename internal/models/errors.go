package models

import (
	"fmt"
	"strings"
)

// FailureType identifies the category of failure that ended a generation attempt
// or discarded a trajectory.
type FailureType string

const (
	// Synthesis phase
	FailMissingTarget FailureType = "missing_target"

	// Skeleton generation phase
	FailGeneration        FailureType = "generation_failure"
	FailGenerationTimeout FailureType = "generation_timeout"
	FailSchemaViolation   FailureType = "schema_violation"

	// Assembly phase
	FailTooFewActions FailureType = "too_few_actions"

	// Validation phase
	FailValidationRejection FailureType = "validation_rejection"

	// Batch control
	FailCancelled FailureType = "cancelled"

	// Catch-all
	FailInternal FailureType = "internal_error"
)

// MissingTargetError reports a skeleton entry that names no element the
// synthesizer can address. The caller drops the entry and continues.
type MissingTargetError struct {
	Position   int
	ActionType ActionType
	Reason     string
}

func (e *MissingTargetError) Error() string {
	return fmt.Sprintf("action %d (%s): missing target: %s", e.Position, e.ActionType, e.Reason)
}

// SchemaViolation reports a malformed collaborator response or record.
type SchemaViolation struct {
	Problems []string
}

func NewSchemaViolation(problems ...string) *SchemaViolation {
	return &SchemaViolation{Problems: problems}
}

func (e *SchemaViolation) Error() string {
	return "schema violation: " + strings.Join(e.Problems, "; ")
}

// GenerationFailure is returned when a trajectory could not be produced after
// its retry budget was spent. It is recoverable at batch level.
type GenerationFailure struct {
	Type     FailureType
	Attempts int
	Err      error
}

func (e *GenerationFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s after %d attempt(s)", e.Type, e.Attempts)
	}
	return fmt.Sprintf("%s after %d attempt(s): %v", e.Type, e.Attempts, e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// TaskFailure records one abandoned generation task in a GenerationReport.
type TaskFailure struct {
	TaskIndex    int         `json:"task_index"`
	WorkflowType string      `json:"workflow_type"`
	Goal         string      `json:"goal,omitempty"`
	Type         FailureType `json:"failure_type"`
	Message      string      `json:"message"`
	Attempts     int         `json:"attempts"`
}
