package models

import "time"

// Severity ranks a validation issue.
type Severity string

const (
	SeverityHard   Severity = "hard"
	SeveritySoft   Severity = "soft"
	SeverityRepair Severity = "repair"
)

// ValidationIssue is one finding of the rule engine. ActionIndex is -1 for
// trajectory-level findings.
type ValidationIssue struct {
	Rule        string   `json:"rule"`
	Severity    Severity `json:"severity"`
	ActionIndex int      `json:"action_index"`
	Message     string   `json:"message"`
}

// GenerationReport summarises the generation phase of a batch.
type GenerationReport struct {
	Requested           int           `json:"requested"`
	Attempted           int           `json:"attempted"`
	Succeeded           int           `json:"succeeded"`
	Failed              int           `json:"failed"`
	Skipped             int           `json:"skipped"`
	Retries             int           `json:"retries"`
	DroppedActions      int           `json:"dropped_actions"`
	FailureRate         float64       `json:"failure_rate"`
	FailureRateExceeded bool          `json:"failure_rate_exceeded"`
	Failures            []TaskFailure `json:"failures"`
}

// NearDuplicatePair records a trajectory removed as similar to a kept one.
type NearDuplicatePair struct {
	KeptID    string  `json:"kept_id"`
	RemovedID string  `json:"removed_id"`
	Score     float64 `json:"score"`
}

type DedupReport struct {
	Input        int                 `json:"input"`
	ExactRemoved int                 `json:"exact_removed"`
	NearRemoved  int                 `json:"near_removed"`
	Kept         int                 `json:"kept"`
	NearPairs    []NearDuplicatePair `json:"near_pairs"`
}

// Rejection is a discarded trajectory and the issues that caused it.
type Rejection struct {
	TrajectoryID string            `json:"trajectory_id"`
	Issues       []ValidationIssue `json:"issues"`
}

type ValidationReport struct {
	Input       int            `json:"input"`
	Accepted    int            `json:"accepted"`
	Rejected    int            `json:"rejected"`
	Repaired    int            `json:"repaired"`
	IssueCounts map[string]int `json:"issue_counts"`
	Rejections  []Rejection    `json:"rejections"`
}

// JobResult contains aggregate outcomes across the whole run.
type JobResult struct {
	JobName          string           `json:"job_name"`
	Cancelled        bool             `json:"cancelled"`
	Requested        int              `json:"requested"`
	Accepted         int              `json:"accepted"`
	Shortfall        int              `json:"shortfall"`
	TotalDurationSec float64          `json:"total_duration_sec"`
	StartedAt        time.Time        `json:"started_at"`
	EndedAt          time.Time        `json:"ended_at"`
	Generation       GenerationReport `json:"generation"`
	Dedup            DedupReport      `json:"dedup"`
	Validation       ValidationReport `json:"validation"`
}
