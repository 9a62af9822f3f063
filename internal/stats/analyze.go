package stats

import "github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"

// SkippedStepMaxActions is the longest successful trajectory still counted as
// having skipped steps.
const SkippedStepMaxActions = 5

// ErrorAction is an action whose target was hidden or disabled.
type ErrorAction struct {
	ActionID         string            `json:"action_id"`
	ActionType       models.ActionType `json:"action_type"`
	ElementVisible   bool              `json:"element_visible"`
	ElementClickable bool              `json:"element_clickable"`
	UserIntent       string            `json:"user_intent,omitempty"`
}

type ErrorTrajectory struct {
	TrajectoryID string        `json:"trajectory_id"`
	Goal         string        `json:"goal"`
	GoalAchieved bool          `json:"goal_achieved"`
	ActionCount  int           `json:"action_count"`
	Actions      []ErrorAction `json:"error_actions"`
}

type FailedGoal struct {
	TrajectoryID   string            `json:"trajectory_id"`
	Goal           string            `json:"goal"`
	ActionCount    int               `json:"action_count"`
	LastActionType models.ActionType `json:"last_action_type,omitempty"`
}

type SkippedSteps struct {
	TrajectoryID string              `json:"trajectory_id"`
	Goal         string              `json:"goal"`
	ActionCount  int                 `json:"action_count"`
	Actions      []models.ActionType `json:"actions"`
}

// ErrorStatistics counts error actions across the whole batch.
type ErrorStatistics struct {
	TotalActions    int `json:"total_actions"`
	NotVisible      int `json:"actions_with_element_visible_false"`
	NotClickable    int `json:"actions_with_element_clickable_false"`
	BothUnreachable int `json:"actions_with_both_false"`
}

// Analysis groups the trajectories worth a manual look.
type Analysis struct {
	Total        int               `json:"total_trajectories"`
	WithErrors   []ErrorTrajectory `json:"trajectories_with_errors"`
	FailedGoals  []FailedGoal      `json:"trajectories_with_goal_achieved_false"`
	SkippedSteps []SkippedSteps    `json:"trajectories_with_skipped_steps"`
	Errors       ErrorStatistics   `json:"error_statistics"`
}

// Analyze scans trajectories for error actions, failed goals and successful
// trajectories that are suspiciously short.
func Analyze(trajs []*models.Trajectory) Analysis {
	res := Analysis{
		Total:        len(trajs),
		WithErrors:   []ErrorTrajectory{},
		FailedGoals:  []FailedGoal{},
		SkippedSteps: []SkippedSteps{},
	}
	for _, t := range trajs {
		res.Errors.TotalActions += len(t.Actions)

		var errs []ErrorAction
		for _, a := range t.Actions {
			if !a.ElementVisible {
				res.Errors.NotVisible++
			}
			if !a.ElementClickable {
				res.Errors.NotClickable++
			}
			if !a.ElementVisible && !a.ElementClickable {
				res.Errors.BothUnreachable++
			}
			if a.IsError() {
				errs = append(errs, ErrorAction{
					ActionID:         a.ActionID,
					ActionType:       a.Type(),
					ElementVisible:   a.ElementVisible,
					ElementClickable: a.ElementClickable,
					UserIntent:       a.UserIntent,
				})
			}
		}
		if len(errs) > 0 {
			res.WithErrors = append(res.WithErrors, ErrorTrajectory{
				TrajectoryID: t.TrajectoryID,
				Goal:         t.Goal,
				GoalAchieved: t.GoalAchieved,
				ActionCount:  len(t.Actions),
				Actions:      errs,
			})
		}

		if !t.GoalAchieved {
			fg := FailedGoal{TrajectoryID: t.TrajectoryID, Goal: t.Goal, ActionCount: len(t.Actions)}
			if n := len(t.Actions); n > 0 {
				fg.LastActionType = t.Actions[n-1].Type()
			}
			res.FailedGoals = append(res.FailedGoals, fg)
			continue
		}
		if len(t.Actions) <= SkippedStepMaxActions {
			types := make([]models.ActionType, len(t.Actions))
			for i, a := range t.Actions {
				types[i] = a.Type()
			}
			res.SkippedSteps = append(res.SkippedSteps, SkippedSteps{
				TrajectoryID: t.TrajectoryID,
				Goal:         t.Goal,
				ActionCount:  len(t.Actions),
				Actions:      types,
			})
		}
	}
	return res
}
