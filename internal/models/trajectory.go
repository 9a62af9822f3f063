package models

import (
	"encoding/json"
	"time"
)

// WorkflowType classifies the user journey a trajectory models.
type WorkflowType string

const (
	WorkflowECommerce   WorkflowType = "e_commerce"
	WorkflowFormFilling WorkflowType = "form_filling"
	WorkflowResearch    WorkflowType = "research"
)

var AllWorkflowTypes = []WorkflowType{WorkflowECommerce, WorkflowFormFilling, WorkflowResearch}

func (w WorkflowType) Valid() bool {
	switch w {
	case WorkflowECommerce, WorkflowFormFilling, WorkflowResearch:
		return true
	}
	return false
}

// UserType is the simulated user's experience level.
type UserType string

const (
	UserPowerUser UserType = "power_user"
	UserCasual    UserType = "casual"
	UserFirstTime UserType = "first_time"
)

var AllUserTypes = []UserType{UserPowerUser, UserCasual, UserFirstTime}

func (u UserType) Valid() bool {
	switch u {
	case UserPowerUser, UserCasual, UserFirstTime:
		return true
	}
	return false
}

var (
	DeviceTypes  = []string{"desktop", "mobile", "tablet"}
	BrowserTypes = []string{"chrome", "firefox", "safari", "edge"}
)

const (
	MinActions = 3
	MaxActions = 10
)

// Trajectory is an ordered sequence of actions representing one session.
// Once accepted by validation it is never mutated.
type Trajectory struct {
	TrajectoryID string          `json:"trajectory_id"`
	SessionID    string          `json:"session_id"`
	Actions      []BrowserAction `json:"actions"`

	WorkflowType WorkflowType `json:"workflow_type"`
	Domain       string       `json:"domain"`

	// Milliseconds since trajectory start.
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
	Duration  int64 `json:"duration"`

	UserType    UserType `json:"user_type"`
	DeviceType  string   `json:"device_type"`
	BrowserType string   `json:"browser_type"`

	Goal              string   `json:"goal,omitempty"`
	GoalAchieved      bool     `json:"goal_achieved"`
	SuccessIndicators []string `json:"success_indicators"`

	CreatedAt time.Time `json:"created_at"`
}

// StampTiming derives start, end and duration from the action timestamps.
func (t *Trajectory) StampTiming() {
	if len(t.Actions) == 0 {
		t.StartTime, t.EndTime, t.Duration = 0, 0, 0
		return
	}
	t.StartTime = t.Actions[0].Timestamp
	t.EndTime = t.Actions[len(t.Actions)-1].Timestamp
	t.Duration = t.EndTime - t.StartTime
}

func (t *Trajectory) ActionCount() int { return len(t.Actions) }

// AvgActionInterval is the mean gap between consecutive actions, in seconds.
func (t *Trajectory) AvgActionInterval() float64 {
	if len(t.Actions) < 2 {
		return 0
	}
	var total int64
	for i := 1; i < len(t.Actions); i++ {
		total += t.Actions[i].Timestamp - t.Actions[i-1].Timestamp
	}
	return float64(total) / float64(len(t.Actions)-1) / 1000
}

// BacktrackCount counts back and forward actions.
func (t *Trajectory) BacktrackCount() int {
	n := 0
	for _, a := range t.Actions {
		if a.Type().IsBacktrack() {
			n++
		}
	}
	return n
}

// ErrorCount counts actions whose target was hidden or not clickable.
func (t *Trajectory) ErrorCount() int {
	n := 0
	for _, a := range t.Actions {
		if a.IsError() {
			n++
		}
	}
	return n
}

type trajectoryAlias Trajectory

// MarshalJSON adds the derived properties to the flat mapping.
func (t Trajectory) MarshalJSON() ([]byte, error) {
	indicators := t.SuccessIndicators
	if indicators == nil {
		indicators = []string{}
	}
	alias := trajectoryAlias(t)
	alias.SuccessIndicators = indicators
	return json.Marshal(struct {
		trajectoryAlias
		ActionCount       int     `json:"action_count"`
		AvgActionInterval float64 `json:"avg_action_interval"`
		BacktrackCount    int     `json:"backtrack_count"`
		ErrorCount        int     `json:"error_count"`
	}{
		trajectoryAlias:   alias,
		ActionCount:       t.ActionCount(),
		AvgActionInterval: t.AvgActionInterval(),
		BacktrackCount:    t.BacktrackCount(),
		ErrorCount:        t.ErrorCount(),
	})
}

// UnmarshalJSON ignores the derived properties; they are always recomputed.
func (t *Trajectory) UnmarshalJSON(data []byte) error {
	var alias trajectoryAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*t = Trajectory(alias)
	return nil
}

// Clone returns a deep copy so that repairs never touch a shared sequence.
func (t *Trajectory) Clone() *Trajectory {
	c := *t
	c.Actions = make([]BrowserAction, len(t.Actions))
	for i, a := range t.Actions {
		if a.ElementClasses != nil {
			a.ElementClasses = append([]string(nil), a.ElementClasses...)
		}
		if p, ok := a.Params.(ClickParams); ok && p.Coordinates != nil {
			pt := *p.Coordinates
			a.Params = ClickParams{Coordinates: &pt}
		}
		c.Actions[i] = a
	}
	if t.SuccessIndicators != nil {
		c.SuccessIndicators = append([]string(nil), t.SuccessIndicators...)
	}
	return &c
}
