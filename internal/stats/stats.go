package stats

import (
	"slices"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// Stats is the aggregate view of a trajectory batch.
type Stats struct {
	Count        int `json:"count"`
	TotalActions int `json:"total_actions"`

	ActionTypes     map[string]int `json:"action_type_distribution"`
	LengthHistogram map[int]int    `json:"length_histogram"`
	WorkflowTypes   map[string]int `json:"workflow_type_distribution"`
	UserTypes       map[string]int `json:"user_type_distribution"`
	DeviceTypes     map[string]int `json:"device_type_distribution"`
	BrowserTypes    map[string]int `json:"browser_type_distribution"`
	ElementTypes    map[string]int `json:"element_type_distribution"`

	GoalAchievementRate float64 `json:"goal_achievement_rate"`
	IntentionalRatio    float64 `json:"intentional_action_ratio"`
	MeanConfidence      float64 `json:"mean_confidence"`

	MeanActions           float64 `json:"mean_actions"`
	MeanErrorCount        float64 `json:"mean_error_count"`
	MedianErrorCount      float64 `json:"median_error_count"`
	MeanBacktrackCount    float64 `json:"mean_backtrack_count"`
	MedianBacktrackCount  float64 `json:"median_backtrack_count"`
	MeanAvgActionInterval float64 `json:"mean_avg_action_interval"`
	MeanDurationSec       float64 `json:"mean_duration_sec"`
}

// Summarize reduces trajectories into Stats. It has no side effects and
// depends only on the input.
func Summarize(trajs []*models.Trajectory) Stats {
	s := Stats{
		Count:           len(trajs),
		ActionTypes:     map[string]int{},
		LengthHistogram: map[int]int{},
		WorkflowTypes:   map[string]int{},
		UserTypes:       map[string]int{},
		DeviceTypes:     map[string]int{},
		BrowserTypes:    map[string]int{},
		ElementTypes:    map[string]int{},
	}
	if len(trajs) == 0 {
		return s
	}

	var (
		achieved    int
		intentional int
		confidence  float64
		intervals   float64
		durationMs  int64
	)
	errorCounts := make([]float64, 0, len(trajs))
	backtracking := make([]float64, 0, len(trajs))
	for _, t := range trajs {
		s.TotalActions += len(t.Actions)
		s.LengthHistogram[len(t.Actions)]++
		s.WorkflowTypes[string(t.WorkflowType)]++
		s.UserTypes[string(t.UserType)]++
		if t.DeviceType != "" {
			s.DeviceTypes[t.DeviceType]++
		}
		if t.BrowserType != "" {
			s.BrowserTypes[t.BrowserType]++
		}
		if t.GoalAchieved {
			achieved++
		}
		for _, a := range t.Actions {
			s.ActionTypes[string(a.Type())]++
			if a.ElementType != "" {
				s.ElementTypes[a.ElementType]++
			}
			if a.IsIntentional {
				intentional++
			}
			confidence += a.Confidence
		}
		intervals += t.AvgActionInterval()
		durationMs += t.Duration
		errorCounts = append(errorCounts, float64(t.ErrorCount()))
		backtracking = append(backtracking, float64(t.BacktrackCount()))
	}

	n := float64(len(trajs))
	s.GoalAchievementRate = float64(achieved) / n
	s.MeanActions = float64(s.TotalActions) / n
	s.MeanAvgActionInterval = intervals / n
	s.MeanDurationSec = float64(durationMs) / n / 1000
	s.MeanErrorCount, s.MedianErrorCount = mean(errorCounts), median(errorCounts)
	s.MeanBacktrackCount, s.MedianBacktrackCount = mean(backtracking), median(backtracking)
	if s.TotalActions > 0 {
		s.IntentionalRatio = float64(intentional) / float64(s.TotalActions)
		s.MeanConfidence = confidence / float64(s.TotalActions)
	}
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
