package stats

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// RenderMarkdown formats Stats as a Markdown report. Distribution rows are
// sorted by key so the output is stable.
func RenderMarkdown(title string, s Stats) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|---|---|\n")
	addRow := func(label, value string) {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", label, value))
	}
	addRow("Trajectories", fmt.Sprintf("%d", s.Count))
	addRow("Total actions", fmt.Sprintf("%d", s.TotalActions))
	addRow("Mean actions", fmt.Sprintf("%.2f", s.MeanActions))
	addRow("Goal achievement rate", fmt.Sprintf("%.1f%%", s.GoalAchievementRate*100))
	addRow("Mean error count", fmt.Sprintf("%.2f", s.MeanErrorCount))
	addRow("Median error count", fmt.Sprintf("%.1f", s.MedianErrorCount))
	addRow("Mean backtrack count", fmt.Sprintf("%.2f", s.MeanBacktrackCount))
	addRow("Median backtrack count", fmt.Sprintf("%.1f", s.MedianBacktrackCount))
	addRow("Mean action interval (s)", fmt.Sprintf("%.2f", s.MeanAvgActionInterval))
	addRow("Mean duration (s)", fmt.Sprintf("%.2f", s.MeanDurationSec))
	addRow("Intentional actions", fmt.Sprintf("%.1f%%", s.IntentionalRatio*100))
	addRow("Mean confidence", fmt.Sprintf("%.3f", s.MeanConfidence))

	writeDistribution(&sb, "Workflow types", s.WorkflowTypes, s.Count)
	writeDistribution(&sb, "User types", s.UserTypes, s.Count)
	writeDistribution(&sb, "Action types", s.ActionTypes, s.TotalActions)
	writeDistribution(&sb, "Element types", s.ElementTypes, s.TotalActions)
	writeDistribution(&sb, "Device types", s.DeviceTypes, s.Count)
	writeDistribution(&sb, "Browser types", s.BrowserTypes, s.Count)

	if len(s.LengthHistogram) > 0 {
		sb.WriteString("\n## Trajectory length\n\n")
		sb.WriteString("| Actions | Trajectories |\n")
		sb.WriteString("|---|---|\n")
		for _, n := range slices.Sorted(maps.Keys(s.LengthHistogram)) {
			sb.WriteString(fmt.Sprintf("| %d | %d |\n", n, s.LengthHistogram[n]))
		}
	}
	return sb.String()
}

func writeDistribution(sb *strings.Builder, heading string, dist map[string]int, total int) {
	if len(dist) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n## %s\n\n", heading))
	sb.WriteString("| Value | Count | Share |\n")
	sb.WriteString("|---|---|---|\n")
	for _, k := range slices.Sorted(maps.Keys(dist)) {
		share := 0.0
		if total > 0 {
			share = float64(dist[k]) / float64(total) * 100
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %.1f%% |\n", k, dist[k], share))
	}
}

// RenderAnalysis formats an Analysis as Markdown, listing at most limit
// samples per section.
func RenderAnalysis(a Analysis, limit int) string {
	var sb strings.Builder

	sb.WriteString("# Trajectory Analysis\n\n")
	sb.WriteString(fmt.Sprintf("Total trajectories: %d\n", a.Total))

	sb.WriteString("\n## Error cases\n\n")
	sb.WriteString(fmt.Sprintf("- Trajectories with errors: %d\n", len(a.WithErrors)))
	sb.WriteString(fmt.Sprintf("- Actions with element_visible=false: %d\n", a.Errors.NotVisible))
	sb.WriteString(fmt.Sprintf("- Actions with element_clickable=false: %d\n", a.Errors.NotClickable))
	sb.WriteString(fmt.Sprintf("- Actions with both false: %d\n", a.Errors.BothUnreachable))
	sb.WriteString(fmt.Sprintf("- Total actions analyzed: %d\n", a.Errors.TotalActions))
	for _, t := range head(a.WithErrors, limit) {
		sb.WriteString(fmt.Sprintf("\n### %s\n\n", t.TrajectoryID))
		sb.WriteString(fmt.Sprintf("Goal `%s`, achieved: %t\n\n", t.Goal, t.GoalAchieved))
		for _, e := range t.Actions {
			sb.WriteString(fmt.Sprintf("- %s `%s`: visible=%t, clickable=%t\n", e.ActionID, e.ActionType, e.ElementVisible, e.ElementClickable))
		}
	}

	sb.WriteString(fmt.Sprintf("\n## Skipped steps (goal achieved with <= %d actions)\n\n", SkippedStepMaxActions))
	sb.WriteString(fmt.Sprintf("Trajectories: %d\n\n", len(a.SkippedSteps)))
	for _, t := range head(a.SkippedSteps, limit) {
		types := make([]string, len(t.Actions))
		for i, at := range t.Actions {
			types[i] = string(at)
		}
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", t.TrajectoryID, t.Goal, strings.Join(types, " -> ")))
	}

	sb.WriteString("\n## Failed goals\n\n")
	sb.WriteString(fmt.Sprintf("Trajectories: %d\n\n", len(a.FailedGoals)))
	for _, t := range head(a.FailedGoals, limit) {
		sb.WriteString(fmt.Sprintf("- %s (%s): %d actions, last `%s`\n", t.TrajectoryID, t.Goal, t.ActionCount, t.LastActionType))
	}
	return sb.String()
}

func head[T any](xs []T, n int) []T {
	if n >= 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}
