package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(22)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
)

// renderSummary formats a job result for the terminal.
func renderSummary(r *models.JobResult) string {
	var rows []string
	row := func(label, value string) {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
	}

	accepted := goodStyle.Render(fmt.Sprintf("%d / %d", r.Accepted, r.Requested))
	if r.Shortfall > 0 {
		accepted = badStyle.Render(fmt.Sprintf("%d / %d (short %d)", r.Accepted, r.Requested, r.Shortfall))
	}
	row("Accepted", accepted)

	g := r.Generation
	row("Generated", fmt.Sprintf("%d ok, %d failed, %d skipped", g.Succeeded, g.Failed, g.Skipped))
	row("Retries", fmt.Sprintf("%d", g.Retries))
	row("Dropped actions", fmt.Sprintf("%d", g.DroppedActions))

	rate := fmt.Sprintf("%.1f%%", g.FailureRate*100)
	if g.FailureRateExceeded {
		rate = badStyle.Render(rate + " (exceeded)")
	}
	row("Failure rate", rate)
	row("Duplicates removed", fmt.Sprintf("%d exact, %d near", r.Dedup.ExactRemoved, r.Dedup.NearRemoved))
	row("Validation", fmt.Sprintf("%d rejected, %d repaired", r.Validation.Rejected, r.Validation.Repaired))
	row("Duration", fmt.Sprintf("%.2fs", r.TotalDurationSec))
	if r.Cancelled {
		row("Status", badStyle.Render("cancelled"))
	}

	title := titleStyle.Render("Job " + r.JobName)
	return lipgloss.JoinVertical(lipgloss.Left, title, boxStyle.Render(strings.Join(rows, "\n")))
}

// renderReport formats the outcome of a standalone filter command.
func renderReport(title string, lines ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), boxStyle.Render(strings.Join(lines, "\n")))
}
