// Package validator decides whether a generated trajectory is acceptable.
package validator

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// DefaultConfig returns the rule thresholds used when a job sets none.
func DefaultConfig() models.ValidationConfig {
	return models.ValidationConfig{
		SoftIssueThreshold: 2,
		ViewportWidth:      10000,
		ViewportHeight:     10000,
		MaxValueLength:     10000,
		MaxSelectorLength:  500,
		MaxBackForwardRun:  5,
	}
}

// Validator applies hard and soft rules to one trajectory at a time. It holds
// no state between calls.
type Validator struct {
	cfg models.ValidationConfig
}

// New fills zero fields of cfg from DefaultConfig. A negative
// SoftIssueThreshold rejects on the first soft issue.
func New(cfg models.ValidationConfig) *Validator {
	def := DefaultConfig()
	if cfg.SoftIssueThreshold == 0 {
		cfg.SoftIssueThreshold = def.SoftIssueThreshold
	}
	if cfg.SoftIssueThreshold < 0 {
		cfg.SoftIssueThreshold = 0
	}
	if cfg.ViewportWidth <= 0 {
		cfg.ViewportWidth = def.ViewportWidth
	}
	if cfg.ViewportHeight <= 0 {
		cfg.ViewportHeight = def.ViewportHeight
	}
	if cfg.MaxValueLength <= 0 {
		cfg.MaxValueLength = def.MaxValueLength
	}
	if cfg.MaxSelectorLength <= 0 {
		cfg.MaxSelectorLength = def.MaxSelectorLength
	}
	if cfg.MaxBackForwardRun <= 0 {
		cfg.MaxBackForwardRun = def.MaxBackForwardRun
	}
	return &Validator{cfg: cfg}
}

// Validate checks t and returns whether it is accepted plus every issue found,
// in rule order. Repairs (duplicate id renames, payload truncation) are applied
// to t in place. Soft issues reject only when their count exceeds the
// configured threshold; repairs never count.
func (v *Validator) Validate(t *models.Trajectory) (bool, []models.ValidationIssue) {
	var c collector

	if n := len(t.Actions); n < models.MinActions || n > models.MaxActions {
		c.hard(RuleActionCount, -1, "trajectory has %d actions, want %d-%d", n, models.MinActions, models.MaxActions)
	}
	for i := 1; i < len(t.Actions); i++ {
		if t.Actions[i].Timestamp < t.Actions[i-1].Timestamp {
			c.hard(RuleTimestampOrder, i, "timestamp %d precedes previous %d", t.Actions[i].Timestamp, t.Actions[i-1].Timestamp)
		}
	}
	v.checkIDs(t, &c)
	for i := range t.Actions {
		v.checkAction(&t.Actions[i], i, &c)
	}

	v.checkNavigationLoops(t, &c)
	checkDomainDrift(t, &c)
	checkWorkflowOrder(t, &c)

	accepted := c.hardCount == 0 && c.softCount <= v.cfg.SoftIssueThreshold
	if !accepted && c.hardCount == 0 {
		c.issues = append(c.issues, models.ValidationIssue{
			Rule:        RuleSoftThreshold,
			Severity:    models.SeverityHard,
			ActionIndex: -1,
			Message:     fmt.Sprintf("%d soft issues exceed threshold %d", c.softCount, v.cfg.SoftIssueThreshold),
		})
	}
	for _, is := range c.issues {
		if is.Severity != models.SeverityHard {
			zap.L().Debug("validation issue",
				zap.String("trajectory_id", t.TrajectoryID),
				zap.String("rule", is.Rule),
				zap.String("severity", string(is.Severity)),
				zap.String("message", is.Message),
			)
		}
	}
	return accepted, c.issues
}

type collector struct {
	issues    []models.ValidationIssue
	hardCount int
	softCount int
}

func (c *collector) add(sev models.Severity, rule string, idx int, format string, args ...any) {
	c.issues = append(c.issues, models.ValidationIssue{
		Rule:        rule,
		Severity:    sev,
		ActionIndex: idx,
		Message:     fmt.Sprintf(format, args...),
	})
	switch sev {
	case models.SeverityHard:
		c.hardCount++
	case models.SeveritySoft:
		c.softCount++
	}
}

func (c *collector) hard(rule string, idx int, format string, args ...any) {
	c.add(models.SeverityHard, rule, idx, format, args...)
}

func (c *collector) soft(rule string, idx int, format string, args ...any) {
	c.add(models.SeveritySoft, rule, idx, format, args...)
}

// checkIDs renames the N-th repeat of an id to <id>_dup<N>. If the new name
// is itself taken, the trajectory is rejected.
func (v *Validator) checkIDs(t *models.Trajectory, c *collector) {
	taken := make(map[string]int, len(t.Actions))
	for _, a := range t.Actions {
		taken[a.ActionID]++
	}
	seen := make(map[string]int, len(t.Actions))
	for i := range t.Actions {
		id := t.Actions[i].ActionID
		seen[id]++
		if seen[id] == 1 {
			continue
		}
		renamed := fmt.Sprintf("%s_dup%d", id, seen[id]-1)
		if taken[renamed] > 0 {
			c.hard(RuleDuplicateID, i, "duplicate action_id %q and rename %q collides", id, renamed)
			continue
		}
		taken[renamed]++
		t.Actions[i].ActionID = renamed
		c.add(models.SeverityRepair, RuleRenamedID, i, "duplicate action_id %q renamed to %q", id, renamed)
	}
}

func (v *Validator) checkAction(a *models.BrowserAction, i int, c *collector) {
	if a.Params == nil || !a.Type().Valid() {
		c.hard(RuleActionType, i, "action %q has no valid action_type", a.ActionID)
		return
	}

	switch p := a.Params.(type) {
	case models.NavigateParams:
		if !isAbsoluteHTTPURL(a.URL) {
			c.hard(RuleNavigateURL, i, "navigate url %q is not an absolute http(s) URL", a.URL)
		}
	case models.TypeParams:
		if p.Value == "" && a.IsIntentional {
			c.hard(RuleTypeValue, i, "intentional type action has no value")
		}
		if utf8.RuneCountInString(p.Value) > v.cfg.MaxValueLength {
			a.Params = models.TypeParams{Value: truncate(p.Value, v.cfg.MaxValueLength)}
			c.soft(RuleOversizedValue, i, "value truncated to %d characters", v.cfg.MaxValueLength)
		}
	case models.SelectParams:
		if p.OptionIndex < 0 {
			c.hard(RuleSelectOption, i, "select option_index %d is negative", p.OptionIndex)
		}
	}

	lower := strings.ToLower(a.ElementSelector)
	for _, m := range unsafeSelectorMarkers {
		if strings.Contains(lower, m) {
			c.hard(RuleUnsafeSelector, i, "selector contains %q", m)
			break
		}
	}
	if utf8.RuneCountInString(a.ElementSelector) > v.cfg.MaxSelectorLength {
		a.ElementSelector = truncate(a.ElementSelector, v.cfg.MaxSelectorLength)
		c.soft(RuleOversizedTarget, i, "selector truncated to %d characters", v.cfg.MaxSelectorLength)
	}

	if math.IsNaN(a.Confidence) || a.Confidence < 0 || a.Confidence > 1 {
		c.hard(RuleConfidenceRange, i, "confidence %v outside [0,1]", a.Confidence)
	}

	switch a.Type() {
	case models.ActionClick, models.ActionScroll, models.ActionDragDrop:
		for _, pt := range a.Coordinates() {
			if pt.X < 0 || pt.Y < 0 || pt.X > v.cfg.ViewportWidth || pt.Y > v.cfg.ViewportHeight {
				c.soft(RuleCoordinates, i, "coordinates (%d,%d) outside %dx%d viewport", pt.X, pt.Y, v.cfg.ViewportWidth, v.cfg.ViewportHeight)
				break
			}
		}
	}
}

func (v *Validator) checkNavigationLoops(t *models.Trajectory, c *collector) {
	run, start := 0, 0
	flush := func() {
		if run > v.cfg.MaxBackForwardRun {
			c.soft(RuleNavigationLoop, start, "%d consecutive back/forward actions", run)
		}
		run = 0
	}
	for i, a := range t.Actions {
		if a.Type().IsBacktrack() {
			if run == 0 {
				start = i
			}
			run++
			continue
		}
		flush()
	}
	flush()
}

func checkDomainDrift(t *models.Trajectory, c *collector) {
	current := ""
	for i, a := range t.Actions {
		h := host(a.URL)
		if h == "" {
			continue
		}
		if a.Type() == models.ActionNavigate || current == "" {
			current = h
			continue
		}
		if h != current {
			c.soft(RuleDomainDrift, i, "domain changed from %s to %s without navigate", current, h)
			current = h
		}
	}
}

// checkWorkflowOrder flags a submit with no click, type or select since the
// last navigate in form-oriented workflows.
func checkWorkflowOrder(t *models.Trajectory, c *collector) {
	if t.WorkflowType != models.WorkflowFormFilling && t.WorkflowType != models.WorkflowECommerce {
		return
	}
	contributed := false
	for i, a := range t.Actions {
		switch a.Type() {
		case models.ActionNavigate:
			contributed = false
		case models.ActionClick, models.ActionTypeText, models.ActionSelect:
			contributed = true
		case models.ActionSubmit:
			if !contributed {
				c.soft(RuleWorkflowOrder, i, "submit with no preceding form interaction")
			}
		}
	}
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
