package catalog

import (
	"slices"
	"sort"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// Catalog describes the workflows the generator knows how to produce: their
// goals, completion signals, domains and page templates.
type Catalog struct {
	Version   string              `toml:"version"`
	Workflows map[string]Workflow `toml:"workflows"`
}

type Workflow struct {
	Weight  float64         `toml:"weight"`
	Domains []string        `toml:"domains"`
	Goals   map[string]Goal `toml:"goals"`
	// Filler steps pad template skeletons up to the requested length.
	Filler []Step `toml:"filler"`
}

type Goal struct {
	Description       string   `toml:"description"`
	CompletionSignals []string `toml:"completion_signals"`
	Steps             []Step   `toml:"steps"`
}

// Step is one page-template entry. Path is joined onto the chosen domain.
type Step struct {
	ActionType  string `toml:"action_type"`
	ElementType string `toml:"element_type"`
	Selector    string `toml:"selector"`
	ElementID   string `toml:"element_id"`
	ElementText string `toml:"element_text"`
	Path        string `toml:"path"`
	PageTitle   string `toml:"page_title"`
	Intent      string `toml:"intent"`
	Context     string `toml:"context"`
	FieldType   string `toml:"field_type"`
	ValueHint   string `toml:"value_hint"`
	OptionIndex *int   `toml:"option_index"`
	Wait        string `toml:"wait"`
}

// Workflow returns the named workflow and whether it exists.
func (c *Catalog) Workflow(w models.WorkflowType) (Workflow, bool) {
	wf, ok := c.Workflows[string(w)]
	return wf, ok
}

// Goals lists the goal names of a workflow in sorted order.
func (c *Catalog) Goals(w models.WorkflowType) []string {
	wf, ok := c.Workflow(w)
	if !ok {
		return nil
	}
	goals := make([]string, 0, len(wf.Goals))
	for name := range wf.Goals {
		goals = append(goals, name)
	}
	sort.Strings(goals)
	return goals
}

// CompletionSignals returns the user intents that mark the goal as achieved.
// The goal name itself always counts as a signal.
func (c *Catalog) CompletionSignals(w models.WorkflowType, goal string) []string {
	signals := []string{goal}
	if wf, ok := c.Workflow(w); ok {
		if g, ok := wf.Goals[goal]; ok {
			signals = append(signals, g.CompletionSignals...)
		}
	}
	slices.Sort(signals)
	return slices.Compact(signals)
}

// Domain returns the i-th domain of a workflow, wrapping around.
func (c *Catalog) Domain(w models.WorkflowType, i int) string {
	wf, ok := c.Workflow(w)
	if !ok || len(wf.Domains) == 0 {
		return "example.com"
	}
	if i < 0 {
		i = -i
	}
	return wf.Domains[i%len(wf.Domains)]
}

// Weights returns the workflow weights declared in the catalog. A catalog
// that declares no positive weight gives every workflow weight 1.
func (c *Catalog) Weights() map[models.WorkflowType]float64 {
	out := make(map[models.WorkflowType]float64, len(c.Workflows))
	var total float64
	for name, wf := range c.Workflows {
		out[models.WorkflowType(name)] = wf.Weight
		total += wf.Weight
	}
	if total <= 0 {
		for w := range out {
			out[w] = 1
		}
	}
	return out
}
