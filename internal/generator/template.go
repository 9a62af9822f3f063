package generator

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/catalog"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// TemplateGenerator builds skeletons offline from catalog page templates. Output
// is a deterministic function of the request.
type TemplateGenerator struct {
	catalog *catalog.Catalog
}

func NewTemplateGenerator(c *catalog.Catalog) *TemplateGenerator {
	return &TemplateGenerator{catalog: c}
}

func (g *TemplateGenerator) Name() string { return "template" }

func (g *TemplateGenerator) GenerateSkeleton(ctx context.Context, req SkeletonRequest) (*Skeleton, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wf, ok := g.catalog.Workflow(req.WorkflowType)
	if !ok {
		return nil, eris.Errorf("template: unknown workflow %q", req.WorkflowType)
	}
	goal, ok := wf.Goals[req.Goal]
	if !ok {
		return nil, eris.Errorf("template: workflow %q has no goal %q", req.WorkflowType, req.Goal)
	}
	if req.Length < 1 {
		return nil, eris.Errorf("template: invalid length %d", req.Length)
	}

	rng := rand.New(rand.NewPCG(req.Seed, 0x7e3a_11c5))
	domain := req.Domain
	if domain == "" {
		domain = g.catalog.Domain(req.WorkflowType, rng.IntN(max(len(wf.Domains), 1)))
	}

	steps := fitSteps(goal.Steps, wf.Filler, req.Length, rng)
	sk := &Skeleton{Domain: domain, Goal: req.Goal, Actions: make([]SkeletonAction, len(steps))}
	for i, s := range steps {
		sk.Actions[i] = fromStep(s, domain)
	}
	if err := Normalize(sk, req); err != nil {
		return nil, err
	}
	return sk, nil
}

// fitSteps keeps the first and last goal steps and either samples the middle
// down or pads it with filler so the result has exactly n entries.
func fitSteps(steps, filler []catalog.Step, n int, rng *rand.Rand) []catalog.Step {
	if len(steps) >= n {
		if n == 1 {
			return []catalog.Step{steps[len(steps)-1]}
		}
		middle := steps[1 : len(steps)-1]
		idx := rng.Perm(len(middle))[:n-2]
		slices.Sort(idx)
		out := make([]catalog.Step, 0, n)
		out = append(out, steps[0])
		for _, i := range idx {
			out = append(out, middle[i])
		}
		return append(out, steps[len(steps)-1])
	}

	if len(filler) == 0 {
		filler = []catalog.Step{{ActionType: string(models.ActionScroll), Intent: "browse"}}
	}
	head := slices.Clone(steps[:len(steps)-1])
	last := steps[len(steps)-1]
	for len(head)+1 < n {
		f := filler[rng.IntN(len(filler))]
		// Position 0 stays the opening step.
		pos := 0
		if len(head) > 0 {
			pos = 1 + rng.IntN(len(head))
		}
		// A filler without a path stays on the page of the step before it.
		if f.Path == "" && pos > 0 {
			f.Path = head[pos-1].Path
			f.PageTitle = head[pos-1].PageTitle
		}
		head = slices.Insert(head, pos, f)
	}
	return append(head, last)
}

func fromStep(s catalog.Step, domain string) SkeletonAction {
	a := SkeletonAction{
		ActionType:      s.ActionType,
		ElementType:     s.ElementType,
		ElementSelector: s.Selector,
		ElementID:       s.ElementID,
		ElementText:     s.ElementText,
		PageTitle:       s.PageTitle,
		Context:         s.Context,
		UserIntent:      s.Intent,
		FieldType:       s.FieldType,
		ValueHint:       s.ValueHint,
		OptionIndex:     s.OptionIndex,
		Wait:            s.Wait,
	}
	if s.Path != "" {
		a.URL = "https://" + domain + s.Path
	}
	if s.PageTitle != "" {
		a.PageTitle = s.PageTitle + " - " + domain
	}
	return a
}
