// Package synth turns skeleton entries into fully populated browser actions.
package synth

import (
	"fmt"
	"math/rand/v2"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/generator"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/util"
)

// Profile is the per-trajectory simulated user. Its random source is consumed
// in action order, so a trajectory is reproducible from its seed.
type Profile struct {
	UserType  models.UserType
	TypingWPM float64
	rng       *rand.Rand
}

func NewProfile(u models.UserType, seed uint64) *Profile {
	rng := rand.New(rand.NewPCG(seed, 0x51d3_a7c9))
	return &Profile{UserType: u, TypingWPM: sampleTypingSpeed(u, rng), rng: rng}
}

// Cursor is the state carried from the previous synthesized action.
type Cursor struct {
	HasPrev   bool
	Timestamp int64
	URL       string
	PageTitle string
}

// Advance returns the cursor positioned after a.
func (c Cursor) Advance(a models.BrowserAction) Cursor {
	return Cursor{HasPrev: true, Timestamp: a.Timestamp, URL: a.URL, PageTitle: a.PageTitle}
}

type Synthesizer struct {
	profile   *Profile
	sessionID string
	tabID     string
}

func New(p *Profile, sessionID, tabID string) *Synthesizer {
	return &Synthesizer{profile: p, sessionID: sessionID, tabID: tabID}
}

// Synthesize builds the action at position from a skeleton entry. The first
// action sits at timestamp 0; every later one is strictly after prev. A
// *models.MissingTargetError means the entry should be dropped.
func (s *Synthesizer) Synthesize(desc generator.SkeletonAction, position int, prev Cursor) (models.BrowserAction, error) {
	t := desc.Type()
	missing := func(reason string) error {
		return &models.MissingTargetError{Position: position, ActionType: t, Reason: reason}
	}
	if !t.Valid() {
		return models.BrowserAction{}, models.NewSchemaViolation(fmt.Sprintf("action %d: unknown action_type %q", position, desc.ActionType))
	}

	a := models.BrowserAction{
		ActionID:         fmt.Sprintf("action_%03d", position),
		ElementType:      desc.ElementType,
		ElementText:      desc.ElementText,
		ElementID:        desc.ElementID,
		ElementClasses:   desc.ElementClasses,
		URL:              desc.URL,
		PageTitle:        desc.PageTitle,
		IsIntentional:    boolOr(desc.IsIntentional, true),
		Confidence:       1,
		UserIntent:       desc.UserIntent,
		ElementVisible:   boolOr(desc.ElementVisible, true),
		ElementClickable: boolOr(desc.ElementClickable, true),
		SessionID:        s.sessionID,
		TabID:            s.tabID,
	}
	if desc.Confidence != nil {
		a.Confidence = min(max(*desc.Confidence, 0), 1)
	}
	if a.URL == "" {
		a.URL = prev.URL
	}
	if a.PageTitle == "" {
		a.PageTitle = prev.PageTitle
	}

	a.ElementSelector = resolveSelector(desc.ElementSelector, desc.ElementID, desc.ElementType, desc.ElementText)
	if a.ElementSelector == "" {
		if needsTarget(t) {
			return models.BrowserAction{}, missing("no selector, element_id or element_text")
		}
		a.ElementSelector = defaultSelector(t)
	}

	var (
		value  string
		waitMs int64 = -1
	)
	switch t {
	case models.ActionClick:
		p := models.ClickParams{}
		if c := desc.Coordinates; c != nil && c.X != nil && c.Y != nil {
			p.Coordinates = &models.Point{X: *c.X, Y: *c.Y}
		}
		a.Params = p
	case models.ActionTypeText:
		if desc.Value != nil {
			value = *desc.Value
		}
		a.Params = models.TypeParams{Value: value}
	case models.ActionNavigate:
		if desc.URL == "" {
			return models.BrowserAction{}, missing("navigate without url")
		}
		a.Params = models.NavigateParams{}
	case models.ActionScroll:
		p := models.ScrollParams{Coordinates: models.Point{X: 0, Y: 300 + 100*s.profile.rng.IntN(13)}}
		if c := desc.Coordinates; c != nil && c.X != nil && c.Y != nil {
			p.Coordinates = models.Point{X: *c.X, Y: *c.Y}
		}
		a.Params = p
	case models.ActionHover:
		a.Params = models.HoverParams{}
	case models.ActionSelect:
		if desc.OptionIndex == nil {
			return models.BrowserAction{}, missing("select without option_index")
		}
		a.Params = models.SelectParams{OptionIndex: *desc.OptionIndex}
	case models.ActionSubmit:
		a.Params = models.SubmitParams{}
	case models.ActionBack:
		a.Params = models.BackParams{}
	case models.ActionForward:
		a.Params = models.ForwardParams{}
	case models.ActionRefresh:
		a.Params = models.RefreshParams{}
	case models.ActionWait:
		switch {
		case desc.DurationMs != nil:
			waitMs = *desc.DurationMs
		case desc.Wait != "":
			ms, err := util.ParseWaitMillis(desc.Wait)
			if err != nil {
				return models.BrowserAction{}, models.NewSchemaViolation(fmt.Sprintf("action %d: %v", position, err))
			}
			waitMs = ms
		}
		a.Params = models.WaitParams{DurationMs: max(waitMs, 0)}
	case models.ActionDragDrop:
		c := desc.Coordinates
		if c == nil || c.X1 == nil || c.Y1 == nil || c.X2 == nil || c.Y2 == nil {
			return models.BrowserAction{}, missing("drag_drop without start and end coordinates")
		}
		a.Params = models.DragDropParams{
			From: models.Point{X: *c.X1, Y: *c.Y1},
			To:   models.Point{X: *c.X2, Y: *c.Y2},
		}
	}

	if prev.HasPrev {
		a.Timestamp = prev.Timestamp + gapFor(s.profile, t, a.UserIntent, value, waitMs)
	}
	return a, nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
