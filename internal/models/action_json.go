package models

import (
	"encoding/json"
	"fmt"
)

// wireCoordinates holds either {x,y} or {x1,y1,x2,y2}.
type wireCoordinates struct {
	X  *int `json:"x,omitempty"`
	Y  *int `json:"y,omitempty"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
	X2 *int `json:"x2,omitempty"`
	Y2 *int `json:"y2,omitempty"`
}

type wireAction struct {
	ActionID         string           `json:"action_id"`
	Timestamp        int64            `json:"timestamp"`
	ActionType       ActionType       `json:"action_type"`
	ElementType      string           `json:"element_type"`
	ElementSelector  string           `json:"element_selector"`
	ElementText      string           `json:"element_text,omitempty"`
	ElementID        string           `json:"element_id,omitempty"`
	ElementClasses   []string         `json:"element_classes,omitempty"`
	Value            *string          `json:"value,omitempty"`
	OptionIndex      *int             `json:"option_index,omitempty"`
	Coordinates      *wireCoordinates `json:"coordinates,omitempty"`
	DurationMs       *int64           `json:"duration_ms,omitempty"`
	URL              string           `json:"url"`
	PageTitle        string           `json:"page_title"`
	IsIntentional    *bool            `json:"is_intentional"`
	Confidence       *float64         `json:"confidence"`
	UserIntent       string           `json:"user_intent,omitempty"`
	ElementVisible   *bool            `json:"element_visible"`
	ElementClickable *bool            `json:"element_clickable"`
	SessionID        string           `json:"session_id"`
	TabID            string           `json:"tab_id"`
	FrameID          string           `json:"frame_id,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// MarshalJSON flattens the action and its parameters into one mapping.
func (a BrowserAction) MarshalJSON() ([]byte, error) {
	w := wireAction{
		ActionID:         a.ActionID,
		Timestamp:        a.Timestamp,
		ActionType:       a.Type(),
		ElementType:      a.ElementType,
		ElementSelector:  a.ElementSelector,
		ElementText:      a.ElementText,
		ElementID:        a.ElementID,
		ElementClasses:   a.ElementClasses,
		URL:              a.URL,
		PageTitle:        a.PageTitle,
		IsIntentional:    ptr(a.IsIntentional),
		Confidence:       ptr(a.Confidence),
		UserIntent:       a.UserIntent,
		ElementVisible:   ptr(a.ElementVisible),
		ElementClickable: ptr(a.ElementClickable),
		SessionID:        a.SessionID,
		TabID:            a.TabID,
		FrameID:          a.FrameID,
	}
	switch p := a.Params.(type) {
	case nil:
		return nil, NewSchemaViolation(fmt.Sprintf("action %q has no parameters", a.ActionID))
	case TypeParams:
		w.Value = ptr(p.Value)
	case SelectParams:
		w.OptionIndex = ptr(p.OptionIndex)
	case ClickParams:
		if p.Coordinates != nil {
			w.Coordinates = &wireCoordinates{X: ptr(p.Coordinates.X), Y: ptr(p.Coordinates.Y)}
		}
	case ScrollParams:
		w.Coordinates = &wireCoordinates{X: ptr(p.Coordinates.X), Y: ptr(p.Coordinates.Y)}
	case DragDropParams:
		w.Coordinates = &wireCoordinates{
			X1: ptr(p.From.X), Y1: ptr(p.From.Y),
			X2: ptr(p.To.X), Y2: ptr(p.To.Y),
		}
	case WaitParams:
		w.DurationMs = ptr(p.DurationMs)
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the flat mapping produced by MarshalJSON. Missing
// boolean DOM/intent flags default to true and a missing confidence to 1.
// A select without option_index decodes with OptionIndex -1 so that
// validation rejects it.
func (a *BrowserAction) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	params, err := decodeParams(w)
	if err != nil {
		return err
	}
	*a = BrowserAction{
		ActionID:         w.ActionID,
		Timestamp:        w.Timestamp,
		Params:           params,
		ElementType:      w.ElementType,
		ElementSelector:  w.ElementSelector,
		ElementText:      w.ElementText,
		ElementID:        w.ElementID,
		ElementClasses:   w.ElementClasses,
		URL:              w.URL,
		PageTitle:        w.PageTitle,
		IsIntentional:    boolOr(w.IsIntentional, true),
		Confidence:       1,
		UserIntent:       w.UserIntent,
		ElementVisible:   boolOr(w.ElementVisible, true),
		ElementClickable: boolOr(w.ElementClickable, true),
		SessionID:        w.SessionID,
		TabID:            w.TabID,
		FrameID:          w.FrameID,
	}
	if w.Confidence != nil {
		a.Confidence = *w.Confidence
	}
	return nil
}

func decodeParams(w wireAction) (ActionParams, error) {
	c := w.Coordinates
	switch w.ActionType {
	case ActionClick:
		p := ClickParams{}
		if c != nil && c.X != nil && c.Y != nil {
			p.Coordinates = &Point{X: *c.X, Y: *c.Y}
		}
		return p, nil
	case ActionTypeText:
		p := TypeParams{}
		if w.Value != nil {
			p.Value = *w.Value
		}
		return p, nil
	case ActionNavigate:
		return NavigateParams{}, nil
	case ActionScroll:
		p := ScrollParams{}
		if c != nil && c.X != nil && c.Y != nil {
			p.Coordinates = Point{X: *c.X, Y: *c.Y}
		}
		return p, nil
	case ActionHover:
		return HoverParams{}, nil
	case ActionSelect:
		p := SelectParams{OptionIndex: -1}
		if w.OptionIndex != nil {
			p.OptionIndex = *w.OptionIndex
		}
		return p, nil
	case ActionSubmit:
		return SubmitParams{}, nil
	case ActionBack:
		return BackParams{}, nil
	case ActionForward:
		return ForwardParams{}, nil
	case ActionRefresh:
		return RefreshParams{}, nil
	case ActionWait:
		p := WaitParams{}
		if w.DurationMs != nil {
			p.DurationMs = *w.DurationMs
		}
		return p, nil
	case ActionDragDrop:
		if c == nil || c.X1 == nil || c.Y1 == nil || c.X2 == nil || c.Y2 == nil {
			return nil, NewSchemaViolation(fmt.Sprintf("action %q: drag_drop requires x1,y1,x2,y2 coordinates", w.ActionID))
		}
		return DragDropParams{From: Point{X: *c.X1, Y: *c.Y1}, To: Point{X: *c.X2, Y: *c.Y2}}, nil
	}
	return nil, NewSchemaViolation(fmt.Sprintf("action %q: unknown action_type %q", w.ActionID, w.ActionType))
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
