package models

// ActionType identifies the kind of browser interaction.
type ActionType string

const (
	ActionClick    ActionType = "click"
	ActionTypeText ActionType = "type"
	ActionNavigate ActionType = "navigate"
	ActionScroll   ActionType = "scroll"
	ActionHover    ActionType = "hover"
	ActionSelect   ActionType = "select"
	ActionSubmit   ActionType = "submit"
	ActionBack     ActionType = "back"
	ActionForward  ActionType = "forward"
	ActionRefresh  ActionType = "refresh"
	ActionWait     ActionType = "wait"
	ActionDragDrop ActionType = "drag_drop"
)

// AllActionTypes lists the closed enumeration in canonical order.
var AllActionTypes = []ActionType{
	ActionClick, ActionTypeText, ActionNavigate, ActionScroll, ActionHover, ActionSelect,
	ActionSubmit, ActionBack, ActionForward, ActionRefresh, ActionWait, ActionDragDrop,
}

// Valid reports whether t is one of the supported action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionClick, ActionTypeText, ActionNavigate, ActionScroll, ActionHover, ActionSelect,
		ActionSubmit, ActionBack, ActionForward, ActionRefresh, ActionWait, ActionDragDrop:
		return true
	}
	return false
}

// IsBacktrack reports whether t moves through the history stack.
func (t ActionType) IsBacktrack() bool {
	return t == ActionBack || t == ActionForward
}

// Point is a viewport coordinate in CSS pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ActionParams carries the parameters that only make sense for one action type.
// The set of implementations is closed; Type() determines the action's type.
type ActionParams interface {
	Type() ActionType
	isActionParams()
}

type ClickParams struct {
	Coordinates *Point
}

type TypeParams struct {
	Value string
}

type NavigateParams struct{}

type ScrollParams struct {
	Coordinates Point
}

type HoverParams struct{}

type SelectParams struct {
	OptionIndex int
}

type SubmitParams struct{}

type BackParams struct{}

type ForwardParams struct{}

type RefreshParams struct{}

// WaitParams holds an explicit idle period.
type WaitParams struct {
	DurationMs int64
}

// DragDropParams holds the drag origin and drop target.
type DragDropParams struct {
	From Point
	To   Point
}

func (ClickParams) Type() ActionType    { return ActionClick }
func (TypeParams) Type() ActionType     { return ActionTypeText }
func (NavigateParams) Type() ActionType { return ActionNavigate }
func (ScrollParams) Type() ActionType   { return ActionScroll }
func (HoverParams) Type() ActionType    { return ActionHover }
func (SelectParams) Type() ActionType   { return ActionSelect }
func (SubmitParams) Type() ActionType   { return ActionSubmit }
func (BackParams) Type() ActionType     { return ActionBack }
func (ForwardParams) Type() ActionType  { return ActionForward }
func (RefreshParams) Type() ActionType  { return ActionRefresh }
func (WaitParams) Type() ActionType     { return ActionWait }
func (DragDropParams) Type() ActionType { return ActionDragDrop }

func (ClickParams) isActionParams()    {}
func (TypeParams) isActionParams()     {}
func (NavigateParams) isActionParams() {}
func (ScrollParams) isActionParams()   {}
func (HoverParams) isActionParams()    {}
func (SelectParams) isActionParams()   {}
func (SubmitParams) isActionParams()   {}
func (BackParams) isActionParams()     {}
func (ForwardParams) isActionParams()  {}
func (RefreshParams) isActionParams()  {}
func (WaitParams) isActionParams()     {}
func (DragDropParams) isActionParams() {}

// BrowserAction is one atomic interaction within a trajectory.
type BrowserAction struct {
	ActionID  string
	Timestamp int64 // ms since trajectory start
	Params    ActionParams

	ElementType     string
	ElementSelector string
	ElementText     string
	ElementID       string
	ElementClasses  []string

	URL       string
	PageTitle string

	IsIntentional bool
	Confidence    float64
	UserIntent    string

	ElementVisible   bool
	ElementClickable bool

	SessionID string
	TabID     string
	FrameID   string
}

// Type returns the action type, or "" when no parameters are attached.
func (a BrowserAction) Type() ActionType {
	if a.Params == nil {
		return ""
	}
	return a.Params.Type()
}

// IsError reports whether the action models a failed interaction.
func (a BrowserAction) IsError() bool {
	return !a.ElementVisible || !a.ElementClickable
}

// Coordinates returns the coordinate pairs an action carries, if any.
func (a BrowserAction) Coordinates() []Point {
	switch p := a.Params.(type) {
	case ClickParams:
		if p.Coordinates != nil {
			return []Point{*p.Coordinates}
		}
	case ScrollParams:
		return []Point{p.Coordinates}
	case DragDropParams:
		return []Point{p.From, p.To}
	}
	return nil
}
