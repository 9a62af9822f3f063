// Package generator defines the structured content generation capability that
// produces candidate action skeletons, along with its backends.
package generator

import (
	"context"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// StructuredGenerator produces a candidate action skeleton. Implementations must
// return exactly req.Length actions or fail.
type StructuredGenerator interface {
	// Name returns the backend name (e.g., "anthropic", "template").
	Name() string

	// GenerateSkeleton returns a normalized skeleton for the request.
	GenerateSkeleton(ctx context.Context, req SkeletonRequest) (*Skeleton, error)
}

// SkeletonRequest seeds one skeleton generation call.
type SkeletonRequest struct {
	WorkflowType models.WorkflowType
	UserType     models.UserType
	Goal         string
	Length       int
	// Domain is used when the backend does not choose one itself.
	Domain string
	Seed   uint64
}

// Skeleton is the unrefined candidate action list.
type Skeleton struct {
	Domain  string           `json:"domain,omitempty"`
	Goal    string           `json:"goal,omitempty"`
	Actions []SkeletonAction `json:"actions"`
}

// Coordinates holds either {x,y} or {x1,y1,x2,y2}.
type Coordinates struct {
	X  *int `json:"x,omitempty"`
	Y  *int `json:"y,omitempty"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
	X2 *int `json:"x2,omitempty"`
	Y2 *int `json:"y2,omitempty"`
}

// SkeletonAction is one rough action description.
type SkeletonAction struct {
	ActionType       string       `json:"action_type"`
	ElementType      string       `json:"element_type,omitempty"`
	ElementSelector  string       `json:"element_selector,omitempty"`
	ElementID        string       `json:"element_id,omitempty"`
	ElementText      string       `json:"element_text,omitempty"`
	ElementClasses   []string     `json:"element_classes,omitempty"`
	URL              string       `json:"url,omitempty"`
	PageTitle        string       `json:"page_title,omitempty"`
	Context          string       `json:"context,omitempty"`
	UserIntent       string       `json:"user_intent,omitempty"`
	IsIntentional    *bool        `json:"is_intentional,omitempty"`
	Confidence       *float64     `json:"confidence,omitempty"`
	FieldType        string       `json:"field_type,omitempty"`
	Value            *string      `json:"value,omitempty"`
	ValueHint        string       `json:"value_hint,omitempty"`
	OptionIndex      *int         `json:"option_index,omitempty"`
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
	Wait             string       `json:"wait,omitempty"`
	DurationMs       *int64       `json:"duration_ms,omitempty"`
	ElementVisible   *bool        `json:"element_visible,omitempty"`
	ElementClickable *bool        `json:"element_clickable,omitempty"`
}

// Type returns the action type of the entry.
func (s SkeletonAction) Type() models.ActionType {
	return models.ActionType(s.ActionType)
}
