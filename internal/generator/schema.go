package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/util"
)

var actionTypeAliases = map[string]models.ActionType{
	"input":     models.ActionTypeText,
	"typing":    models.ActionTypeText,
	"goto":      models.ActionNavigate,
	"drag-drop": models.ActionDragDrop,
	"dragdrop":  models.ActionDragDrop,
	"drag":      models.ActionDragDrop,
	"go_back":   models.ActionBack,
}

// ParseSkeleton decodes a collaborator response. Markdown code fences around the
// JSON are stripped, and a bare array of actions is accepted.
func ParseSkeleton(text string) (*Skeleton, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, models.NewSchemaViolation("empty response")
	}

	var sk Skeleton
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &sk.Actions); err != nil {
			return nil, models.NewSchemaViolation("decoding action array: " + err.Error())
		}
		return &sk, nil
	}
	if err := json.Unmarshal([]byte(text), &sk); err != nil {
		return nil, models.NewSchemaViolation("decoding skeleton: " + err.Error())
	}
	return &sk, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		// Drop the language tag line, e.g. ```json
		text = text[i+1:]
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// Normalize canonicalises a skeleton in place and checks it against the request.
// Action types are lowercased and aliases resolved, missing url/page_title are
// carried over from the previous entry, and value_hint stands in for an absent
// value on type actions. Any problem yields a *models.SchemaViolation.
func Normalize(sk *Skeleton, req SkeletonRequest) error {
	if sk == nil {
		return models.NewSchemaViolation("nil skeleton")
	}
	var problems []string
	if sk.Domain == "" {
		sk.Domain = req.Domain
	}
	if sk.Goal == "" {
		sk.Goal = req.Goal
	}

	prevURL := ""
	if sk.Domain != "" {
		prevURL = "https://" + sk.Domain + "/"
	}
	prevTitle := ""
	for i := range sk.Actions {
		a := &sk.Actions[i]

		at := strings.ToLower(strings.TrimSpace(a.ActionType))
		if alias, ok := actionTypeAliases[at]; ok {
			at = string(alias)
		}
		a.ActionType = at
		if !a.Type().Valid() {
			problems = append(problems, fmt.Sprintf("actions[%d]: unknown action_type %q", i, at))
			continue
		}

		a.URL = strings.TrimSpace(a.URL)
		if a.URL == "" {
			a.URL = prevURL
		}
		prevURL = a.URL
		if a.PageTitle == "" {
			a.PageTitle = prevTitle
		}
		prevTitle = a.PageTitle

		if a.Type() == models.ActionTypeText && a.Value == nil && a.ValueHint != "" {
			hint := a.ValueHint
			a.Value = &hint
		}
		if a.Wait != "" {
			if _, err := util.ParseWaitMillis(a.Wait); err != nil {
				problems = append(problems, fmt.Sprintf("actions[%d]: %v", i, err))
			}
		}
	}

	if len(sk.Actions) != req.Length {
		problems = append(problems, fmt.Sprintf("expected %d actions, got %d", req.Length, len(sk.Actions)))
	}
	if len(problems) > 0 {
		return models.NewSchemaViolation(problems...)
	}
	return nil
}
