package synth

import (
	"strings"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// needsTarget lists the action types that must address a concrete element.
func needsTarget(t models.ActionType) bool {
	switch t {
	case models.ActionClick, models.ActionTypeText, models.ActionHover, models.ActionSelect, models.ActionDragDrop:
		return true
	}
	return false
}

// defaultSelector is used for action types that act on the page as a whole.
func defaultSelector(t models.ActionType) string {
	switch t {
	case models.ActionScroll:
		return "body"
	case models.ActionSubmit:
		return "form"
	}
	return ""
}

// resolveSelector applies the fallback chain: explicit selector, then
// #element_id, then a text pseudo-selector built from element_text.
func resolveSelector(selector, elementID, elementType, text string) string {
	if s := strings.TrimSpace(selector); s != "" {
		return s
	}
	if id := strings.TrimSpace(elementID); id != "" {
		return "#" + id
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}
	quoted := `"` + strings.ReplaceAll(text, `"`, `\"`) + `"`
	if elementType != "" {
		return elementType + ":has-text(" + quoted + ")"
	}
	return "text=" + quoted
}
