package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"net/url"
	"strconv"
	"strings"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// Fingerprint hashes the content of a trajectory: per action its type, element
// type, normalized selector, normalized URL path and value or option index,
// plus the workflow type and goal. Timestamps, ids and session/tab
// identifiers do not contribute.
func Fingerprint(t *models.Trajectory) string {
	h := sha256.New()
	writeField(h, string(t.WorkflowType))
	writeField(h, t.Goal)
	writeField(h, strconv.Itoa(len(t.Actions)))
	for _, a := range t.Actions {
		writeField(h, string(a.Type()))
		writeField(h, strings.ToLower(a.ElementType))
		writeField(h, NormalizeSelector(a.ElementSelector))
		writeField(h, NormalizePath(a.URL))
		writeField(h, normalizedPayload(a))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes s so that adjacent fields cannot run together.
func writeField(h hash.Hash, s string) {
	fmt.Fprintf(h, "%d:%s|", len(s), s)
}

// NormalizeSelector lowercases a selector and collapses whitespace.
func NormalizeSelector(sel string) string {
	return strings.ToLower(strings.Join(strings.Fields(sel), " "))
}

// NormalizePath returns the lowercased path of raw without a trailing slash.
// The root path is "/".
func NormalizePath(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(strings.ToLower(p), "/")
	if p == "" {
		return "/"
	}
	return p
}

func normalizedPayload(a models.BrowserAction) string {
	switch p := a.Params.(type) {
	case models.TypeParams:
		return "value:" + strings.ToLower(strings.Join(strings.Fields(p.Value), " "))
	case models.SelectParams:
		return "option:" + strconv.Itoa(p.OptionIndex)
	}
	return ""
}
