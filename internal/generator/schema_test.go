package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

func TestParseSkeleton(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		actions int
		domain  string
	}{
		{"object", `{"domain":"a.com","actions":[{"action_type":"navigate"}]}`, 1, "a.com"},
		{"fenced", "```json\n{\"domain\":\"b.com\",\"actions\":[{\"action_type\":\"click\"},{\"action_type\":\"scroll\"}]}\n```", 2, "b.com"},
		{"bare array", `[{"action_type":"navigate"},{"action_type":"click"}]`, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk, err := ParseSkeleton(tt.text)
			require.NoError(t, err)
			assert.Len(t, sk.Actions, tt.actions)
			assert.Equal(t, tt.domain, sk.Domain)
		})
	}
}

func TestParseSkeletonMalformed(t *testing.T) {
	for _, text := range []string{"", "```\n```", "not json", `{"actions": 3}`} {
		_, err := ParseSkeleton(text)
		var sv *models.SchemaViolation
		assert.True(t, errors.As(err, &sv), "text %q: got %v", text, err)
	}
}

func TestNormalize(t *testing.T) {
	hint := "laptop"
	sk := &Skeleton{Actions: []SkeletonAction{
		{ActionType: " Navigate ", URL: "https://shop.example.com/", PageTitle: "Home"},
		{ActionType: "INPUT", ElementID: "q", ValueHint: hint},
		{ActionType: "drag-drop", PageTitle: "Board"},
	}}
	err := Normalize(sk, SkeletonRequest{Length: 3, Domain: "fallback.com", Goal: "g"})
	require.NoError(t, err)

	assert.Equal(t, "fallback.com", sk.Domain)
	assert.Equal(t, "g", sk.Goal)
	assert.Equal(t, "navigate", sk.Actions[0].ActionType)
	assert.Equal(t, "type", sk.Actions[1].ActionType)
	require.NotNil(t, sk.Actions[1].Value)
	assert.Equal(t, hint, *sk.Actions[1].Value)
	assert.Equal(t, "https://shop.example.com/", sk.Actions[1].URL)
	assert.Equal(t, "Home", sk.Actions[1].PageTitle)
	assert.Equal(t, "drag_drop", sk.Actions[2].ActionType)
	assert.Equal(t, "Board", sk.Actions[2].PageTitle)
}

func TestNormalizeFirstURLFromDomain(t *testing.T) {
	sk := &Skeleton{Domain: "docs.example.org", Actions: []SkeletonAction{{ActionType: "scroll"}}}
	require.NoError(t, Normalize(sk, SkeletonRequest{Length: 1}))
	assert.Equal(t, "https://docs.example.org/", sk.Actions[0].URL)
}

func TestNormalizeViolations(t *testing.T) {
	sk := &Skeleton{Actions: []SkeletonAction{
		{ActionType: "teleport"},
		{ActionType: "wait", Wait: "soon"},
	}}
	err := Normalize(sk, SkeletonRequest{Length: 5})

	var sv *models.SchemaViolation
	require.True(t, errors.As(err, &sv))
	assert.Len(t, sv.Problems, 3)
	assert.Contains(t, sv.Problems[0], "teleport")
	assert.Contains(t, sv.Problems[2], "expected 5 actions, got 2")
}
