package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

const miniCatalog = `
version = "test"

[workflows.research]
weight = 1.0
domains = ["docs.example.org"]

[workflows.research.goals.read_article]
completion_signals = ["read"]

[[workflows.research.goals.read_article.steps]]
action_type = "navigate"
path = "/"
`

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, w := range models.AllWorkflowTypes {
		assert.Len(t, c.Goals(w), 4, "workflow %s", w)
	}
	assert.Equal(t, []string{"add_to_cart", "browse_products", "compare_products", "purchase_product"},
		c.Goals(models.WorkflowECommerce))
	assert.Equal(t, "example-store.com", c.Domain(models.WorkflowECommerce, 0))
	assert.Equal(t, "example-store.com", c.Domain(models.WorkflowECommerce, 3))

	weights := c.Weights()
	assert.InDelta(t, 0.4, weights[models.WorkflowECommerce], 1e-9)
	assert.InDelta(t, 0.3, weights[models.WorkflowResearch], 1e-9)
}

func TestCompletionSignals(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	signals := c.CompletionSignals(models.WorkflowECommerce, "purchase_product")
	assert.Contains(t, signals, "confirm_purchase")
	assert.Contains(t, signals, "purchase_product")

	// Unknown goals still complete on their own name.
	assert.Equal(t, []string{"mystery"}, c.CompletionSignals(models.WorkflowResearch, "mystery"))
}

func TestWeightsDefaultToUniform(t *testing.T) {
	doc := strings.Replace(miniCatalog, "weight = 1.0\n", "", 1)
	c, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, map[models.WorkflowType]float64{models.WorkflowResearch: 1}, c.Weights())
}

func TestDomainUnknownWorkflow(t *testing.T) {
	c := &Catalog{}
	assert.Equal(t, "example.com", c.Domain("nope", 1))
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", `version = "1"`},
		{"unknown workflow", `[workflows.gaming.goals.win]
[[workflows.gaming.goals.win.steps]]
action_type = "click"`},
		{"bad action type", `[workflows.research.goals.g]
[[workflows.research.goals.g.steps]]
action_type = "teleport"`},
		{"unknown key", miniCatalog + "\ncolour = \"red\"\n"},
		{"invalid toml", `[workflows`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(miniCatalog), 0644))

	c, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Version)
	assert.Equal(t, []string{"read_article"}, c.Goals(models.WorkflowResearch))

	_, err = LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog.toml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(miniCatalog))
	}))
	defer server.Close()

	c, err := LoadFromURL(context.Background(), server.URL+"/catalog.toml")
	require.NoError(t, err)
	assert.Equal(t, "docs.example.org", c.Domain(models.WorkflowResearch, 0))

	_, err = LoadFromURL(context.Background(), server.URL+"/missing")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := Load(context.Background(), models.CatalogRef{})
	require.NoError(t, err)
	assert.Len(t, c.Workflows, 3)

	_, err = Load(context.Background(), models.CatalogRef{Path: "a", URL: "b"})
	assert.Error(t, err)
}
