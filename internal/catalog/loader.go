package catalog

import (
	"context"
	_ "embed"
	"io"
	"net/http"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

//go:embed default.toml
var defaultCatalog string

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and checks a TOML catalog document.
func Parse(doc string) (*Catalog, error) {
	var c Catalog
	md, err := toml.Decode(doc, &c)
	if err != nil {
		return nil, eris.Wrap(err, "parsing catalog TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, eris.Errorf("catalog: unknown key %q", undecoded[0].String())
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFromPath loads a catalog from a local filesystem path.
func LoadFromPath(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "reading catalog file")
	}
	return Parse(string(data))
}

// LoadFromURL loads a catalog from a remote URL.
func LoadFromURL(ctx context.Context, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "creating request")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetching catalog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fetching catalog: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "reading response body")
	}
	return Parse(string(data))
}

// Load resolves a catalog reference: a URL, a path, or the built-in default.
func Load(ctx context.Context, ref models.CatalogRef) (*Catalog, error) {
	switch {
	case ref.Path != "" && ref.URL != "":
		return nil, eris.New("catalog: cannot specify both 'path' and 'url'")
	case ref.URL != "":
		return LoadFromURL(ctx, ref.URL)
	case ref.Path != "":
		return LoadFromPath(ref.Path)
	default:
		return Default()
	}
}

func (c *Catalog) check() error {
	if len(c.Workflows) == 0 {
		return eris.New("catalog: no workflows defined")
	}
	for name, wf := range c.Workflows {
		if !models.WorkflowType(name).Valid() {
			return eris.Errorf("catalog: unknown workflow %q", name)
		}
		if wf.Weight < 0 {
			return eris.Errorf("catalog: workflow %q has negative weight", name)
		}
		if len(wf.Goals) == 0 {
			return eris.Errorf("catalog: workflow %q has no goals", name)
		}
		for i, s := range wf.Filler {
			if err := s.check(); err != nil {
				return eris.Wrapf(err, "catalog: %s filler[%d]", name, i)
			}
		}
		for goal, g := range wf.Goals {
			if len(g.Steps) == 0 {
				return eris.Errorf("catalog: goal %s/%s has no steps", name, goal)
			}
			for i, s := range g.Steps {
				if err := s.check(); err != nil {
					return eris.Wrapf(err, "catalog: %s/%s step[%d]", name, goal, i)
				}
			}
		}
	}
	return nil
}

func (s Step) check() error {
	if !models.ActionType(s.ActionType).Valid() {
		return eris.Errorf("invalid action_type %q", s.ActionType)
	}
	return nil
}
