package generator

import (
	"os"

	"github.com/rotisserie/eris"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/catalog"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

const DefaultAPIKeyEnv = "ANTHROPIC_API_KEY"

// New creates the generator backend named by cfg.Type, wrapped in a rate
// limiter when cfg.RequestsPerSecond is positive.
func New(cfg models.GeneratorConfig, c *catalog.Catalog) (StructuredGenerator, error) {
	var g StructuredGenerator
	switch cfg.Type {
	case "template", "":
		g = NewTemplateGenerator(c)
	case "anthropic":
		env := cfg.APIKeyEnv
		if env == "" {
			env = DefaultAPIKeyEnv
		}
		key := os.Getenv(env)
		if key == "" {
			return nil, eris.Errorf("anthropic generator: %s is not set", env)
		}
		g = NewAnthropicGenerator(AnthropicOptions{
			APIKey:      key,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, eris.Errorf("unsupported generator type: %s", cfg.Type)
	}

	if cfg.RequestsPerSecond > 0 {
		g = NewRateLimited(g, cfg.RequestsPerSecond, cfg.Burst)
	}
	return g, nil
}
