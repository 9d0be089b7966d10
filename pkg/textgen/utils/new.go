// Package textgenutils constructs text generators from configuration.
package textgenutils

import (
	"context"
	"fmt"

	"github.com/talentlens/semmatch/pkg/textgen"
	"github.com/talentlens/semmatch/pkg/textgen/gemini"
	"github.com/talentlens/semmatch/pkg/textgen/openai"
)

// NewGeneratorOpts selects and configures a text generation provider.
type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
}

// NewGenerator returns the configured provider.
func NewGenerator(ctx context.Context, o *NewGeneratorOpts) (textgen.Generator, error) {
	switch o.ProviderType {
	case "gemini":
		return gemini.NewGenerator(ctx, gemini.GeneratorConfig{
			APIKey: o.APIKey,
			Model:  o.Model,
		})
	case "openai":
		return openai.NewGenerator(openai.GeneratorConfig{
			BaseURL: o.TargetURL,
			APIKey:  o.APIKey,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported text generation provider: %s", o.ProviderType)
	}
}
