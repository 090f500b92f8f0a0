package embedding

import (
	"context"
	"fmt"
)

// Provider generates vector embeddings from text.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Config holds embedding provider configuration.
type Config struct {
	Provider  string `json:"provider"` // "openai", "google" or "local"
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	Dimension int    `json:"dimension"`
}

// New returns the provider named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding: model is required")
	}
	switch cfg.Provider {
	case "openai", "api", "":
		return NewOpenAIProvider(cfg), nil
	case "google", "gemini":
		return NewGoogleProvider(ctx, cfg)
	case "local", "ollama":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("embedding: local provider needs an endpoint")
		}
		return NewLocalProvider(cfg), nil
	default:
		return nil, fmt.Errorf("embedding: unknown provider %q", cfg.Provider)
	}
}

// checkBatch verifies one vector per input, each of the configured dimension
// when one is set.
func checkBatch(vectors [][]float32, inputs, dimension int) error {
	if len(vectors) != inputs {
		return fmt.Errorf("embedding: got %d vectors for %d inputs", len(vectors), inputs)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("embedding: empty vector at %d", i)
		}
		if dimension > 0 && len(v) != dimension {
			return fmt.Errorf("embedding: vector %d has dimension %d, want %d", i, len(v), dimension)
		}
	}
	return nil
}
