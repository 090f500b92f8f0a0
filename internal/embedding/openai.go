package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider implements Provider with the OpenAI embeddings API. Any
// OpenAI-compatible endpoint works through Config.Endpoint.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	dimension int

	observed atomic.Int64
}

// NewOpenAIProvider creates a new OpenAIProvider from the given Config.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &OpenAIProvider{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}
}

// Embed returns one vector per text, in input order.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: openai request: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		embeddings[i] = v
	}
	if err := checkBatch(embeddings, len(texts), p.dimension); err != nil {
		return nil, err
	}

	p.observed.CompareAndSwap(0, int64(len(embeddings[0])))
	return embeddings, nil
}

// Dimension returns the dimension seen in the first result, or the
// configured one before any call succeeds.
func (p *OpenAIProvider) Dimension() int {
	if d := p.observed.Load(); d > 0 {
		return int(d)
	}
	return p.dimension
}
