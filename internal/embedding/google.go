package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GoogleProvider implements Provider with the Gemini embedding API.
type GoogleProvider struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGoogleProvider creates a Gemini client. The endpoint, when set,
// overrides the API base URL.
func NewGoogleProvider(ctx context.Context, cfg Config) (*GoogleProvider, error) {
	gc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		gc.HTTPOptions.BaseURL = cfg.Endpoint
	}
	c, err := genai.NewClient(ctx, gc)
	if err != nil {
		return nil, fmt.Errorf("embedding: google client: %w", err)
	}
	return &GoogleProvider{client: c, model: cfg.Model, dimension: cfg.Dimension}, nil
}

// Embed sends all texts in one batch request.
func (p *GoogleProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		}
	}

	var ecfg *genai.EmbedContentConfig
	if p.dimension > 0 {
		d := int32(p.dimension)
		ecfg = &genai.EmbedContentConfig{OutputDimensionality: &d}
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, ecfg)
	if err != nil {
		return nil, fmt.Errorf("embedding: google request: %w", err)
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		embeddings[i] = e.Values
	}
	if err := checkBatch(embeddings, len(texts), p.dimension); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// Dimension returns the configured output dimension.
func (p *GoogleProvider) Dimension() int {
	return p.dimension
}
