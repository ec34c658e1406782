package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-3-small"

// OpenAIProvider implements Provider against the OpenAI embeddings API.
type OpenAIProvider struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIProvider creates a provider for the given API key and model name.
// An empty model falls back to DefaultModel.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}
}

// CreateEmbeddings submits texts and returns one index-tagged embedding per
// input. The API reports each result's input index, which callers use to
// restore submission order.
func (p *OpenAIProvider) CreateEmbeddings(ctx context.Context, texts []string) ([]Embedding, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request: %w", err)
	}

	out := make([]Embedding, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = Embedding{Index: d.Index, Vector: d.Embedding}
	}
	return out, nil
}
