package embedder

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/soundprediction/recommender/pkg/nlp"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = openai.SmallEmbedding3

var modelDimensions = map[string]int{
	string(openai.AdaEmbeddingV2):  1536,
	string(openai.SmallEmbedding3): 1536,
	string(openai.LargeEmbedding3): 3072,
}

// OpenAIEmbedder implements Client against an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	config Config
}

// NewOpenAIEmbedder creates a new OpenAI embedder.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	if config.Model == "" {
		config.Model = string(DefaultModel)
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(nlp.NewOpenAIClientConfig(apiKey, config.BaseURL)),
		config: config,
	}
}

// Embed generates embeddings for the given texts.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, ErrEmptyInput
		}
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.config.Model),
	}
	if e.config.Dimensions > 0 {
		req.Dimensions = e.config.Dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("embedding API call failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("API returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("API returned embedding with out of range index %d", data.Index)
		}
		if e.config.Dimensions > 0 && len(data.Embedding) != e.config.Dimensions {
			return nil, fmt.Errorf("API returned %d dimensions, expected %d", len(data.Embedding), e.config.Dimensions)
		}
		embeddings[data.Index] = data.Embedding
	}

	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (e *OpenAIEmbedder) Dimensions() int {
	if e.config.Dimensions > 0 {
		return e.config.Dimensions
	}
	if dims, ok := modelDimensions[e.config.Model]; ok {
		return dims
	}
	return DefaultDimensions
}

// Model returns the configured model name.
func (e *OpenAIEmbedder) Model() string {
	return e.config.Model
}

// Close cleans up resources (no-op for the HTTP client).
func (e *OpenAIEmbedder) Close() error {
	return nil
}
