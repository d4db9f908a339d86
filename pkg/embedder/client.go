package embedder

import (
	"context"
	"errors"
)

// DefaultDimensions is the vector size requested when no model default applies.
const DefaultDimensions = 1024

// ErrEmptyInput is returned when asked to embed blank text.
var ErrEmptyInput = errors.New("cannot embed empty text")

// Client turns text into fixed-length vectors.
type Client interface {
	// Embed generates embeddings for the given texts, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds configuration for embedding clients.
type Config struct {
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	// Dimensions, when positive, is sent with every request and enforced on
	// every response.
	Dimensions int `json:"dimensions,omitempty"`
}
