package types

import "fmt"

// Role identifies the author of a chat message.
type Role string

// Message is a single chat message sent to a generation backend.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports the tokens consumed by one generation call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the result of a generation call.
type Response struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Model        string      `json:"model,omitempty"`
	TokensUsed   *TokenUsage `json:"tokens_used,omitempty"`
}

// Metadata keys every vector collection document is expected to carry.
const (
	MetadataSpecimenName = "specimen_name"
	MetadataTitle        = "title"
)

// Document is one nearest-neighbour hit from a vector collection.
type Document struct {
	ID       string         `json:"id" yaml:"id"`
	Content  string         `json:"content" yaml:"content"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	// Distance from the query vector; smaller is nearer. Zero when the
	// backend does not report one.
	Distance float64 `json:"distance,omitempty" yaml:"-"`
}

// SpecimenName returns the specimen identifier stored in the metadata.
func (d Document) SpecimenName() string {
	return d.metadataString(MetadataSpecimenName)
}

// Title returns the display title stored in the metadata.
func (d Document) Title() string {
	return d.metadataString(MetadataTitle)
}

func (d Document) metadataString(key string) string {
	v, ok := d.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// SemanticResult is a retrieved specimen enriched with generated text.
type SemanticResult struct {
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
	Content       string `json:"-"`
	Description   string `json:"description"`
	Justification string `json:"justification"`
}

// ContextKey is the type used for request-scoped context values.
type ContextKey string

const (
	// ContextKeyRequestID carries the X-Request-ID of the current request.
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyRequestSource records which entry point issued the call (server, cli).
	ContextKeyRequestSource ContextKey = "request_source"
)
