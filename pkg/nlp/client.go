package nlp

import (
	"context"

	"github.com/soundprediction/recommender/pkg/types"
)

// Client generates the summary and per-specimen descriptions of a semantic
// query. Implementations must be safe for concurrent use; descriptions are
// requested in parallel.
type Client interface {
	// Chat returns free text, used for the opening summary.
	Chat(ctx context.Context, messages []types.Message) (*types.Response, error)

	// ChatWithStructuredOutput asks for a JSON object. schema, when non-nil,
	// is forwarded to providers that can constrain their output with it.
	// Callers still validate the content with DecodeJSONObject.
	ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error)

	Close() error
}

// Message roles understood by chat completion endpoints.
const (
	RoleSystem    types.Role = "system"
	RoleUser      types.Role = "user"
	RoleAssistant types.Role = "assistant"
)

// Config selects the model and sampling settings. Nil pointers leave the
// provider default in place.
type Config struct {
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	// BaseURL points the client at an OpenAI-compatible server.
	BaseURL string `json:"base_url,omitempty"`
}

func newMessage(role types.Role, content string) types.Message {
	return types.Message{Role: role, Content: content}
}

// NewSystemMessage carries the instructions a prompt template fixes.
func NewSystemMessage(content string) types.Message {
	return newMessage(RoleSystem, content)
}

// NewUserMessage carries the query and specimen text.
func NewUserMessage(content string) types.Message {
	return newMessage(RoleUser, content)
}
