package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/soundprediction/recommender/pkg/types"
)

// DefaultModel is used against the OpenAI API when Config.Model is empty.
const DefaultModel = openai.GPT4oMini

// DefaultCompatibleModel is used against OpenAI-compatible services when
// Config.Model is empty.
const DefaultCompatibleModel = "gpt-3.5-turbo"

// OpenAIClient implements the Client interface for OpenAI's language models
// and OpenAI-compatible services.
type OpenAIClient struct {
	client *openai.Client
	config Config
}

// NewOpenAIClient creates a new OpenAI client.
// Supports OpenAI-compatible services through custom BaseURL configuration.
func NewOpenAIClient(apiKey string, config Config) (*OpenAIClient, error) {
	if config.BaseURL != "" {
		if err := validateBaseURL(config.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
	}

	if config.Model == "" {
		if config.BaseURL != "" {
			config.Model = DefaultCompatibleModel
		} else {
			config.Model = DefaultModel
		}
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(NewOpenAIClientConfig(apiKey, config.BaseURL)),
		config: config,
	}, nil
}

// NewOpenAIClientConfig builds a go-openai client configuration, pointing it
// at baseURL when one is given. Shared with the embedder so both talk to the
// same kind of endpoint the same way.
func NewOpenAIClientConfig(apiKey, baseURL string) openai.ClientConfig {
	if baseURL == "" {
		return openai.DefaultConfig(apiKey)
	}

	// Use dummy API key if none provided (some services don't require authentication)
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimRight(baseURL, "/")

	// Many services expect "/v1" to be appended to the base URL
	if !hasAPIPath(baseURL) {
		clientConfig.BaseURL += "/v1"
	}
	return clientConfig
}

// Model returns the model requests are sent to.
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Chat sends a chat completion request to OpenAI or OpenAI-compatible service.
func (c *OpenAIClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	req, err := c.buildChatRequest(messages, false, nil)
	if err != nil {
		return nil, err
	}
	return c.complete(ctx, req, "chat completion")
}

// ChatWithStructuredOutput sends a chat completion request with structured output.
func (c *OpenAIClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	req, err := c.buildChatRequest(messages, true, schema)
	if err != nil {
		return nil, err
	}
	return c.complete(ctx, req, "structured output")
}

// Close cleans up resources (no-op for OpenAI client).
func (c *OpenAIClient) Close() error {
	return nil
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest, op string) (*types.Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai %s failed: %w", op, classifyAPIError(err))
	}

	if len(resp.Choices) == 0 {
		return nil, NewEmptyResponseError("no choices returned from openai")
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, NewRefusalError(choice.Message.Refusal)
	}
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return nil, NewRefusalError("response blocked by content filter")
	}

	response := &types.Response{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Model:        resp.Model,
	}
	if response.Model == "" {
		response.Model = c.config.Model
	}

	// Include token usage if available (some OpenAI-compatible services might not provide this)
	if resp.Usage.TotalTokens > 0 {
		response.TokensUsed = &types.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return response, nil
}

func (c *OpenAIClient) buildChatRequest(messages []types.Message, structuredOutput bool, schema any) (openai.ChatCompletionRequest, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openaiMessages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:    c.config.Model,
		Messages: openaiMessages,
	}

	if c.config.Temperature != nil {
		req.Temperature = *c.config.Temperature
	}
	if c.config.MaxTokens != nil {
		req.MaxTokens = *c.config.MaxTokens
	}
	if c.config.TopP != nil {
		req.TopP = *c.config.TopP
	}
	if len(c.config.Stop) > 0 {
		req.Stop = c.config.Stop
	}

	if !structuredOutput {
		return req, nil
	}

	// Strict JSON schemas are only sent to the OpenAI API; compatible
	// services get plain JSON mode plus an instruction.
	if schema != nil && c.config.BaseURL == "" {
		raw, err := json.Marshal(schema)
		if err != nil {
			return req, fmt.Errorf("failed to marshal response schema: %w", err)
		}
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "structured_output",
				Schema: json.RawMessage(raw),
				Strict: true,
			},
		}
		return req, nil
	}

	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	if c.config.BaseURL != "" && len(req.Messages) > 0 {
		lastMessage := &req.Messages[len(req.Messages)-1]
		if lastMessage.Role == string(RoleUser) {
			lastMessage.Content += "\n\nPlease respond with valid JSON only."
		}
	}
	return req, nil
}

// validateBaseURL validates the base URL format.
func validateBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("baseURL cannot be empty")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid baseURL format: %w", err)
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("baseURL must include scheme (http:// or https://)")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("baseURL must use http:// or https:// scheme")
	}

	return nil
}

// hasAPIPath checks if the base URL already includes an API path component.
func hasAPIPath(baseURL string) bool {
	commonPaths := []string{"/v1", "/api", "/v1/", "/api/"}
	for _, path := range commonPaths {
		if strings.HasSuffix(baseURL, path) {
			return true
		}
	}
	return false
}
