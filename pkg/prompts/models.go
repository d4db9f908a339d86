package prompts

import (
	"bytes"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/recommender/pkg/nlp"
	"github.com/soundprediction/recommender/pkg/types"
)

// PromptFunction renders a prompt from its template context.
type PromptFunction func(context map[string]interface{}) ([]types.Message, error)

// PromptVersion represents a versioned prompt function.
type PromptVersion interface {
	Call(context map[string]interface{}) ([]types.Message, error)
}

type promptVersionImpl struct {
	fn PromptFunction
}

// Call executes the prompt function with the given context.
func (p *promptVersionImpl) Call(context map[string]interface{}) ([]types.Message, error) {
	messages, err := p.fn(context)
	if err != nil {
		return nil, err
	}

	// Add unicode preservation instruction to system messages
	for i, msg := range messages {
		if msg.Role == nlp.RoleSystem && !strings.Contains(msg.Content, unicodeInstruction) {
			messages[i].Content = msg.Content + "\n\n" + unicodeInstruction
		}
	}

	return messages, nil
}

const unicodeInstruction = "Do not escape unicode characters. Keep specimen and place names exactly as given."

// NewPromptVersion wraps a prompt function.
func NewPromptVersion(fn PromptFunction) PromptVersion {
	return &promptVersionImpl{fn: fn}
}

// ResultDescription is the structured output of the per-result prompt.
type ResultDescription struct {
	Description   string `json:"description"`
	Justification string `json:"justification"`
}

// ResultDescriptionSchema is the JSON schema sent with the per-result call.
var ResultDescriptionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"description": map[string]any{
			"type":        "string",
			"description": "One or two sentences describing the specimen.",
		},
		"justification": map[string]any{
			"type":        "string",
			"description": "Why the specimen matches the visitor's query.",
		},
	},
	"required":             []string{"description", "justification"},
	"additionalProperties": false,
}

// ToPromptYAML serializes data to YAML for use in prompts.
func ToPromptYAML(data interface{}) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func contextString(context map[string]interface{}, key string) string {
	if s, ok := context[key].(string); ok {
		return s
	}
	return ""
}

func logPrompts(context map[string]interface{}, sysPrompt, userPrompt string) {
	if os.Getenv("DEBUG_LLM_PROMPTS") != "true" {
		return
	}
	logger, ok := context["logger"].(*slog.Logger)
	if !ok || logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Generated prompts", "system", sysPrompt, "user", userPrompt)
}
