package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soundprediction/recommender/pkg/nlp"
	"github.com/soundprediction/recommender/pkg/types"
)

// BodySeparator joins retrieved document bodies in the summary prompt.
const BodySeparator = "\n\n"

// MaxSummaryBodies caps the documents quoted in the summary prompt.
const MaxSummaryBodies = 5

// RecommendPrompt defines the interface for recommendation prompts.
type RecommendPrompt interface {
	Summary() PromptVersion
	Describe() PromptVersion
}

// RecommendVersions holds all versions of recommendation prompts.
type RecommendVersions struct {
	summaryPrompt  PromptVersion
	describePrompt PromptVersion
}

func (r *RecommendVersions) Summary() PromptVersion  { return r.summaryPrompt }
func (r *RecommendVersions) Describe() PromptVersion { return r.describePrompt }

// JoinBodies concatenates up to MaxSummaryBodies bodies with a blank line.
func JoinBodies(bodies []string) string {
	if len(bodies) > MaxSummaryBodies {
		bodies = bodies[:MaxSummaryBodies]
	}
	return strings.Join(bodies, BodySeparator)
}

// summaryPrompt writes one friendly sentence introducing the results.
// Context: query (string), bodies ([]string).
func summaryPrompt(context map[string]interface{}) ([]types.Message, error) {
	sysPrompt := `You are a friendly guide at a natural history museum. You introduce specimens from the collection to visitors.`

	query := contextString(context, "query")
	if query == "" {
		return nil, errors.New("summary prompt requires a query")
	}
	bodies, _ := context["bodies"].([]string)

	userPrompt := fmt.Sprintf(`
A visitor asked: %q

These specimens from the collection were found for them:

<SPECIMENS>
%s
</SPECIMENS>

Write one brief, friendly sentence introducing these specimens to the visitor.
Do not list the specimens one by one.
`, query, JoinBodies(bodies))

	logPrompts(context, sysPrompt, userPrompt)
	return []types.Message{
		nlp.NewSystemMessage(sysPrompt),
		nlp.NewUserMessage(userPrompt),
	}, nil
}

// describePrompt asks for a description and a justification of one result.
// Context: query, title, body (strings).
func describePrompt(context map[string]interface{}) ([]types.Message, error) {
	sysPrompt := `You are a museum curator. You describe specimens accurately and explain why they are relevant to a visitor's interest. Always respond with a JSON object.`

	query := contextString(context, "query")
	if query == "" {
		return nil, errors.New("describe prompt requires a query")
	}

	specimenYAML, err := ToPromptYAML(map[string]string{
		"title":   contextString(context, "title"),
		"content": contextString(context, "body"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal specimen to YAML: %w", err)
	}

	userPrompt := fmt.Sprintf(`
A visitor asked: %q

<SPECIMEN>
%s</SPECIMEN>

Respond with a JSON object with exactly these keys:
- "description": one or two sentences describing the specimen for a visitor.
- "justification": one sentence explaining why the specimen matches what the visitor asked for.
`, query, specimenYAML)

	logPrompts(context, sysPrompt, userPrompt)
	return []types.Message{
		nlp.NewSystemMessage(sysPrompt),
		nlp.NewUserMessage(userPrompt),
	}, nil
}

// NewRecommendVersions creates a new RecommendVersions instance.
func NewRecommendVersions() *RecommendVersions {
	return &RecommendVersions{
		summaryPrompt:  NewPromptVersion(summaryPrompt),
		describePrompt: NewPromptVersion(describePrompt),
	}
}
