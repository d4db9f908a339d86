package nlp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
)

var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags strips <think>...</think> reasoning blocks some local
// models prepend to their answer.
func RemoveThinkTags(input string) string {
	return strings.TrimSpace(thinkTagPattern.ReplaceAllString(input, ""))
}

// ExtractJSONFromResponse attempts to extract JSON from LLM responses that may contain
// markdown code blocks or other surrounding text.
func ExtractJSONFromResponse(response string) string {
	response = strings.TrimSpace(RemoveThinkTags(response))

	// Check for ```json ... ``` pattern
	if start := strings.Index(response, "```json"); start != -1 {
		end := strings.Index(response[start+7:], "```")
		if end != -1 {
			return strings.TrimSpace(response[start+7 : start+7+end])
		}
	}

	// Check for ``` ... ``` pattern
	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		if len(lines) > 2 {
			return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	// Try to find JSON object boundaries
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")
	if jsonStart != -1 && jsonEnd != -1 && jsonEnd > jsonStart {
		return response[jsonStart : jsonEnd+1]
	}

	// Try to find JSON array boundaries
	jsonStart = strings.Index(response, "[")
	jsonEnd = strings.LastIndex(response, "]")
	if jsonStart != -1 && jsonEnd != -1 && jsonEnd > jsonStart {
		return response[jsonStart : jsonEnd+1]
	}

	return response
}

// DecodeJSONObject decodes a structured LLM response into out.
//
// The response must contain a JSON object. Surrounding prose and code fences
// are stripped; the object itself is decoded strictly and any syntax error is
// reported as ErrInvalidJSON.
func DecodeJSONObject(response string, out any) error {
	extracted := ExtractJSONFromResponse(response)
	if !strings.HasPrefix(extracted, "{") {
		return fmt.Errorf("%w: no JSON object in response", ErrInvalidJSON)
	}
	if err := json.Unmarshal([]byte(extracted), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// Repairable reports whether a rejected response is close enough to JSON
// that a repair pass would recover it. It never changes what DecodeJSONObject
// accepts and is only used to classify failures in logs.
func Repairable(response string) bool {
	extracted := ExtractJSONFromResponse(response)
	if !strings.HasPrefix(extracted, "{") {
		return false
	}
	repaired, err := jsonrepair.JSONRepair(extracted)
	if err != nil {
		return false
	}
	return json.Valid([]byte(repaired))
}
