// Package prompts holds the templated prompts sent to the generation model.
//
// Prompts are PromptVersion values rendered from a context map, the same
// shape for every template:
//
//	messages, err := prompts.NewRecommendVersions().Summary().Call(map[string]interface{}{
//	    "query":  "ancient shark tooth",
//	    "bodies": bodies,
//	})
package prompts
