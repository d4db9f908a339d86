// Package nlp provides text generation clients for LLM interactions.
//
// This package defines the Client interface and an implementation for OpenAI
// and OpenAI-compatible APIs (Ollama, vLLM, LM Studio, etc.).
//
// # Client Wrappers
//
// The package provides wrapper clients that add behaviour without changing
// the Client interface:
//   - TokenTrackingClient: record token usage to Parquet files
//   - CircuitBreakerClient: stop calling a failing backend for a cool-down period
//
// Neither wrapper retries; a failed call is reported to the caller as-is.
//
// # Usage
//
//	client, err := nlp.NewOpenAIClient(apiKey, nlp.Config{Model: "gpt-4o-mini"})
//	if err != nil {
//	    return err
//	}
//
//	resp, err := client.ChatWithStructuredOutput(ctx, []types.Message{
//	    nlp.NewSystemMessage("Reply in JSON."),
//	    nlp.NewUserMessage(prompt),
//	}, schema)
//
// # Structured Output
//
// ExtractJSONFromResponse and DecodeJSONObject turn a structured response into
// a Go value. Code fences and surrounding prose are stripped, but the object
// itself must be valid JSON; Repairable only classifies rejected output.
package nlp
