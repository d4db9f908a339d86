// Package types defines the core data types shared across the recommender.
//
// This package contains the transient values that flow through a request:
//   - Message/Response: chat messages exchanged with a generation backend
//   - Document: one nearest-neighbour hit returned by a vector collection
//   - SemanticResult: a retrieved specimen plus its generated description
//
// None of these values are persisted; they are created per request and
// discarded once the response is written.
//
// # Context Keys
//
// Request-scoped values (request ID, request source) are carried on the
// context using the ContextKey* constants so that telemetry can attribute
// token usage to the request that caused it.
package types
