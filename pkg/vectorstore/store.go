// Package vectorstore queries named collections of embedded specimen
// documents by nearest-neighbour search.
//
// Three backends implement Store: ChromaDB over its REST API, a Neo4j
// native vector index, and an embedded badger collection that also accepts
// writes for local ingestion.
package vectorstore

import (
	"context"
	"errors"

	"github.com/soundprediction/recommender/pkg/types"
)

// Provider names a vector store backend.
type Provider string

const (
	ProviderChroma Provider = "chroma"
	ProviderNeo4j  Provider = "neo4j"
	ProviderBadger Provider = "badger"
)

// DefaultResults is the number of documents a semantic query retrieves.
const DefaultResults = 5

var (
	// ErrCollectionNotFound is returned when a named collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch is returned when a vector does not match the
	// collection's dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("vector store is closed")
)

// Store resolves collections by name.
type Store interface {
	Collection(ctx context.Context, name string) (Collection, error)
	Provider() Provider
	Close() error
}

// Collection is a searchable set of embedded documents.
type Collection interface {
	Name() string

	// Query returns up to n documents nearest to embedding, nearest first.
	Query(ctx context.Context, embedding []float32, n int) ([]types.Document, error)
}

// Record is a document together with its embedding, as written by Writer.
type Record struct {
	Document  types.Document `json:"document"`
	Embedding []float32      `json:"embedding"`
}

// Writer is implemented by stores that accept documents.
type Writer interface {
	Upsert(ctx context.Context, collection string, records []Record) error
}

func normalizeResults(n int) int {
	if n <= 0 {
		return DefaultResults
	}
	return n
}
