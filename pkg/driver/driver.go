package driver

import (
	"context"
	"errors"
)

// GraphProvider represents the type of graph database provider
type GraphProvider string

const (
	GraphProviderNeo4j    GraphProvider = "neo4j"
	GraphProviderMemgraph GraphProvider = "memgraph"
	GraphProviderMemory   GraphProvider = "memory"
)

// DefaultRecommendationLimit is the number of recommendations returned when
// the caller does not ask for a specific amount.
const DefaultRecommendationLimit = 5

// ErrDriverClosed is returned when a query is issued after Close.
var ErrDriverClosed = errors.New("graph driver is closed")

// Recommendation is a candidate specimen and the number of distinct attribute
// nodes it shares with the queried specimen.
type Recommendation struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// GraphDriver defines the graph operations the recommender depends on.
type GraphDriver interface {
	// Recommend returns up to limit specimens sharing attribute nodes with
	// specimenName, ordered by score descending and name ascending. An
	// unknown specimen yields an empty slice and a nil error.
	Recommend(ctx context.Context, specimenName string, limit int) ([]Recommendation, error)

	// VerifyConnectivity checks that the database is reachable.
	VerifyConnectivity(ctx context.Context) error

	// Provider reports which backend serves the driver.
	Provider() GraphProvider

	// Close releases all connections held by the driver.
	Close(ctx context.Context) error
}

// Names returns the specimen names of recs in order.
func Names(recs []Recommendation) []string {
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Name)
	}
	return names
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecommendationLimit
	}
	return limit
}
