package driver

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jDriver implements GraphDriver for bolt databases (Neo4j and Memgraph).
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
	provider GraphProvider
	closed   atomic.Bool
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	if database == "" {
		database = "neo4j"
	}
	return newBoltDriver(uri, username, password, database, GraphProviderNeo4j)
}

// NewMemgraphDriver creates a driver for Memgraph, which speaks the same bolt
// protocol and Cypher dialect for the recommendation query.
func NewMemgraphDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	if database == "" {
		database = "memgraph"
	}
	return newBoltDriver(uri, username, password, database, GraphProviderMemgraph)
}

func newBoltDriver(uri, username, password, database string, provider GraphProvider) (*Neo4jDriver, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%s uri is required", provider)
	}

	auth := neo4j.NoAuth()
	if username != "" || password != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}

	client, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", provider, err)
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
		provider: provider,
	}, nil
}

// Client exposes the underlying bolt driver so other components (the Neo4j
// vector store) can share its connection pool.
func (n *Neo4jDriver) Client() neo4j.DriverWithContext {
	return n.client
}

// Database returns the database name sessions are opened against.
func (n *Neo4jDriver) Database() string {
	return n.database
}

// Recommend runs RecommendationQuery in a read transaction.
func (n *Neo4jDriver) Recommend(ctx context.Context, specimenName string, limit int) ([]Recommendation, error) {
	if n.closed.Load() {
		return nil, ErrDriverClosed
	}

	session := n.client.NewSession(ctx, n.sessionConfig())
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, RecommendationQuery(), recommendationParams(specimenName, limit))
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation query failed: %w", err)
	}

	records, ok := AsRecordSlice(result)
	if !ok {
		return nil, NewTypeConversionError("[]*db.Record", fmt.Sprintf("%T", result), "result")
	}

	recs := make([]Recommendation, 0, len(records))
	for _, record := range records {
		nameValue, _ := record.Get("recommended_name")
		name, err := MustString(nameValue, "recommended_name")
		if err != nil {
			return nil, err
		}
		scoreValue, _ := record.Get("score")
		score, err := MustInt64(scoreValue, "score")
		if err != nil {
			return nil, err
		}
		recs = append(recs, Recommendation{Name: name, Score: score})
	}

	return recs, nil
}

// VerifyConnectivity checks if the driver can connect to the database.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	if n.closed.Load() {
		return ErrDriverClosed
	}
	return n.client.VerifyConnectivity(ctx)
}

// Provider returns the graph provider type.
func (n *Neo4jDriver) Provider() GraphProvider {
	return n.provider
}

// Close closes the driver. Calling Close more than once is a no-op.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	return n.client.Close(ctx)
}

func (n *Neo4jDriver) sessionConfig() neo4j.SessionConfig {
	cfg := neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead}
	// Memgraph ignores database names other than its default.
	if n.provider == GraphProviderNeo4j {
		cfg.DatabaseName = n.database
	}
	return cfg
}
