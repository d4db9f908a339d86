// Package driver provides graph database drivers for specimen recommendations.
//
// The package defines the GraphDriver interface and implements it for
// bolt-speaking graph databases (Neo4j and Memgraph) and for an in-process
// graph used by tests and local development.
//
// # Recommendation Algorithm
//
// A specimen is related to another specimen when both point at the same
// attribute node through one of the relationship types in
// RecommendationRelationshipTypes. Candidates are scored by the number of
// distinct attribute nodes they share with the queried specimen, ordered by
// score descending and then by name ascending, and truncated to the requested
// limit. The queried specimen is never part of its own result.
//
// # Usage
//
//	d, err := driver.NewNeo4jDriver(uri, username, password, "neo4j")
//	if err != nil {
//	    return err
//	}
//	defer d.Close(ctx)
//
//	recs, err := d.Recommend(ctx, "Tyrannosaurus", driver.DefaultRecommendationLimit)
//
// # Thread Safety
//
// All driver implementations are safe for concurrent use from multiple goroutines.
// Bolt connections are pooled by the underlying neo4j driver.
package driver
