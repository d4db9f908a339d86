package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/recommender/pkg/driver"
	"github.com/soundprediction/recommender/pkg/types"
)

const vectorIndexQuery = `SHOW INDEXES YIELD name, type
WHERE type = 'VECTOR' AND name = $name
RETURN name`

// Nodes indexed for specimen search carry content, specimen_name and title.
const vectorSearchQuery = `CALL db.index.vector.queryNodes($index, $k, $embedding)
YIELD node, score
RETURN elementId(node) AS id,
       node.content AS content,
       node.specimen_name AS specimen_name,
       node.title AS title,
       score
ORDER BY score DESC`

// Neo4jStore queries Neo4j native vector indexes. A collection is an index.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore searches through an existing bolt driver. The store does not
// own the driver; closing the store leaves it open.
func NewNeo4jStore(client neo4j.DriverWithContext, database string) (*Neo4jStore, error) {
	if client == nil {
		return nil, fmt.Errorf("neo4j client is required")
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jStore{client: client, database: database}, nil
}

// Provider implements Store.
func (s *Neo4jStore) Provider() Provider {
	return ProviderNeo4j
}

// Close implements Store.
func (s *Neo4jStore) Close() error {
	return nil
}

// Collection implements Store.
func (s *Neo4jStore) Collection(ctx context.Context, name string) (Collection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	result, err := neo4j.ExecuteQuery(ctx, s.client, vectorIndexQuery,
		map[string]any{"name": name},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to look up vector index %q: %w", name, err)
	}
	if len(result.Records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	return &neo4jCollection{store: s, name: name}, nil
}

type neo4jCollection struct {
	store *Neo4jStore
	name  string
}

func (c *neo4jCollection) Name() string {
	return c.name
}

func (c *neo4jCollection) Query(ctx context.Context, embedding []float32, n int) ([]types.Document, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding is empty")
	}

	vector := make([]float64, len(embedding))
	for i, v := range embedding {
		vector[i] = float64(v)
	}

	result, err := neo4j.ExecuteQuery(ctx, c.store.client, vectorSearchQuery,
		map[string]any{
			"index":     c.name,
			"k":         int64(normalizeResults(n)),
			"embedding": vector,
		},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.store.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, fmt.Errorf("vector index query on %q failed: %w", c.name, err)
	}

	docs := make([]types.Document, 0, len(result.Records))
	for _, record := range result.Records {
		id, _ := record.Get("id")
		content, _ := record.Get("content")
		specimenName, _ := record.Get("specimen_name")
		title, _ := record.Get("title")
		score, _ := record.Get("score")

		doc := types.Document{
			Metadata: map[string]any{
				types.MetadataSpecimenName: specimenName,
				types.MetadataTitle:        title,
			},
		}
		doc.ID, _ = driver.AsString(id)
		doc.Content, _ = driver.AsString(content)
		// Cosine similarity scores are in [0, 1], higher is nearer.
		if s, ok := driver.AsFloat64(score); ok {
			doc.Distance = 1 - s
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
