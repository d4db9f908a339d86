package vectorstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/soundprediction/recommender/pkg/driver"
	"github.com/soundprediction/recommender/pkg/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIndex = "it_specimen_vectors"

// skipIfNeo4jUnavailable skips the test if Neo4j is not available
func skipIfNeo4jUnavailable(t *testing.T) *driver.Neo4jDriver {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Neo4j integration test in short mode")
	}

	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}
	user := os.Getenv("NEO4J_USERNAME")
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("NEO4J_PASSWORD")
	if password == "" {
		password = "password"
	}

	d, err := driver.NewNeo4jDriver(uri, user, password, "neo4j")
	if err != nil {
		t.Skipf("Neo4j not available at %s: %v", uri, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.VerifyConnectivity(ctx); err != nil {
		d.Close(ctx)
		t.Skipf("Neo4j connection failed: %v", err)
		return nil
	}

	return d
}

func TestNewNeo4jStoreRequiresClient(t *testing.T) {
	_, err := vectorstore.NewNeo4jStore(nil, "")
	assert.Error(t, err)
}

func TestNeo4jStoreIntegration(t *testing.T) {
	d := skipIfNeo4jUnavailable(t)
	ctx := context.Background()
	defer d.Close(ctx)

	run := func(query string, params map[string]any) error {
		_, err := neo4j.ExecuteQuery(ctx, d.Client(), query, params,
			neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(d.Database()))
		return err
	}

	if err := run(`CREATE VECTOR INDEX `+testIndex+` IF NOT EXISTS
FOR (n:ItSpecimenDoc) ON (n.embedding)
OPTIONS {indexConfig: {`+"`vector.dimensions`"+`: 3, `+"`vector.similarity_function`"+`: 'cosine'}}`, nil); err != nil {
		t.Skipf("vector indexes not supported: %v", err)
	}
	t.Cleanup(func() {
		_ = run(`MATCH (n:ItSpecimenDoc) DETACH DELETE n`, nil)
		_ = run(`DROP INDEX `+testIndex+` IF EXISTS`, nil)
	})

	require.NoError(t, run(`UNWIND $docs AS doc
CREATE (n:ItSpecimenDoc {content: doc.content, specimen_name: doc.name, title: doc.title, embedding: doc.embedding})`,
		map[string]any{"docs": []any{
			map[string]any{"content": "Megalodon tooth.", "name": "FOS-001", "title": "Megalodon", "embedding": []float64{1, 0, 0}},
			map[string]any{"content": "Spiral shell.", "name": "FOS-002", "title": "Ammonite", "embedding": []float64{0, 1, 0}},
		}}))
	require.NoError(t, run(`CALL db.awaitIndexes(60)`, nil))

	store, err := vectorstore.NewNeo4jStore(d.Client(), d.Database())
	require.NoError(t, err)

	_, err = store.Collection(ctx, "no_such_index")
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)

	col, err := store.Collection(ctx, testIndex)
	require.NoError(t, err)

	docs, err := col.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "FOS-001", docs[0].SpecimenName())
	assert.Equal(t, "Megalodon", docs[0].Title())
	assert.Equal(t, "Megalodon tooth.", docs[0].Content)
}
