package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/soundprediction/recommender"
	"github.com/soundprediction/recommender/pkg/driver"
	"github.com/soundprediction/recommender/pkg/types"
	"github.com/soundprediction/recommender/pkg/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEmbedder struct{}

func (staticEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (staticEmbedder) EmbedSingle(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (staticEmbedder) Dimensions() int { return 2 }
func (staticEmbedder) Close() error    { return nil }

// cannedLLM answers every summary call with prose and every describe call
// with the same structured reply.
type cannedLLM struct {
	describe string
}

func (c *cannedLLM) Chat(context.Context, []types.Message) (*types.Response, error) {
	return &types.Response{Content: "Sharks through the ages."}, nil
}

func (c *cannedLLM) ChatWithStructuredOutput(context.Context, []types.Message, any) (*types.Response, error) {
	return &types.Response{Content: c.describe}, nil
}

func (c *cannedLLM) Close() error { return nil }

func newSemanticClient(t *testing.T, describe string) *recommender.Client {
	t.Helper()

	store, err := vectorstore.OpenBadgerStore("", nil)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(context.Background(), "specimens", []vectorstore.Record{{
		Document: types.Document{
			ID:      "doc-1",
			Content: "A serrated tooth from a Miocene shark.",
			Metadata: map[string]any{
				types.MetadataSpecimenName: "FOS-003",
				types.MetadataTitle:        "Megalodon tooth",
			},
		},
		Embedding: []float32{1, 0},
	}}))

	client, err := recommender.NewClient(driver.NewMemoryDriver(), staticEmbedder{}, store,
		&cannedLLM{describe: describe}, &recommender.Config{Collection: "specimens"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client
}

func TestSemanticRecommendRejectsInvalidStructuredOutput(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "truncated", reply: `{"description": "A shark tooth", "justification": "matches shark"`},
		{name: "unquoted keys", reply: `{description: "A shark tooth", justification: "matches shark"}`},
		{name: "trailing comma", reply: `{"description": "A shark tooth", "justification": "matches shark",}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRecommendHandler(newSemanticClient(t, tt.reply), nil)

			w := serve(t, "/semantic_recommend", handler.SemanticRecommend, "/semantic_recommend?query=sharks")

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error": "failed to compute recommendations"}`, w.Body.String())
		})
	}
}

func TestSemanticRecommendWithValidStructuredOutput(t *testing.T) {
	client := newSemanticClient(t, `{"description": "A shark tooth.", "justification": "Matches sharks."}`)
	handler := NewRecommendHandler(client, nil)

	w := serve(t, "/semantic_recommend", handler.SemanticRecommend, "/semantic_recommend?query=sharks")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FOS-003")
	assert.Contains(t, w.Body.String(), "A shark tooth.")
}
