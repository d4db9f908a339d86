package nlp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/recommender/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetTokenTracker(t *testing.T) {
	tokenDir := filepath.Join(t.TempDir(), "tokens")

	tracker, err := NewTokenTracker(tokenDir)
	require.NoError(t, err)
	tracker.batchSize = 1 // Force flush on every write for testing

	ctx := context.Background()
	ctx = context.WithValue(ctx, types.ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

	usage := &types.TokenUsage{
		PromptTokens:     10,
		CompletionTokens: 20,
		TotalTokens:      30,
	}

	require.NoError(t, tracker.AddUsage(ctx, usage, "gpt-4-test", CallKindStructured))

	entries, err := os.ReadDir(tokenDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".parquet"))
	assert.True(t, strings.HasPrefix(entries[0].Name(), "token_usage_"))

	rows, err := parquet.ReadFile[TokenUsageRecord](filepath.Join(tokenDir, entries[0].Name()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "gpt-4-test", rows[0].Model)
	assert.Equal(t, CallKindStructured, rows[0].Kind)
	assert.Equal(t, 30, rows[0].TotalTokens)
	assert.Equal(t, "req-1", rows[0].RequestID)
	assert.Equal(t, "server", rows[0].RequestSource)
	assert.NotEmpty(t, rows[0].ID)
}

func TestParquetTokenTrackerNilUsage(t *testing.T) {
	tracker, err := NewTokenTracker(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, tracker.AddUsage(context.Background(), nil, "m", CallKindChat))

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	assert.Empty(t, tracker.buffer)
}

func TestTokenTrackingClient(t *testing.T) {
	dir := t.TempDir()
	tracker, err := NewTokenTracker(dir)
	require.NoError(t, err)

	inner := &fakeClient{resp: &types.Response{
		Content:    "ok",
		Model:      "test-model",
		TokensUsed: &types.TokenUsage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12},
	}}
	client := NewTokenTrackingClient(inner, tracker, nil)

	_, err = client.Chat(context.Background(), []types.Message{NewUserMessage("hi")})
	require.NoError(t, err)
	_, err = client.ChatWithStructuredOutput(context.Background(), []types.Message{NewUserMessage("hi")}, nil)
	require.NoError(t, err)

	// Below batch size nothing is written until Close flushes.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, client.Close())
	assert.True(t, inner.closed)

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rows, err := parquet.ReadFile[TokenUsageRecord](filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CallKindChat, rows[0].Kind)
	assert.Equal(t, CallKindStructured, rows[1].Kind)
}

func TestTokenTrackingClientPropagatesErrors(t *testing.T) {
	tracker, err := NewTokenTracker(t.TempDir())
	require.NoError(t, err)

	client := NewTokenTrackingClient(&fakeClient{err: errUpstream}, tracker, nil)
	_, err = client.Chat(context.Background(), []types.Message{NewUserMessage("hi")})
	assert.ErrorIs(t, err, errUpstream)
}
