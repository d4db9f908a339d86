package nlp

import (
	"context"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/recommender/pkg/config"
	"github.com/soundprediction/recommender/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}
}

func TestCircuitBreakerClientPassesThrough(t *testing.T) {
	inner := &fakeClient{resp: &types.Response{Content: "ok"}}
	client := NewCircuitBreakerClient(inner, breakerConfig(), nil, "generation")

	resp, err := client.Chat(context.Background(), []types.Message{NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)

	resp, err = client.ChatWithStructuredOutput(context.Background(), []types.Message{NewUserMessage("hi")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestCircuitBreakerClientTrips(t *testing.T) {
	inner := &fakeClient{err: errUpstream}
	client := NewCircuitBreakerClient(inner, breakerConfig(), nil, "generation")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Chat(ctx, []types.Message{NewUserMessage("hi")})
		assert.ErrorIs(t, err, errUpstream)
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	// Open breaker rejects without reaching the wrapped client.
	_, err := client.Chat(ctx, []types.Message{NewUserMessage("hi")})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls)
}

func TestCircuitBreakerClientClose(t *testing.T) {
	inner := &fakeClient{}
	client := NewCircuitBreakerClient(inner, breakerConfig(), nil, "generation")
	require.NoError(t, client.Close())
	assert.True(t, inner.closed)
}
