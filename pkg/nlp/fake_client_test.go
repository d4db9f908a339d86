package nlp

import (
	"context"
	"errors"
	"sync"

	"github.com/soundprediction/recommender/pkg/types"
)

// fakeClient is a scripted Client used by the decorator tests.
type fakeClient struct {
	mu     sync.Mutex
	resp   *types.Response
	err    error
	calls  int
	closed bool
}

func (f *fakeClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	return f.Chat(ctx, messages)
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

var errUpstream = errors.New("upstream unavailable")
