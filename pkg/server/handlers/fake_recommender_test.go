package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/recommender"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRecommender records calls and returns canned answers.
type fakeRecommender struct {
	names      []string
	semantic   *recommender.SemanticResponse
	err        error
	pingErr    error
	graphCalls []string
	queryCalls []string
	pingCalls  int
}

func (f *fakeRecommender) GraphQuery(_ context.Context, specimenName string) ([]string, error) {
	f.graphCalls = append(f.graphCalls, specimenName)
	return f.names, f.err
}

func (f *fakeRecommender) SemanticQuery(_ context.Context, query string) (*recommender.SemanticResponse, error) {
	f.queryCalls = append(f.queryCalls, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.semantic, nil
}

func (f *fakeRecommender) Ping(context.Context) error {
	f.pingCalls++
	return f.pingErr
}

func (f *fakeRecommender) Close(context.Context) error { return nil }

// serve runs a single request through a router that mounts handler at path.
func serve(t *testing.T, path string, handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET(path, handler)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
