package vectorstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/soundprediction/recommender/pkg/types"
)

// ChromaConfig configures the ChromaDB client.
type ChromaConfig struct {
	// URI is the server root, e.g. http://localhost:8000.
	URI string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
}

// ChromaStore talks to a ChromaDB server over its v1 REST API.
type ChromaStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewChromaStore creates a ChromaDB client.
func NewChromaStore(config ChromaConfig) (*ChromaStore, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("chroma URI is required")
	}
	parsed, err := url.Parse(config.URI)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid chroma URI: %q", config.URI)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &ChromaStore{
		baseURL: strings.TrimRight(config.URI, "/"),
		token:   config.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Provider implements Store.
func (s *ChromaStore) Provider() Provider {
	return ProviderChroma
}

// Close implements Store.
func (s *ChromaStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

type chromaCollectionResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

type chromaQueryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

type chromaQueryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]*string        `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

type chromaError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// Collection implements Store. The collection is resolved once; its ID is
// used for every subsequent query.
func (s *ChromaStore) Collection(ctx context.Context, name string) (Collection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	var resp chromaCollectionResponse
	status, err := s.do(ctx, http.MethodGet, "/api/v1/collections/"+url.PathEscape(name), nil, &resp)
	if err != nil {
		if status == http.StatusNotFound || isMissingCollection(err) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("failed to get chroma collection %q: %w", name, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	return &chromaCollection{store: s, id: resp.ID, name: name}, nil
}

type chromaCollection struct {
	store *ChromaStore
	id    string
	name  string
}

func (c *chromaCollection) Name() string {
	return c.name
}

func (c *chromaCollection) Query(ctx context.Context, embedding []float32, n int) ([]types.Document, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding is empty")
	}

	req := chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        normalizeResults(n),
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var resp chromaQueryResponse
	if _, err := c.store.do(ctx, http.MethodPost, "/api/v1/collections/"+url.PathEscape(c.id)+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("chroma query on %q failed: %w", c.name, err)
	}

	// One query embedding was sent, so only the first row is read.
	if len(resp.IDs) == 0 {
		return []types.Document{}, nil
	}
	ids := resp.IDs[0]
	docs := make([]types.Document, len(ids))
	for i, id := range ids {
		docs[i] = types.Document{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) && resp.Documents[0][i] != nil {
			docs[i].Content = *resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			docs[i].Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			docs[i].Distance = resp.Distances[0][i]
		}
	}
	return docs, nil
}

func (s *ChromaStore) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError chromaError
		_ = json.Unmarshal(respBody, &apiError)
		msg := firstNonEmpty(apiError.Message, apiError.Detail, apiError.Error, strings.TrimSpace(string(respBody)))
		return resp.StatusCode, fmt.Errorf("API error (status %d): %s", resp.StatusCode, msg)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// isMissingCollection recognises servers that report a missing collection
// with a non-404 status.
func isMissingCollection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
