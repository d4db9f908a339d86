package recommender

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/recommender/pkg/driver"
	"github.com/soundprediction/recommender/pkg/embedder"
	"github.com/soundprediction/recommender/pkg/enrich"
	"github.com/soundprediction/recommender/pkg/metrics"
	"github.com/soundprediction/recommender/pkg/nlp"
	"github.com/soundprediction/recommender/pkg/types"
	"github.com/soundprediction/recommender/pkg/vectorstore"
)

// Recommender is the interface served by the HTTP layer and the CLI.
type Recommender interface {
	// GraphQuery returns the names of specimens sharing the most attribute
	// nodes with specimenName, best first.
	GraphQuery(ctx context.Context, specimenName string) ([]string, error)

	// SemanticQuery retrieves specimens similar to query and describes them.
	SemanticQuery(ctx context.Context, query string) (*SemanticResponse, error)

	// Ping checks that the knowledge graph is reachable.
	Ping(ctx context.Context) error

	// Close releases every backend client.
	Close(ctx context.Context) error
}

// SemanticResponse is the result of a semantic query.
type SemanticResponse struct {
	Summary string
	Results []types.SemanticResult
}

// Config holds configuration for the recommender client.
type Config struct {
	// Collection is the vector collection searched by semantic queries.
	Collection string
	// GraphLimit caps graph recommendations.
	GraphLimit int
	// SemanticResults is the number of documents retrieved per query.
	// Values above vectorstore.DefaultResults are clamped to it.
	SemanticResults int
	// EnrichmentConcurrency bounds parallel per-result generation calls.
	EnrichmentConcurrency int
}

// DefaultCollection is searched when Config.Collection is empty.
const DefaultCollection = "specimens"

// Client is the main implementation of the Recommender interface.
type Client struct {
	driver   driver.GraphDriver
	embedder embedder.Client
	store    vectorstore.Store
	llm      nlp.Client
	enricher *enrich.Enricher
	config   *Config
	logger   *slog.Logger
}

var _ Recommender = (*Client)(nil)

// NewClient creates a recommender over explicitly constructed backends.
// The client owns them from here on and releases them in Close.
func NewClient(graph driver.GraphDriver, embedderClient embedder.Client, store vectorstore.Store, llmClient nlp.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if graph == nil {
		return nil, errors.New("graph driver is required")
	}
	if embedderClient == nil {
		return nil, errors.New("embedder is required")
	}
	if store == nil {
		return nil, errors.New("vector store is required")
	}
	if llmClient == nil {
		return nil, errors.New("generation client is required")
	}

	if config == nil {
		config = &Config{}
	}
	if config.Collection == "" {
		config.Collection = DefaultCollection
	}
	if config.GraphLimit <= 0 {
		config.GraphLimit = driver.DefaultRecommendationLimit
	}
	if config.SemanticResults <= 0 || config.SemanticResults > vectorstore.DefaultResults {
		config.SemanticResults = vectorstore.DefaultResults
	}
	if config.EnrichmentConcurrency <= 0 {
		config.EnrichmentConcurrency = enrich.DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		driver:   graph,
		embedder: embedderClient,
		store:    store,
		llm:      llmClient,
		enricher: enrich.NewEnricher(llmClient, enrich.Config{Concurrency: config.EnrichmentConcurrency}, logger),
		config:   config,
		logger:   logger,
	}, nil
}

// GraphQuery implements Recommender.
func (c *Client) GraphQuery(ctx context.Context, specimenName string) ([]string, error) {
	const op = "graph query"
	if strings.TrimSpace(specimenName) == "" {
		return nil, validationError(op, ErrMissingSpecimenName)
	}

	start := time.Now()
	recs, err := c.driver.Recommend(ctx, specimenName, c.config.GraphLimit)
	metrics.RecordUpstream(metrics.StageGraph, time.Since(start), err)
	if err != nil {
		return nil, upstreamError(op, err)
	}

	c.logger.DebugContext(ctx, "Graph recommendations computed",
		"specimen", specimenName, "count", len(recs), "duration", time.Since(start))
	return driver.Names(recs), nil
}

// SemanticQuery implements Recommender. Stages run in order and the first
// failure ends the query; no partial results are returned.
func (c *Client) SemanticQuery(ctx context.Context, query string) (*SemanticResponse, error) {
	const op = "semantic query"
	if strings.TrimSpace(query) == "" {
		return nil, validationError(op, ErrMissingQuery)
	}

	start := time.Now()
	embedding, err := c.embedder.EmbedSingle(ctx, query)
	metrics.RecordUpstream(metrics.StageEmbed, time.Since(start), err)
	if err != nil {
		return nil, upstreamError(op, err)
	}

	docs, err := c.retrieve(ctx, embedding)
	if err != nil {
		return nil, upstreamError(op, err)
	}

	resp := &SemanticResponse{Results: []types.SemanticResult{}}
	if len(docs) == 0 {
		c.logger.InfoContext(ctx, "No documents in vector collection matched query",
			"collection", c.config.Collection)
		return resp, nil
	}

	resp.Summary, err = c.enricher.Summarize(ctx, query, docs)
	if err != nil {
		return nil, upstreamError(op, err)
	}

	resp.Results, err = c.enricher.EnrichAll(ctx, query, docs)
	if err != nil {
		return nil, upstreamError(op, err)
	}

	c.logger.DebugContext(ctx, "Semantic recommendations computed",
		"results", len(resp.Results), "duration", time.Since(start))
	return resp, nil
}

func (c *Client) retrieve(ctx context.Context, embedding []float32) ([]types.Document, error) {
	start := time.Now()
	collection, err := c.store.Collection(ctx, c.config.Collection)
	if err == nil {
		var docs []types.Document
		docs, err = collection.Query(ctx, embedding, c.config.SemanticResults)
		metrics.RecordUpstream(metrics.StageVector, time.Since(start), err)
		return docs, err
	}
	metrics.RecordUpstream(metrics.StageVector, time.Since(start), err)
	return nil, err
}

// Ping implements Recommender.
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close implements Recommender. Every client is closed even when an earlier
// one fails; the errors are joined.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if err := c.llm.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.driver.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
