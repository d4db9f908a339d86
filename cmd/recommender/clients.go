package recommender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/soundprediction/recommender"
	"github.com/soundprediction/recommender/pkg/config"
	"github.com/soundprediction/recommender/pkg/driver"
	"github.com/soundprediction/recommender/pkg/embedder"
	"github.com/soundprediction/recommender/pkg/logger"
	"github.com/soundprediction/recommender/pkg/nlp"
	"github.com/soundprediction/recommender/pkg/telemetry"
	"github.com/soundprediction/recommender/pkg/vectorstore"
)

const chromaTimeout = 30 * time.Second

// loadConfig loads and validates configuration; apply may adjust it between
// the two steps.
func loadConfig(apply func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. When a telemetry directory is
// configured, error records are also persisted there; the returned func
// flushes them.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	log := logger.NewLogger(os.Stderr, cfg.Log.Format, logger.ParseLevel(cfg.Log.Level))
	if cfg.Telemetry.ParquetPath == "" {
		return log, func() {}
	}

	handler, err := telemetry.NewParquetHandler(log.Handler(), cfg.Telemetry.ParquetPath)
	if err != nil {
		log.Warn("Error tracking disabled", "error", err)
		return log, func() {}
	}
	return slog.New(handler), func() {
		if err := handler.Close(); err != nil {
			log.Warn("Failed to flush error telemetry", "error", err)
		}
	}
}

// newGraphDriver connects to the configured knowledge graph. fixture is only
// read by the memory driver.
func newGraphDriver(cfg *config.Config, fixture string) (driver.GraphDriver, error) {
	switch strings.ToLower(cfg.Database.Driver) {
	case "neo4j":
		return driver.NewNeo4jDriver(cfg.Database.URI, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database)
	case "memgraph":
		return driver.NewMemgraphDriver(cfg.Database.URI, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database)
	case "memory":
		d := driver.NewMemoryDriver()
		if fixture != "" {
			if err := d.LoadFixtureFile(fixture); err != nil {
				return nil, err
			}
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// newVectorStore opens the configured vector store. The neo4j provider shares
// the bolt connection of graph.
func newVectorStore(cfg *config.Config, graph driver.GraphDriver, log *slog.Logger) (vectorstore.Store, error) {
	switch vectorstore.Provider(strings.ToLower(cfg.Vector.Provider)) {
	case vectorstore.ProviderChroma:
		return vectorstore.NewChromaStore(vectorstore.ChromaConfig{
			URI:     cfg.Vector.URI,
			Token:   os.Getenv("CHROMA_TOKEN"),
			Timeout: chromaTimeout,
		})
	case vectorstore.ProviderNeo4j:
		bolt, ok := graph.(*driver.Neo4jDriver)
		if !ok || bolt.Provider() != driver.GraphProviderNeo4j {
			return nil, fmt.Errorf("neo4j vector provider requires the neo4j database driver, got %s", cfg.Database.Driver)
		}
		return vectorstore.NewNeo4jStore(bolt.Client(), bolt.Database())
	case vectorstore.ProviderBadger:
		return vectorstore.OpenBadgerStore(cfg.Vector.Path, log)
	default:
		return nil, fmt.Errorf("unsupported vector provider: %s", cfg.Vector.Provider)
	}
}

func newEmbedder(cfg *config.Config) (embedder.Client, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.APIKey == "" && cfg.Embedding.BaseURL == "" {
			return nil, errors.New("embedding.api_key (or OPENAI_API_KEY) is required")
		}
		return embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedder.Config{
			Model:      cfg.Embedding.Model,
			BaseURL:    cfg.Embedding.BaseURL,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newGenerationClient builds the OpenAI client and wraps it with token
// tracking and circuit breaking when configured.
func newGenerationClient(cfg *config.Config, log *slog.Logger) (nlp.Client, error) {
	if cfg.NLP.Provider != "openai" {
		return nil, fmt.Errorf("unsupported NLP provider: %s", cfg.NLP.Provider)
	}
	if cfg.NLP.APIKey == "" && cfg.NLP.BaseURL == "" {
		return nil, errors.New("nlp.api_key (or OPENAI_API_KEY) is required")
	}

	temperature := cfg.NLP.Temperature
	maxTokens := cfg.NLP.MaxTokens
	base, err := nlp.NewOpenAIClient(cfg.NLP.APIKey, nlp.Config{
		Model:       cfg.NLP.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		BaseURL:     cfg.NLP.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create NLP client: %w", err)
	}

	var client nlp.Client = base
	if cfg.Telemetry.ParquetPath != "" {
		tracker, err := nlp.NewTokenTracker(cfg.Telemetry.ParquetPath)
		if err != nil {
			log.Warn("Token tracking disabled", "error", err)
		} else {
			client = nlp.NewTokenTrackingClient(client, tracker, log)
			log.Info("Token tracking enabled", "path", cfg.Telemetry.ParquetPath)
		}
	}
	if cfg.CircuitBreaker.Enabled {
		client = nlp.NewCircuitBreakerClient(client, cfg.CircuitBreaker, log, "generation")
	}
	return client, nil
}

// buildRecommender wires every backend into a recommender client. Backends
// created before a failure are closed again.
func buildRecommender(ctx context.Context, cfg *config.Config, fixture string, log *slog.Logger) (*recommender.Client, error) {
	graph, err := newGraphDriver(cfg, fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	store, err := newVectorStore(cfg, graph, log)
	if err != nil {
		_ = graph.Close(ctx)
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		_ = store.Close()
		_ = graph.Close(ctx)
		return nil, err
	}

	llm, err := newGenerationClient(cfg, log)
	if err != nil {
		_ = emb.Close()
		_ = store.Close()
		_ = graph.Close(ctx)
		return nil, err
	}

	client, err := recommender.NewClient(graph, emb, store, llm, &recommender.Config{
		Collection:            cfg.Vector.Collection,
		GraphLimit:            driver.DefaultRecommendationLimit,
		SemanticResults:       cfg.Enrichment.MaxResults,
		EnrichmentConcurrency: cfg.Enrichment.Concurrency,
	}, log)
	if err != nil {
		_ = llm.Close()
		_ = emb.Close()
		_ = store.Close()
		_ = graph.Close(ctx)
		return nil, err
	}

	log.Info("Recommender initialized",
		"graph", graph.Provider(),
		"vector", store.Provider(),
		"collection", cfg.Vector.Collection,
		"embedding_model", cfg.Embedding.Model,
		"nlp_model", cfg.NLP.Model)
	return client, nil
}
