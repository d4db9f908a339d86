package recommender

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundprediction/recommender/pkg/config"
	"github.com/soundprediction/recommender/pkg/server"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the recommendation HTTP server",
	Long: `Start the HTTP server exposing specimen recommendations.

The server provides endpoints for:
- Graph recommendations (/graph_recommend, /recommend_by_name)
- Semantic recommendations (/semantic_recommend)
- Health checks (/health, /live, /ready)
- Prometheus metrics (/metrics)

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost   string
	serverPort   int
	serverMode   string
	graphFixture string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")
	serverCmd.Flags().Int("request-timeout", 0, "Per-request timeout in seconds (0 disables)")

	addBackendFlags(serverCmd)
}

// addBackendFlags registers the flags shared by every command that talks to
// the backends.
func addBackendFlags(cmd *cobra.Command) {
	// Database flags
	cmd.Flags().String("db-driver", "neo4j", "Database driver (neo4j, memgraph, memory)")
	cmd.Flags().String("db-uri", "bolt://localhost:7687", "Database URI")
	cmd.Flags().String("db-username", "", "Database username")
	cmd.Flags().String("db-password", "", "Database password")
	cmd.Flags().String("db-database", "", "Database name")
	cmd.Flags().StringVar(&graphFixture, "graph-fixture", "", "YAML graph fixture loaded by the memory driver")

	// Vector store flags
	cmd.Flags().String("vector-provider", "chroma", "Vector store provider (chroma, neo4j, badger)")
	cmd.Flags().String("vector-uri", "http://localhost:8000", "Vector store URI (chroma)")
	cmd.Flags().String("vector-path", "", "Vector store directory (badger)")
	cmd.Flags().String("collection", "specimens", "Vector collection name")

	// NLP flags
	cmd.Flags().String("nlp-model", "gpt-4o-mini", "NLP model")
	cmd.Flags().String("nlp-api-key", "", "NLP API key")
	cmd.Flags().String("nlp-base-url", "", "NLP base URL")
	cmd.Flags().Float32("nlp-temperature", 0.7, "NLP temperature")
	cmd.Flags().Int("nlp-max-tokens", 512, "NLP max tokens")

	// Embedding flags
	cmd.Flags().String("embedding-model", "text-embedding-3-small", "Embedding model")
	cmd.Flags().String("embedding-api-key", "", "Embedding API key")
	cmd.Flags().String("embedding-base-url", "", "Embedding base URL")
	cmd.Flags().Int("embedding-dimensions", 1024, "Embedding dimensions")

	// Enrichment flags
	cmd.Flags().Int("enrichment-concurrency", 1, "Parallel per-result generation calls")

	// Telemetry flags
	cmd.Flags().String("telemetry-parquet-path", "", "Directory for token usage parquet files")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(cfg *config.Config) {
		overrideConfigWithFlags(cmd, cfg)
	})
	if err != nil {
		return err
	}
	log, flushLog := newLogger(cfg)
	defer flushLog()

	client, err := buildRecommender(cmd.Context(), cfg, graphFixture, log)
	if err != nil {
		return fmt.Errorf("failed to initialize recommender: %w", err)
	}

	srv := server.New(cfg, client, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		_ = client.Close(context.Background())
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("Received signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			_ = client.Close(shutdownCtx)
			return fmt.Errorf("server shutdown error: %w", err)
		}
		if err := client.Close(shutdownCtx); err != nil {
			log.Error("Failed to release backends", "error", err)
		}

		log.Info("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	// Server flags
	if flags.Changed("host") {
		cfg.Server.Host = serverHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = serverPort
	}
	if flags.Changed("mode") {
		cfg.Server.Mode = serverMode
	}
	if flags.Changed("request-timeout") {
		cfg.Server.RequestTimeout, _ = flags.GetInt("request-timeout")
	}

	// Database flags
	if flags.Changed("db-driver") {
		cfg.Database.Driver, _ = flags.GetString("db-driver")
	}
	if flags.Changed("db-uri") {
		cfg.Database.URI, _ = flags.GetString("db-uri")
	}
	if flags.Changed("db-username") {
		cfg.Database.Username, _ = flags.GetString("db-username")
	}
	if flags.Changed("db-password") {
		cfg.Database.Password, _ = flags.GetString("db-password")
	}
	if flags.Changed("db-database") {
		cfg.Database.Database, _ = flags.GetString("db-database")
	}

	// Vector store flags
	if flags.Changed("vector-provider") {
		cfg.Vector.Provider, _ = flags.GetString("vector-provider")
	}
	if flags.Changed("vector-uri") {
		cfg.Vector.URI, _ = flags.GetString("vector-uri")
	}
	if flags.Changed("vector-path") {
		cfg.Vector.Path, _ = flags.GetString("vector-path")
	}
	if flags.Changed("collection") {
		cfg.Vector.Collection, _ = flags.GetString("collection")
	}

	// NLP flags
	if flags.Changed("nlp-model") {
		cfg.NLP.Model, _ = flags.GetString("nlp-model")
	}
	if flags.Changed("nlp-api-key") {
		cfg.NLP.APIKey, _ = flags.GetString("nlp-api-key")
	}
	if flags.Changed("nlp-base-url") {
		cfg.NLP.BaseURL, _ = flags.GetString("nlp-base-url")
	}
	if flags.Changed("nlp-temperature") {
		cfg.NLP.Temperature, _ = flags.GetFloat32("nlp-temperature")
	}
	if flags.Changed("nlp-max-tokens") {
		cfg.NLP.MaxTokens, _ = flags.GetInt("nlp-max-tokens")
	}

	// Embedding flags
	if flags.Changed("embedding-model") {
		cfg.Embedding.Model, _ = flags.GetString("embedding-model")
	}
	if flags.Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = flags.GetString("embedding-api-key")
	}
	if flags.Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = flags.GetString("embedding-base-url")
	}
	if flags.Changed("embedding-dimensions") {
		cfg.Embedding.Dimensions, _ = flags.GetInt("embedding-dimensions")
	}

	// Enrichment flags
	if flags.Changed("enrichment-concurrency") {
		cfg.Enrichment.Concurrency, _ = flags.GetInt("enrichment-concurrency")
	}

	// Telemetry flags
	if flags.Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = flags.GetString("telemetry-parquet-path")
	}
}
