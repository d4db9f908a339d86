package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// maxSemanticResults is the most documents a semantic query may describe.
const maxSemanticResults = 5

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration (the specimen knowledge graph)
	Database DatabaseConfig `mapstructure:"database"`

	// Vector store configuration
	Vector VectorConfig `mapstructure:"vector"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// NLP configuration
	NLP NLPConfig `mapstructure:"nlp"`

	// Enrichment configuration
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	// ParquetPath is the directory token usage files are written to.
	// Empty disables token tracking.
	ParquetPath string `mapstructure:"parquet_path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Mode           string `mapstructure:"mode"`            // gin mode: debug, release, test
	RequestTimeout int    `mapstructure:"request_timeout"` // in seconds, 0 = none
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // neo4j, memgraph, memory
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// VectorConfig selects and locates the vector collection
type VectorConfig struct {
	Provider   string `mapstructure:"provider"` // chroma, neo4j, badger
	URI        string `mapstructure:"uri"`
	Collection string `mapstructure:"collection"`
	Path       string `mapstructure:"path"` // badger directory
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // openai
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// NLPConfig holds configuration for the generation model
type NLPConfig struct {
	Provider    string  `mapstructure:"provider"` // openai
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// EnrichmentConfig controls the per-result generation fan-out
type EnrichmentConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxResults  int `mapstructure:"max_results"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.request_timeout", 0)

	// Database defaults
	viper.SetDefault("database.driver", "neo4j")
	viper.SetDefault("database.uri", "bolt://localhost:7687")
	viper.SetDefault("database.username", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "")

	// Vector store defaults
	viper.SetDefault("vector.provider", "chroma")
	viper.SetDefault("vector.uri", "http://localhost:8000")
	viper.SetDefault("vector.collection", "specimens")
	viper.SetDefault("vector.path", "")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.base_url", "")
	viper.SetDefault("embedding.dimensions", 1024)

	// NLP defaults
	viper.SetDefault("nlp.provider", "openai")
	viper.SetDefault("nlp.model", "gpt-4o-mini")
	viper.SetDefault("nlp.base_url", "")
	viper.SetDefault("nlp.temperature", 0.7)
	viper.SetDefault("nlp.max_tokens", 512)

	// Enrichment defaults
	viper.SetDefault("enrichment.concurrency", 1)
	viper.SetDefault("enrichment.max_results", 5)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", filepath.Join(home, ".recommender", "telemetry"))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// API keys
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.NLP.APIKey == "" {
			config.NLP.APIKey = apiKey
		}
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
	}

	// Database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if user := os.Getenv("NEO4J_USERNAME"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}

	// Vector store
	if uri := os.Getenv("CHROMA_URI"); uri != "" {
		config.Vector.URI = uri
	}
	if collection := os.Getenv("CHROMA_COLLECTION"); collection != "" {
		config.Vector.Collection = collection
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if c.Server.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout must not be negative"))
	}

	switch strings.ToLower(c.Database.Driver) {
	case "neo4j", "memgraph":
		if c.Database.URI == "" {
			errs = append(errs, fmt.Errorf("database.uri is required for %s driver", c.Database.Driver))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver: %q", c.Database.Driver))
	}

	switch strings.ToLower(c.Vector.Provider) {
	case "chroma":
		if c.Vector.URI == "" {
			errs = append(errs, fmt.Errorf("vector.uri is required for chroma provider"))
		}
	case "neo4j":
		if c.Database.URI == "" {
			errs = append(errs, fmt.Errorf("database.uri is required for neo4j vector provider"))
		}
	case "badger":
		if c.Vector.Path == "" {
			errs = append(errs, fmt.Errorf("vector.path is required for badger provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported vector provider: %q", c.Vector.Provider))
	}
	if c.Vector.Collection == "" {
		errs = append(errs, fmt.Errorf("vector.collection is required"))
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be positive"))
	}
	if c.Enrichment.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("enrichment.concurrency must be positive"))
	}
	if c.Enrichment.MaxResults <= 0 || c.Enrichment.MaxResults > maxSemanticResults {
		errs = append(errs, fmt.Errorf("enrichment.max_results must be between 1 and %d", maxSemanticResults))
	}

	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.ReadyToTripRatio <= 0 || c.CircuitBreaker.ReadyToTripRatio > 1 {
			errs = append(errs, fmt.Errorf("circuit_breaker.ready_to_trip_ratio must be in (0, 1]"))
		}
	}

	return errors.Join(errs...)
}
