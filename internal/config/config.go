// Package config loads and validates the shopagent configuration.
package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Config is the root configuration for shopagent.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog,omitempty"`
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`
	Index     IndexConfig     `yaml:"index,omitempty"`
	Agent     AgentConfig     `yaml:"agent,omitempty"`
	Retriever RetrieverConfig `yaml:"retriever,omitempty"`
	Ingest    IngestConfig    `yaml:"ingest,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// CatalogConfig points at the store API of the catalog backend.
type CatalogConfig struct {
	BaseURL        string        `yaml:"baseUrl,omitempty"`
	PublishableKey string        `yaml:"publishableKey,omitempty"` // sent as x-publishable-api-key when set
	Timeout        time.Duration `yaml:"timeout,omitempty"`
}

// LLMConfig configures the LLM inference API.
type LLMConfig struct {
	APIKey    string        `yaml:"apiKey,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	MaxTokens int           `yaml:"maxTokens,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// EmbeddingConfig configures the OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	BaseURL string        `yaml:"baseUrl,omitempty"`
	APIKey  string        `yaml:"apiKey,omitempty"`
	Model   string        `yaml:"model,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// IndexConfig selects the vector index store backend.
type IndexConfig struct {
	Store string `yaml:"store,omitempty"` // "memory" | "sqlite"
	Path  string `yaml:"path,omitempty"`  // sqlite file path
}

// AgentConfig controls the agent loop.
type AgentConfig struct {
	MaxRounds   int           `yaml:"maxRounds,omitempty"`
	ToolTimeout time.Duration `yaml:"toolTimeout,omitempty"`
}

// RetrieverConfig controls retrieval-augmented context.
type RetrieverConfig struct {
	TopK int `yaml:"topK,omitempty"`
}

// IngestConfig controls the offline ingestion pipeline.
type IngestConfig struct {
	ChunkWords   int `yaml:"chunkWords,omitempty"`
	OverlapWords int `yaml:"overlapWords,omitempty"`
	PageLimit    int `yaml:"pageLimit,omitempty"`   // products fetched per catalog request
	Concurrency  int `yaml:"concurrency,omitempty"` // parallel embedding calls
}

// ServerConfig controls the HTTP serving wrapper.
type ServerConfig struct {
	Port int    `yaml:"port,omitempty"`
	Bind string `yaml:"bind,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Catalog: CatalogConfig{
			BaseURL: "http://localhost:9000/store",
			Timeout: 20 * time.Second,
		},
		LLM: LLMConfig{
			Model:     "claude-3-5-sonnet-20241022",
			MaxTokens: 1024,
			Timeout:   2 * time.Minute,
		},
		Embedding: EmbeddingConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-3-small",
			Timeout: 30 * time.Second,
		},
		Index: IndexConfig{
			Store: "memory",
			Path:  "shopagent.db",
		},
		Agent: AgentConfig{
			MaxRounds:   5,
			ToolTimeout: 30 * time.Second,
		},
		Retriever: RetrieverConfig{
			TopK: 4,
		},
		Ingest: IngestConfig{
			ChunkWords:   200,
			OverlapWords: 40,
			PageLimit:    250,
			Concurrency:  4,
		},
		Server: ServerConfig{
			Port: 8399,
			Bind: "127.0.0.1",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports problems that make the config unusable for serving.
func Validate(cfg *Config) []error {
	var issues []error
	if cfg.Catalog.BaseURL == "" {
		issues = append(issues, &ConfigError{Message: "catalog.baseUrl is required"})
	}
	if cfg.Agent.MaxRounds <= 0 {
		issues = append(issues, &ConfigError{Message: "agent.maxRounds must be positive"})
	}
	switch cfg.Index.Store {
	case "memory", "sqlite":
	default:
		issues = append(issues, &ConfigError{Message: fmt.Sprintf("index.store %q is not supported (memory, sqlite)", cfg.Index.Store)})
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		issues = append(issues, &ConfigError{Message: fmt.Sprintf("server.port %d out of range", cfg.Server.Port)})
	}
	return issues
}
