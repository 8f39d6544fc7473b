package cli

import (
	"fmt"

	"github.com/smartshopper/agent/internal/agent"
	"github.com/smartshopper/agent/internal/catalog"
	"github.com/smartshopper/agent/internal/config"
	"github.com/smartshopper/agent/internal/embedding"
	"github.com/smartshopper/agent/internal/llm"
	"github.com/smartshopper/agent/internal/retriever"
	"github.com/smartshopper/agent/internal/vectorstore"
	"github.com/smartshopper/agent/internal/vectorstore/memory"
	"github.com/smartshopper/agent/internal/vectorstore/sqlite"
)

const defaultConfigFile = "shopagent.yaml"

// loadConfig loads and validates the config file selected by --config.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Err(issue).Msg("invalid config")
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// newCatalogClient builds the store API client.
func newCatalogClient(cfg config.Config) *catalog.Client {
	return catalog.NewClient(catalog.Config{
		BaseURL:        cfg.Catalog.BaseURL,
		PublishableKey: cfg.Catalog.PublishableKey,
		Timeout:        cfg.Catalog.Timeout,
	})
}

// newLLMClient builds the inference client. The API key is required.
func newLLMClient(cfg config.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm.apiKey is not set (or export ANTHROPIC_API_KEY)")
	}
	return llm.NewAnthropicClient(llm.AnthropicConfig{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}), nil
}

// newEmbedder builds the embeddings client.
func newEmbedder(cfg config.Config) embedding.Embedder {
	return embedding.NewOpenAIClient(embedding.OpenAIConfig{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout,
	})
}

// openStore opens the configured vector store backend.
func openStore(cfg config.Config) (vectorstore.Store, error) {
	switch cfg.Index.Store {
	case "sqlite":
		return sqlite.Open(cfg.Index.Path, log)
	default:
		return memory.New(), nil
	}
}

// newTools registers the catalog tools.
func newTools(cat *catalog.Client) *agent.ToolRegistry {
	tools := agent.NewToolRegistry()
	tools.Register(catalog.NewSearchTool(cat, log))
	tools.Register(catalog.NewDetailsTool(cat, log))
	return tools
}

// newLoop assembles the conversation loop from config.
func newLoop(cfg config.Config, client llm.Client, tools *agent.ToolRegistry) *agent.Loop {
	return agent.New(agent.Config{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		MaxRounds:   cfg.Agent.MaxRounds,
		ToolTimeout: cfg.Agent.ToolTimeout,
	}, client, tools, log)
}

// newRetriever assembles the retriever over the given store.
func newRetriever(cfg config.Config, emb embedding.Embedder, store vectorstore.Store) *retriever.Retriever {
	return retriever.New(emb, store, cfg.Retriever.TopK, log)
}
