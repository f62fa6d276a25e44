package app

import (
	"errors"
	"fmt"
	"time"

	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/embedding"
	"ragchat/internal/vectorstore/memory"
	"ragchat/internal/vectorstore/qdrant"
	"ragchat/internal/vectorstore/sqlite"
)

// BuildEmbedder constructs the configured Embedder implementation.
func BuildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "ollama", "":
		return embedding.NewOllamaEmbedder(embedding.OllamaConfig{
			BaseURL: cfg.Embedder.Ollama.BaseURL,
			Model:   cfg.Embedder.Ollama.Model,
			Timeout: time.Duration(cfg.Embedder.Ollama.TimeoutSecs) * time.Second,
		}), nil
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedder.OpenAI.Model, cfg.Embedder.OpenAI.APIKeyEnv)
	case "hash":
		return embedding.NewHashEmbedder(cfg.Embedder.Hash.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

// OpenStore opens the configured vector store for ingestion, creating the
// sqlite database when it does not exist yet.
func OpenStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.Store.Type {
	case "sqlite", "":
		return sqlite.Open(cfg.Store.Path)
	case "qdrant":
		return qdrantStore(cfg)
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.Store.Type)
	}
}

// OpenExistingStore opens the configured vector store for serving. A sqlite
// store that was never ingested fails with sqlite.ErrStoreMissing instead
// of silently starting empty.
func OpenExistingStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.Store.Type {
	case "sqlite", "":
		return sqlite.OpenExisting(cfg.Store.Path)
	case "qdrant":
		return qdrantStore(cfg)
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.Store.Type)
	}
}

func qdrantStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	if cfg.Store.Qdrant == nil {
		return nil, errors.New("qdrant store config missing")
	}
	return qdrant.NewStore(qdrant.Config{
		URL:        cfg.Store.Qdrant.URL,
		APIKey:     cfg.Store.Qdrant.APIKey,
		Collection: cfg.Store.Qdrant.Collection,
		Timeout:    time.Duration(cfg.Store.Qdrant.TimeoutSecs) * time.Second,
	}), nil
}
