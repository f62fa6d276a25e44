package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig bounds the size and overlap of produced chunks, in characters.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// OllamaEmbedderConfig configures the Ollama-compatible embeddings endpoint.
type OllamaEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OpenAIEmbedderConfig configures the OpenAI SDK embedder.
type OpenAIEmbedderConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// HashEmbedderConfig configures the offline feature-hashing embedder.
type HashEmbedderConfig struct {
	Dimension int `yaml:"dimension"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	Ollama *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Hash   *HashEmbedderConfig   `yaml:"hash,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Type   string        `yaml:"type"`
	Path   string        `yaml:"path"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SQLSourceConfig configures the optional relational document source.
// The DSN is read from the named environment variable; an empty DSN means
// the source contributes zero documents.
type SQLSourceConfig struct {
	Driver string `yaml:"driver"`
	DSNEnv string `yaml:"dsn_env"`
	Query  string `yaml:"query"`
}

// GeneratorConfig configures the Ollama generation endpoint.
type GeneratorConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RetrievalConfig tunes query-time behavior.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// ServerConfig configures the HTTP serving process.
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	StaticDir   string   `yaml:"static_dir"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LogLevel   string          `yaml:"log_level"`
	DataDir    string          `yaml:"data_dir"`
	LedgerPath string          `yaml:"ledger_path"`
	SQLSource  SQLSourceConfig `yaml:"sql_source"`
	Chunker    ChunkerConfig   `yaml:"chunker"`
	Embedder   EmbedderConfig  `yaml:"embedder"`
	Store      StoreConfig     `yaml:"store"`
	Generator  GeneratorConfig `yaml:"generator"`
	Retrieval  RetrievalConfig `yaml:"retrieval"`
	Server     ServerConfig    `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragchat/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		LogLevel:   "info",
		DataDir:    "data",
		LedgerPath: "file_hashes.txt",
		SQLSource: SQLSourceConfig{
			Driver: "sqlite",
			DSNEnv: "DATABASE_URL",
			Query:  "SELECT id, title, content FROM documents",
		},
		Chunker:  ChunkerConfig{ChunkSize: 500, ChunkOverlap: 50},
		Embedder: EmbedderConfig{Type: "ollama"},
		Store:    StoreConfig{Type: "sqlite", Path: "vectors.db"},
		Generator: GeneratorConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.1:8b",
			Temperature: 0.8,
			MaxTokens:   2000,
			TimeoutSecs: 120,
		},
		Retrieval: RetrievalConfig{TopK: 3},
		Server: ServerConfig{
			Port:        "5000",
			CORSOrigins: []string{"http://localhost:3000"},
			StaticDir:   "frontend",
		},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = "file_hashes.txt"
	}
	if cfg.SQLSource.Driver == "" {
		cfg.SQLSource.Driver = "sqlite"
	}
	if cfg.SQLSource.DSNEnv == "" {
		cfg.SQLSource.DSNEnv = "DATABASE_URL"
	}
	if cfg.SQLSource.Query == "" {
		cfg.SQLSource.Query = "SELECT id, title, content FROM documents"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 500
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = 50
	}
	if cfg.Chunker.ChunkOverlap >= cfg.Chunker.ChunkSize {
		cfg.Chunker.ChunkOverlap = cfg.Chunker.ChunkSize / 5
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "ollama"
	}
	if cfg.Embedder.Type == "ollama" {
		if cfg.Embedder.Ollama == nil {
			cfg.Embedder.Ollama = &OllamaEmbedderConfig{}
		}
		if cfg.Embedder.Ollama.BaseURL == "" {
			cfg.Embedder.Ollama.BaseURL = "http://localhost:11434"
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "all-minilm"
		}
		if cfg.Embedder.Ollama.TimeoutSecs == 0 {
			cfg.Embedder.Ollama.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.Embedder.Type == "hash" {
		if cfg.Embedder.Hash == nil {
			cfg.Embedder.Hash = &HashEmbedderConfig{}
		}
		if cfg.Embedder.Hash.Dimension == 0 {
			cfg.Embedder.Hash.Dimension = 256
		}
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "sqlite"
	}
	if cfg.Store.Type == "sqlite" && cfg.Store.Path == "" {
		cfg.Store.Path = "vectors.db"
	}
	if cfg.Store.Type == "qdrant" && cfg.Store.Qdrant != nil {
		if cfg.Store.Qdrant.Collection == "" {
			cfg.Store.Qdrant.Collection = "ragchat"
		}
		if cfg.Store.Qdrant.TimeoutSecs == 0 {
			cfg.Store.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "http://localhost:11434"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "llama3.1:8b"
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.8
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 2000
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 120
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "5000"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
}
