// Package config loads CLI configuration from defaults, a TOML file, and
// LECTERN_* environment variables, in that order (env wins).
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/lectern-ai/lectern"
)

type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Database  DatabaseConfig  `toml:"database"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Ingest    IngestConfig    `toml:"ingest"`
	Observer  ObserverConfig  `toml:"observer"`
}

type LLMConfig struct {
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	Temperature float32 `toml:"temperature"`
}

type EmbeddingConfig struct {
	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Dimensions int    `toml:"dimensions"`
}

type DatabaseConfig struct {
	// Driver selects the vector index backend: "sqlite" or "postgres".
	Driver      string `toml:"driver"`
	Path        string `toml:"path"`
	PostgresURL string `toml:"postgres_url"`
}

type RetrievalConfig struct {
	TopK           int     `toml:"top_k"`
	ScoreThreshold float32 `toml:"score_threshold"`
	UseMMR         bool    `toml:"use_mmr"`
	MMRDiversity   float32 `toml:"mmr_diversity"`
	ExpandQueries  bool    `toml:"expand_queries"`
}

type IngestConfig struct {
	DataDir      string `toml:"data_dir"`
	ChunkSize    int    `toml:"chunk_size"`
	ChunkOverlap int    `toml:"chunk_overlap"`
	BatchSize    int    `toml:"batch_size"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			BaseURL:     "https://api.openai.com/v1",
			Temperature: 0.2,
		},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-3-small",
			BaseURL:    "https://api.openai.com/v1",
			Dimensions: 1536,
		},
		Database: DatabaseConfig{Driver: "sqlite", Path: "lectern.db"},
		Retrieval: RetrievalConfig{
			TopK:           5,
			ScoreThreshold: 0.3,
			UseMMR:         true,
			MMRDiversity:   0.3,
			ExpandQueries:  true,
		},
		Ingest: IngestConfig{
			DataDir:      "data",
			ChunkSize:    500,
			ChunkOverlap: 50,
			BatchSize:    64,
		},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "lectern.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("LECTERN_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LECTERN_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LECTERN_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LECTERN_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("LECTERN_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("LECTERN_EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("LECTERN_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}
	if v := os.Getenv("LECTERN_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LECTERN_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LECTERN_POSTGRES_URL"); v != "" {
		cfg.Database.PostgresURL = v
	}
	if v := os.Getenv("LECTERN_SCORE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Retrieval.ScoreThreshold = float32(f)
		}
	}
	if v := os.Getenv("LECTERN_OBSERVER_ENABLED"); v == "true" || v == "1" {
		cfg.Observer.Enabled = true
	}

	// The embedding side usually shares the chat backend's key.
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = cfg.LLM.APIKey
	}

	return cfg
}

// Validate checks that the config can actually drive a process. Errors are
// reported as ConfigError so the CLI fails fast with a field name.
func (c Config) Validate() error {
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return &lectern.ConfigError{Field: "database.driver", Message: "must be sqlite or postgres"}
	}
	if c.Database.Driver == "postgres" && c.Database.PostgresURL == "" {
		return &lectern.ConfigError{Field: "database.postgres_url", Message: "required for postgres driver"}
	}
	if c.Retrieval.TopK < 1 {
		return &lectern.ConfigError{Field: "retrieval.top_k", Message: "must be >= 1"}
	}
	if c.Retrieval.ScoreThreshold < 0 || c.Retrieval.ScoreThreshold > 1 {
		return &lectern.ConfigError{Field: "retrieval.score_threshold", Message: "must be in [0, 1]"}
	}
	if c.Retrieval.MMRDiversity < 0 || c.Retrieval.MMRDiversity > 1 {
		return &lectern.ConfigError{Field: "retrieval.mmr_diversity", Message: "must be in [0, 1]"}
	}
	if c.Ingest.ChunkSize <= 0 {
		return &lectern.ConfigError{Field: "ingest.chunk_size", Message: "must be > 0"}
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return &lectern.ConfigError{Field: "ingest.chunk_overlap", Message: "must be in [0, chunk_size)"}
	}
	if c.Embedding.Dimensions <= 0 {
		return &lectern.ConfigError{Field: "embedding.dimensions", Message: "must be > 0"}
	}
	return nil
}
