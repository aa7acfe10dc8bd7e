package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lectern-ai/lectern"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("Embedding.Dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q", cfg.Database.Driver)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.ScoreThreshold != 0.3 {
		t.Errorf("Retrieval = %+v", cfg.Retrieval)
	}
	if !cfg.Retrieval.ExpandQueries {
		t.Error("ExpandQueries should default to true")
	}
	if !cfg.Retrieval.UseMMR {
		t.Error("UseMMR should default to true")
	}
	if cfg.Observer.Enabled {
		t.Error("Observer should default to disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lectern.toml")
	data := `
[llm]
model = "gpt-4o"
api_key = "file-key"

[database]
driver = "postgres"
postgres_url = "postgres://localhost/lectern"

[retrieval]
top_k = 10
score_threshold = 0.5
use_mmr = false

[ingest]
chunk_size = 300
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.PostgresURL != "postgres://localhost/lectern" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Retrieval.TopK != 10 || cfg.Retrieval.ScoreThreshold != 0.5 {
		t.Errorf("Retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.UseMMR {
		t.Error("use_mmr = false in file should disable MMR")
	}
	if cfg.Ingest.ChunkSize != 300 {
		t.Errorf("ChunkSize = %d", cfg.Ingest.ChunkSize)
	}
	// Untouched sections keep defaults.
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("Embedding.Model = %q", cfg.Embedding.Model)
	}
	// Embedding key falls back to the LLM key.
	if cfg.Embedding.APIKey != "file-key" {
		t.Errorf("Embedding.APIKey = %q, want file-key", cfg.Embedding.APIKey)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lectern.toml")
	if err := os.WriteFile(path, []byte("[llm]\nmodel = \"from-file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LECTERN_LLM_MODEL", "from-env")
	t.Setenv("LECTERN_LLM_API_KEY", "env-key")
	t.Setenv("LECTERN_EMBEDDING_DIMENSIONS", "768")
	t.Setenv("LECTERN_SCORE_THRESHOLD", "0.7")
	t.Setenv("LECTERN_OBSERVER_ENABLED", "1")

	cfg := Load(path)
	if cfg.LLM.Model != "from-env" {
		t.Errorf("LLM.Model = %q, want from-env", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("LLM.APIKey = %q", cfg.LLM.APIKey)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("Dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Retrieval.ScoreThreshold != 0.7 {
		t.Errorf("ScoreThreshold = %v", cfg.Retrieval.ScoreThreshold)
	}
	if !cfg.Observer.Enabled {
		t.Error("Observer.Enabled should be set from env")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "unknown driver",
			mutate:    func(c *Config) { c.Database.Driver = "mysql" },
			wantField: "database.driver",
		},
		{
			name:      "postgres without url",
			mutate:    func(c *Config) { c.Database.Driver = "postgres" },
			wantField: "database.postgres_url",
		},
		{
			name:      "zero top_k",
			mutate:    func(c *Config) { c.Retrieval.TopK = 0 },
			wantField: "retrieval.top_k",
		},
		{
			name:      "threshold out of range",
			mutate:    func(c *Config) { c.Retrieval.ScoreThreshold = 1.5 },
			wantField: "retrieval.score_threshold",
		},
		{
			name:      "diversity out of range",
			mutate:    func(c *Config) { c.Retrieval.MMRDiversity = -0.1 },
			wantField: "retrieval.mmr_diversity",
		},
		{
			name:      "overlap not below chunk size",
			mutate:    func(c *Config) { c.Ingest.ChunkOverlap = c.Ingest.ChunkSize },
			wantField: "ingest.chunk_overlap",
		},
		{
			name:      "zero dimensions",
			mutate:    func(c *Config) { c.Embedding.Dimensions = 0 },
			wantField: "embedding.dimensions",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var cfgErr *lectern.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}
