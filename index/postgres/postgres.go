// Package postgres implements lectern.VectorIndex using PostgreSQL with
// pgvector for native cosine similarity search over an HNSW index.
//
// The Index accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/lectern-ai/lectern"
)

// Index implements lectern.VectorIndex backed by PostgreSQL with pgvector.
// Vector search uses an HNSW index with cosine distance.
type Index struct {
	pool *pgxpool.Pool
	cfg  pgConfig
}

type pgConfig struct {
	embeddingDimension int // 0 = untyped vector
	hnswM              int // 0 = pgvector default (16)
	hnswEFConstruction int // 0 = pgvector default (64)
}

// Option configures a PostgreSQL Index.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension (e.g. 1536, 768).
// When set, CREATE TABLE uses vector(N) instead of untyped vector, enabling
// better index optimization and catching dimension mismatches at insert
// time. Only affects new table creation (no ALTER on existing tables).
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

// WithHNSWM sets the HNSW m parameter (max connections per node).
// Higher values improve recall at the cost of memory. Default: pgvector's 16.
func WithHNSWM(m int) Option {
	return func(c *pgConfig) { c.hnswM = m }
}

// WithEFConstruction sets the HNSW ef_construction parameter (build-time
// candidate list size). Higher values improve index quality at the cost of
// slower builds. Default: pgvector's 64.
func WithEFConstruction(ef int) Option {
	return func(c *pgConfig) { c.hnswEFConstruction = ef }
}

var _ lectern.VectorIndex = (*Index)(nil)

// New creates an Index using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Index {
	var cfg pgConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Index{pool: pool, cfg: cfg}
}

func (ix *Index) vectorType() string {
	if ix.cfg.embeddingDimension > 0 {
		return fmt.Sprintf("vector(%d)", ix.cfg.embeddingDimension)
	}
	return "vector"
}

func (ix *Index) hnswWithClause() string {
	var parts []string
	if ix.cfg.hnswM > 0 {
		parts = append(parts, fmt.Sprintf("m = %d", ix.cfg.hnswM))
	}
	if ix.cfg.hnswEFConstruction > 0 {
		parts = append(parts, fmt.Sprintf("ef_construction = %d", ix.cfg.hnswEFConstruction))
	}
	if len(parts) == 0 {
		return ""
	}
	return " WITH (" + strings.Join(parts, ", ") + ")"
}

// Init creates the pgvector extension, the chunks table, and its indexes.
// Safe to call multiple times (all statements are idempotent).
func (ix *Index) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL,
			embedding %s NOT NULL
		)`, ix.vectorType()),
		`CREATE INDEX IF NOT EXISTS chunks_source_idx ON chunks(source)`,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS chunks_embedding_idx ON chunks USING hnsw (embedding vector_cosine_ops)%s`, ix.hnswWithClause()),
	}
	for _, stmt := range stmts {
		if _, err := ix.pool.Exec(ctx, stmt); err != nil {
			return &lectern.IndexError{Op: "init", Err: fmt.Errorf("postgres: %w", err)}
		}
	}
	return nil
}

// Upsert inserts or replaces chunks in a single transaction.
func (ix *Index) Upsert(ctx context.Context, chunks []lectern.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := ix.pool.Begin(ctx)
	if err != nil {
		return &lectern.IndexError{Op: "upsert", Err: fmt.Errorf("postgres: begin tx: %w", err)}
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, chunk := range chunks {
		metaJSON, _ := json.Marshal(chunk.Meta)
		_, err = tx.Exec(ctx,
			`INSERT INTO chunks (id, source, chunk_index, content, metadata, embedding)
			 VALUES ($1, $2, $3, $4, $5::jsonb, $6)
			 ON CONFLICT (id) DO UPDATE SET
			   source = EXCLUDED.source,
			   chunk_index = EXCLUDED.chunk_index,
			   content = EXCLUDED.content,
			   metadata = EXCLUDED.metadata,
			   embedding = EXCLUDED.embedding`,
			chunk.ID, chunk.Meta.Source, chunk.Index, chunk.Text, string(metaJSON), pgvector.NewVector(chunk.Embedding))
		if err != nil {
			return &lectern.IndexError{Op: "upsert", Err: fmt.Errorf("postgres: insert chunk %s: %w", chunk.ID, err)}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return &lectern.IndexError{Op: "upsert", Err: fmt.Errorf("postgres: commit tx: %w", err)}
	}
	return nil
}

// Search performs vector similarity search using pgvector's cosine distance
// operator. Scores are 1 - cosine_distance, so higher is more similar.
func (ix *Index) Search(ctx context.Context, embedding []float32, topK int) ([]lectern.ScoredChunk, error) {
	query := pgvector.NewVector(embedding)
	rows, err := ix.pool.Query(ctx,
		`SELECT id, chunk_index, content, metadata, embedding,
		        1 - (embedding <=> $1) AS score
		 FROM chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		query, topK)
	if err != nil {
		return nil, &lectern.IndexError{Op: "search", Err: fmt.Errorf("postgres: %w", err)}
	}
	defer rows.Close()

	var results []lectern.ScoredChunk
	for rows.Next() {
		var c lectern.Chunk
		var metaJSON []byte
		var emb pgvector.Vector
		var score float32
		if err := rows.Scan(&c.ID, &c.Index, &c.Text, &metaJSON, &emb, &score); err != nil {
			return nil, &lectern.IndexError{Op: "search", Err: fmt.Errorf("postgres: scan chunk: %w", err)}
		}
		_ = json.Unmarshal(metaJSON, &c.Meta)
		c.Embedding = emb.Slice()
		results = append(results, lectern.ScoredChunk{Chunk: c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, &lectern.IndexError{Op: "search", Err: fmt.Errorf("postgres: %w", err)}
	}
	return results, nil
}

// DeleteBySource removes all chunks ingested from a source file.
func (ix *Index) DeleteBySource(ctx context.Context, source string) (int, error) {
	tag, err := ix.pool.Exec(ctx, `DELETE FROM chunks WHERE source = $1`, source)
	if err != nil {
		return 0, &lectern.IndexError{Op: "delete", Err: fmt.Errorf("postgres: %w", err)}
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of stored chunks.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := ix.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	if err != nil {
		return 0, &lectern.IndexError{Op: "count", Err: fmt.Errorf("postgres: %w", err)}
	}
	return n, nil
}

// Close is a no-op: the pool is caller-owned.
func (ix *Index) Close() error { return nil }
