// Package sqlite implements lectern.VectorIndex using pure-Go SQLite
// with in-process brute-force vector search. Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/lectern-ai/lectern"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Option configures a SQLite Index.
type Option func(*Index)

// WithLogger sets a structured logger for the index.
// When set, the index emits debug logs for every operation including
// timing, row counts, and key parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(ix *Index) { ix.logger = l }
}

// Index implements lectern.VectorIndex backed by a local SQLite file.
// Embeddings are stored as JSON text and vector search is done in-process
// using brute-force cosine similarity, which holds up fine for corpora in
// the tens of thousands of chunks.
type Index struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ lectern.VectorIndex = (*Index)(nil)

// nopLogger is a logger that discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates an Index using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...Option) *Index {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	ix := &Index{db: db, logger: nopLogger}
	for _, o := range opts {
		o(ix)
	}
	ix.logger.Debug("sqlite: index opened", "path", dbPath)
	return ix
}

// Init creates the chunks table and its indexes.
func (ix *Index) Init(ctx context.Context) error {
	start := time.Now()
	ix.logger.Debug("sqlite: init started")

	_, err := ix.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT NOT NULL,
		embedding TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	_, _ = ix.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source)`)

	ix.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// Upsert inserts or replaces chunks in a single transaction.
func (ix *Index) Upsert(ctx context.Context, chunks []lectern.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	start := time.Now()
	ix.logger.Debug("sqlite: upsert chunks", "count", len(chunks))

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return &lectern.IndexError{Op: "upsert", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback() //nolint:errcheck

	for _, chunk := range chunks {
		metaJSON, _ := json.Marshal(chunk.Meta)
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO chunks (id, source, chunk_index, content, metadata, embedding)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			chunk.ID, chunk.Meta.Source, chunk.Index, chunk.Text, string(metaJSON), serializeEmbedding(chunk.Embedding),
		)
		if err != nil {
			ix.logger.Error("sqlite: upsert chunk failed", "chunk_id", chunk.ID, "error", err)
			return &lectern.IndexError{Op: "upsert", Err: fmt.Errorf("insert chunk %s: %w", chunk.ID, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		ix.logger.Error("sqlite: upsert commit failed", "error", err, "duration", time.Since(start))
		return &lectern.IndexError{Op: "upsert", Err: fmt.Errorf("commit tx: %w", err)}
	}
	ix.logger.Debug("sqlite: upsert chunks ok", "count", len(chunks), "duration", time.Since(start))
	return nil
}

// Search performs brute-force cosine similarity search over all chunks.
func (ix *Index) Search(ctx context.Context, embedding []float32, topK int) ([]lectern.ScoredChunk, error) {
	start := time.Now()
	ix.logger.Debug("sqlite: search chunks", "top_k", topK, "embedding_dim", len(embedding))

	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, chunk_index, content, metadata, embedding FROM chunks`)
	if err != nil {
		return nil, &lectern.IndexError{Op: "search", Err: err}
	}
	defer rows.Close()

	var results []lectern.ScoredChunk
	scanned := 0

	for rows.Next() {
		var c lectern.Chunk
		var metaJSON, embJSON string
		if err := rows.Scan(&c.ID, &c.Index, &c.Text, &metaJSON, &embJSON); err != nil {
			return nil, &lectern.IndexError{Op: "search", Err: fmt.Errorf("scan chunk: %w", err)}
		}
		scanned++
		_ = json.Unmarshal([]byte(metaJSON), &c.Meta)
		stored, err := deserializeEmbedding(embJSON)
		if err != nil {
			continue
		}
		c.Embedding = stored
		results = append(results, lectern.ScoredChunk{Chunk: c, Score: cosineSimilarity(embedding, stored)})
	}
	if err := rows.Err(); err != nil {
		return nil, &lectern.IndexError{Op: "search", Err: fmt.Errorf("iterate chunks: %w", err)}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	ix.logger.Debug("sqlite: search chunks ok", "scanned", scanned, "returned", len(results), "duration", time.Since(start))
	return results, nil
}

// DeleteBySource removes all chunks ingested from a source file.
func (ix *Index) DeleteBySource(ctx context.Context, source string) (int, error) {
	start := time.Now()
	ix.logger.Debug("sqlite: delete by source", "source", source)

	res, err := ix.db.ExecContext(ctx, `DELETE FROM chunks WHERE source = ?`, source)
	if err != nil {
		ix.logger.Error("sqlite: delete by source failed", "source", source, "error", err, "duration", time.Since(start))
		return 0, &lectern.IndexError{Op: "delete", Err: err}
	}
	n, _ := res.RowsAffected()
	ix.logger.Debug("sqlite: delete by source ok", "source", source, "deleted", n, "duration", time.Since(start))
	return int(n), nil
}

// Count returns the number of stored chunks.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	if err != nil {
		return 0, &lectern.IndexError{Op: "count", Err: err}
	}
	return n, nil
}

// DB returns the underlying *sql.DB for callers that need direct access.
func (ix *Index) DB() *sql.DB {
	return ix.db
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	ix.logger.Debug("sqlite: closing index")
	err := ix.db.Close()
	if err != nil {
		ix.logger.Error("sqlite: close failed", "error", err)
	}
	return err
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

// serializeEmbedding converts []float32 to a JSON array string.
func serializeEmbedding(embedding []float32) string {
	data, _ := json.Marshal(embedding)
	return string(data)
}

// deserializeEmbedding parses a JSON array string back to []float32.
func deserializeEmbedding(s string) ([]float32, error) {
	var v []float32
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
