package ingest

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lectern-ai/lectern"
)

// IngestResult holds the outcome of ingesting a single file.
type IngestResult struct {
	Source     string
	FileType   lectern.FileType
	ChunkCount int
	Replaced   int
}

// DirResult aggregates an IngestDir run.
type DirResult struct {
	FilesIngested int
	FilesSkipped  int
	ChunkCount    int
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithChunker overrides the default chunker.
func WithChunker(c *Chunker) Option {
	return func(ing *Ingestor) { ing.chunker = c }
}

// WithRegistry overrides the default extractor registry.
func WithRegistry(r *Registry) Option {
	return func(ing *Ingestor) { ing.registry = r }
}

// WithBatchSize sets how many chunk texts go to the embedding provider per
// call. Default is 64.
func WithBatchSize(n int) Option {
	return func(ing *Ingestor) {
		if n > 0 {
			ing.batchSize = n
		}
	}
}

// WithForceOverwrite deletes previously ingested chunks for a source before
// storing new ones. Without it, re-ingesting relies on deterministic chunk
// IDs to upsert in place, which can strand stale chunks when a document
// shrinks.
func WithForceOverwrite(force bool) Option {
	return func(ing *Ingestor) { ing.force = force }
}

// WithLogger sets a structured logger for per-file progress.
func WithLogger(l *slog.Logger) Option {
	return func(ing *Ingestor) { ing.logger = l }
}

// Ingestor provides end-to-end ingestion: extract, chunk, embed, store.
type Ingestor struct {
	index     lectern.VectorIndex
	embedding lectern.EmbeddingProvider
	chunker   *Chunker
	registry  *Registry
	batchSize int
	force     bool
	logger    *slog.Logger
}

// NewIngestor creates an Ingestor with the built-in extractor registry and
// a default chunker of 500 tokens with 50 tokens of overlap.
func NewIngestor(index lectern.VectorIndex, emb lectern.EmbeddingProvider, opts ...Option) *Ingestor {
	chunker, _ := NewChunker(500, 50)
	ing := &Ingestor{
		index:     index,
		embedding: emb,
		chunker:   chunker,
		registry:  NewRegistry(),
		batchSize: 64,
		logger:    slog.New(nopHandler{}),
	}
	for _, o := range opts {
		o(ing)
	}
	return ing
}

// IngestFile ingests file content. The source path names the file relative
// to the data root; its extension selects the extractor and its first
// directory element, if any, becomes the chunk's course ID.
func (ing *Ingestor) IngestFile(ctx context.Context, content []byte, source string) (IngestResult, error) {
	extractor, ft, ok := ing.registry.Lookup(filepath.Ext(source))
	if !ok {
		return IngestResult{}, fmt.Errorf("unsupported file type %q", filepath.Ext(source))
	}

	extracted, err := extractor.Extract(content)
	if err != nil {
		return IngestResult{}, fmt.Errorf("extract %s: %w", source, err)
	}

	spans := ing.chunker.Split(extracted.Text)
	if len(spans) == 0 {
		ing.logger.Warn("no text extracted", "source", source, "file_type", string(ft))
		return IngestResult{Source: source, FileType: ft}, nil
	}

	title := TitleFromFilename(source)
	courseID := courseIDFor(source)
	chunks := make([]lectern.Chunk, len(spans))
	for i, s := range spans {
		pageStart, pageEnd := pageSpanFor(extracted.Pages, s)
		chunks[i] = lectern.Chunk{
			ID:    lectern.ChunkID(source, ft, i),
			Text:  extracted.Text[s.Start:s.End],
			Index: i,
			Meta: lectern.SourceMeta{
				Source:    source,
				FileType:  ft,
				Title:     title,
				PageStart: pageStart,
				PageEnd:   pageEnd,
				CourseID:  courseID,
			},
		}
	}

	if err := ing.batchEmbed(ctx, chunks); err != nil {
		return IngestResult{}, err
	}

	var replaced int
	if ing.force {
		replaced, err = ing.index.DeleteBySource(ctx, source)
		if err != nil {
			return IngestResult{}, fmt.Errorf("delete %s: %w", source, err)
		}
	}

	if err := ing.index.Upsert(ctx, chunks); err != nil {
		return IngestResult{}, fmt.Errorf("store %s: %w", source, err)
	}

	ing.logger.Info("ingested",
		"source", source,
		"file_type", string(ft),
		"chunks", len(chunks),
		"replaced", replaced,
	)
	return IngestResult{
		Source:     source,
		FileType:   ft,
		ChunkCount: len(chunks),
		Replaced:   replaced,
	}, nil
}

// IngestReader reads all content from r and ingests it under source.
func (ing *Ingestor) IngestReader(ctx context.Context, r io.Reader, source string) (IngestResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read: %w", err)
	}
	return ing.IngestFile(ctx, data, source)
}

// IngestDir walks root and ingests every file with a registered extension,
// in lexical path order. A file that fails to extract or embed is logged
// and skipped; the walk continues so one corrupt document never blocks a
// corpus. Unsupported extensions count as skipped.
func (ing *Ingestor) IngestDir(ctx context.Context, root string) (DirResult, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return DirResult{}, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)

	var res DirResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if _, _, ok := ing.registry.Lookup(filepath.Ext(path)); !ok {
			ing.logger.Debug("skipping unsupported file", "source", rel)
			res.FilesSkipped++
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			ing.logger.Error("read failed, skipping", "source", rel, "error", err)
			res.FilesSkipped++
			continue
		}
		fileRes, err := ing.IngestFile(ctx, content, filepath.ToSlash(rel))
		if err != nil {
			ing.logger.Error("ingest failed, skipping", "source", rel, "error", err)
			res.FilesSkipped++
			continue
		}
		res.FilesIngested++
		res.ChunkCount += fileRes.ChunkCount
	}
	return res, nil
}

// batchEmbed embeds chunks in batches of ing.batchSize.
func (ing *Ingestor) batchEmbed(ctx context.Context, chunks []lectern.Chunk) error {
	for i := 0; i < len(chunks); i += ing.batchSize {
		end := i + ing.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := chunks[i:end]
		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		embeddings, err := ing.embedding.Embed(ctx, texts)
		if err != nil {
			return &lectern.EmbeddingError{Provider: ing.embedding.Name(), Err: fmt.Errorf("batch %d-%d: %w", i, end, err)}
		}
		if len(embeddings) != len(batch) {
			return &lectern.EmbeddingError{
				Provider: ing.embedding.Name(),
				Err:      fmt.Errorf("batch %d-%d: got %d embeddings for %d texts", i, end, len(embeddings), len(batch)),
			}
		}
		for j := range batch {
			batch[j].Embedding = embeddings[j]
		}
	}
	return nil
}

// courseIDFor returns the first path element of a slash-separated relative
// source path, or "" for a bare filename.
func courseIDFor(source string) string {
	source = filepath.ToSlash(source)
	if i := strings.IndexByte(source, '/'); i > 0 {
		return source[:i]
	}
	return ""
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
