package lectern

import "context"

// VectorIndex abstracts persistent chunk storage with nearest-neighbor
// search. Implementations must support concurrent read queries; writes
// happen only during a separate ingestion phase and are serialized by the
// index, not by this package.
type VectorIndex interface {
	// Upsert stores chunks with their embeddings and metadata, replacing
	// any existing chunks with the same IDs.
	Upsert(ctx context.Context, chunks []Chunk) error
	// Search returns the topK nearest chunks by cosine similarity, highest
	// score first. Stored embeddings are returned alongside each chunk.
	// An empty index yields an empty slice, not an error.
	Search(ctx context.Context, embedding []float32, topK int) ([]ScoredChunk, error)
	// DeleteBySource removes all chunks ingested from the named source file
	// and reports how many were deleted. Used for re-ingestion with
	// force-overwrite.
	DeleteBySource(ctx context.Context, source string) (int, error)
	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	Init(ctx context.Context) error
	Close() error
}
