package lectern

import (
	"context"
	"math"
)

// RetrieverOption configures a Retriever.
type RetrieverOption func(*retrieverConfig)

type retrieverConfig struct {
	topK                int
	useMMR              bool
	diversity           float32
	overfetchMultiplier int
}

// WithTopK sets how many results Retrieve returns. Default is 4.
func WithTopK(k int) RetrieverOption {
	return func(c *retrieverConfig) { c.topK = k }
}

// WithMMR enables maximal-marginal-relevance re-ranking with the given
// diversity factor in [0, 1]: 0 ranks purely by relevance, 1 purely by
// dissimilarity to already-selected results.
func WithMMR(diversity float32) RetrieverOption {
	return func(c *retrieverConfig) {
		c.useMMR = true
		c.diversity = diversity
	}
}

// WithOverfetchMultiplier sets the multiplier for over-fetching candidates
// when MMR is enabled. Retrieve fetches topK * multiplier candidates to give
// the re-ranker a pool, then trims to topK. Default is 3.
func WithOverfetchMultiplier(n int) RetrieverOption {
	return func(c *retrieverConfig) { c.overfetchMultiplier = n }
}

// Retriever embeds a query, searches the vector index, and optionally
// re-ranks for diversity. It holds no mutable state, so one Retriever is
// safe for concurrent queries.
type Retriever struct {
	index     VectorIndex
	embedding EmbeddingProvider
	cfg       retrieverConfig
}

// NewRetriever creates a Retriever. Invalid options (topK < 1, diversity
// outside [0, 1]) are rejected here so they can never surface at query time.
func NewRetriever(index VectorIndex, embedding EmbeddingProvider, opts ...RetrieverOption) (*Retriever, error) {
	cfg := retrieverConfig{topK: 4, overfetchMultiplier: 3}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.topK < 1 {
		return nil, &ConfigError{Field: "top_k", Message: "must be >= 1"}
	}
	if cfg.diversity < 0 || cfg.diversity > 1 {
		return nil, &ConfigError{Field: "mmr_diversity", Message: "must be in [0, 1]"}
	}
	if cfg.overfetchMultiplier < 1 {
		return nil, &ConfigError{Field: "overfetch_multiplier", Message: "must be >= 1"}
	}
	return &Retriever{index: index, embedding: embedding, cfg: cfg}, nil
}

// TopK returns the configured result count.
func (r *Retriever) TopK() int { return r.cfg.topK }

// Retrieve embeds the (possibly expanded) query and returns up to topK
// scored results, highest score first. An empty index yields an empty
// slice; embedding and index failures propagate as typed errors.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]RetrievedResult, error) {
	embs, err := r.embedding.Embed(ctx, []string{query})
	if err != nil {
		return nil, &EmbeddingError{Provider: r.embedding.Name(), Err: err}
	}
	if len(embs) == 0 {
		return nil, &EmbeddingError{Provider: r.embedding.Name(), Err: errNoEmbedding}
	}

	fetchK := r.cfg.topK
	if r.cfg.useMMR {
		fetchK = r.cfg.topK * r.cfg.overfetchMultiplier
	}

	candidates, err := r.index.Search(ctx, embs[0], fetchK)
	if err != nil {
		return nil, &IndexError{Op: "search", Err: err}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	if r.cfg.useMMR {
		candidates = mmrSelect(candidates, r.cfg.topK, r.cfg.diversity)
	} else if len(candidates) > r.cfg.topK {
		candidates = candidates[:r.cfg.topK]
	}

	results := make([]RetrievedResult, len(candidates))
	for i, c := range candidates {
		results[i] = RetrievedResult{Chunk: c.Chunk, Score: c.Score}
	}
	return results, nil
}

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const errNoEmbedding = sentinelError("no embedding returned")

// mmrSelect greedily picks up to topK candidates maximizing
//
//	(1-diversity)*relevance - diversity*maxSim(candidate, selected)
//
// where maxSim is the highest cosine similarity between the candidate's
// stored embedding and any already-selected result. Candidates arrive in
// index-score rank order; ties keep that order (strict > comparison), never
// random. A near-duplicate of an already-selected chunk scores lower and is
// passed over in favor of something new.
func mmrSelect(candidates []ScoredChunk, topK int, diversity float32) []ScoredChunk {
	if len(candidates) <= topK {
		// No pool to trade off against; keep index order.
		return candidates
	}

	selected := make([]ScoredChunk, 0, topK)
	remaining := make([]int, len(candidates))
	for i := range remaining {
		remaining[i] = i
	}

	for len(selected) < topK && len(remaining) > 0 {
		bestPos := 0
		bestScore := float32(math.Inf(-1))
		for pos, idx := range remaining {
			c := candidates[idx]
			// Max similarity to the selected set, which can be negative: a
			// candidate pointing away from everything selected gets its MMR
			// score raised, not clamped. Empty set contributes nothing.
			var maxSim float32
			if len(selected) > 0 {
				maxSim = float32(math.Inf(-1))
			}
			for _, s := range selected {
				if sim := CosineSimilarity(c.Embedding, s.Embedding); sim > maxSim {
					maxSim = sim
				}
			}
			score := (1-diversity)*c.Score - diversity*maxSim
			if score > bestScore {
				bestScore = score
				bestPos = pos
			}
		}
		selected = append(selected, candidates[remaining[bestPos]])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}
	return selected
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Mismatched or empty vectors score 0.
func CosineSimilarity(a, b []float32) float32 {
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
