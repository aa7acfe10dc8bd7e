package lectern

import (
	"context"
	"fmt"
	"sort"
)

// fakeEmbedding returns canned vectors keyed by input text. Unknown texts
// get the fallback vector so tests never fail on lookup.
type fakeEmbedding struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    int
}

func (f *fakeEmbedding) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = f.fallback
		}
	}
	return out, nil
}

func (f *fakeEmbedding) Dimensions() int {
	return len(f.fallback)
}

func (f *fakeEmbedding) Name() string { return "fake" }

// fakeIndex is an in-memory VectorIndex that ranks stored chunks by cosine
// similarity, mirroring what the real backends do.
type fakeIndex struct {
	chunks      []Chunk
	searchErr   error
	searchCalls int
}

func (f *fakeIndex) Upsert(_ context.Context, chunks []Chunk) error {
	for _, c := range chunks {
		replaced := false
		for i := range f.chunks {
			if f.chunks[i].ID == c.ID {
				f.chunks[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			f.chunks = append(f.chunks, c)
		}
	}
	return nil
}

func (f *fakeIndex) Search(_ context.Context, embedding []float32, topK int) ([]ScoredChunk, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	scored := make([]ScoredChunk, len(f.chunks))
	for i, c := range f.chunks {
		scored[i] = ScoredChunk{Chunk: c, Score: CosineSimilarity(embedding, c.Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (f *fakeIndex) DeleteBySource(_ context.Context, source string) (int, error) {
	kept := f.chunks[:0]
	deleted := 0
	for _, c := range f.chunks {
		if c.Meta.Source == source {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	f.chunks = kept
	return deleted, nil
}

func (f *fakeIndex) Count(context.Context) (int, error) { return len(f.chunks), nil }
func (f *fakeIndex) Init(context.Context) error         { return nil }
func (f *fakeIndex) Close() error                       { return nil }

// fakeProvider echoes a canned response and records the last request.
type fakeProvider struct {
	response string
	err      error
	lastReq  ChatRequest
	calls    int
}

func (f *fakeProvider) Chat(_ context.Context, req ChatRequest) (ChatResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return ChatResponse{}, f.err
	}
	return ChatResponse{Content: f.response, Usage: Usage{InputTokens: 10, OutputTokens: 5}}, nil
}

func (f *fakeProvider) Name() string { return "fake-llm" }

// storedChunk builds a chunk with an embedding for index fakes.
func storedChunk(id string, embedding []float32, meta SourceMeta) Chunk {
	return Chunk{
		ID:        id,
		Text:      fmt.Sprintf("text of %s", id),
		Meta:      meta,
		Embedding: embedding,
	}
}
