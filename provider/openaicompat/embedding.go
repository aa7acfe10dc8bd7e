package openaicompat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lectern-ai/lectern"
)

// Embedding implements lectern.EmbeddingProvider against the embeddings
// endpoint of an OpenAI-compatible API.
type Embedding struct {
	p          *Provider
	dimensions int
}

// NewEmbedding creates an OpenAI-compatible embedding provider.
// dimensions must match what the model emits; the vector index uses it to
// size typed vector columns.
func NewEmbedding(apiKey, model, baseURL string, dimensions int, opts ...ProviderOption) *Embedding {
	return &Embedding{
		p:          NewProvider(apiKey, model, baseURL, opts...),
		dimensions: dimensions,
	}
}

// Name returns the provider name.
func (e *Embedding) Name() string { return e.p.name }

// Dimensions returns the embedding vector size.
func (e *Embedding) Dimensions() int { return e.dimensions }

// Embed returns one embedding per input text, in input order.
func (e *Embedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.p.post(ctx, "/embeddings", embeddingBody{
		Model: e.p.model,
		Input: texts,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(resp)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &lectern.ErrLLM{Provider: e.p.name, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &lectern.ErrLLM{
			Provider: e.p.name,
			Message:  fmt.Sprintf("got %d embeddings for %d inputs", len(parsed.Data), len(texts)),
		}
	}

	// The API may return data out of order; the index field is
	// authoritative.
	out := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, &lectern.ErrLLM{Provider: e.p.name, Message: fmt.Sprintf("embedding index %d out of range", d.Index)}
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// Compile-time interface check.
var _ lectern.EmbeddingProvider = (*Embedding)(nil)
