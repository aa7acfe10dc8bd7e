// Package lectern is a retrieval-and-grounding engine for question answering
// over heterogeneous course materials.
//
// It provides modular, interface-driven building blocks: a token-aware
// document chunker, pluggable vector index backends, embedding and LLM
// provider abstractions, query expansion, MMR re-ranking, and a deterministic
// grounded/fallback mode decision with per-file-type citations.
//
// # Quick Start
//
// Wire an engine from a provider, an embedding provider, and a vector index:
//
//	provider := openaicompat.NewProvider(apiKey, model, baseURL)
//	embedding := openaicompat.NewEmbedding(apiKey, embedModel, baseURL, 1536)
//	index := sqlite.New("lectern.db")
//
//	retriever, err := lectern.NewRetriever(index, embedding,
//		lectern.WithTopK(4),
//		lectern.WithMMR(0.3),
//	)
//	engine, err := lectern.NewEngine(retriever, provider,
//		lectern.WithScoreThreshold(0.3),
//	)
//
//	answer, err := engine.Ask(ctx, "what is the grading policy?")
//	fmt.Println(answer.Decision.Mode, answer.Text)
//
// # Core Interfaces
//
// The root package defines the contracts that all components implement:
//
//   - [Provider]: LLM backend for answer generation
//   - [EmbeddingProvider]: text-to-vector embedding
//   - [VectorIndex]: persistence with nearest-neighbor search
//
// # Included Implementations
//
// Providers: provider/openaicompat (OpenAI, Ollama, and compatible APIs).
// Indexes: index/sqlite (local, zero CGO), index/postgres (pgvector).
// Ingestion: the ingest package extracts, normalizes, chunks, and embeds
// documents (pdf, srt, txt, md, html) into a VectorIndex.
//
// See cmd/lectern for a complete command-line application.
package lectern
