package lectern

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	threshold float32
	expander  *QueryExpander
	chitchat  bool
	logger    *slog.Logger
}

// WithScoreThreshold sets the minimum similarity score required for any
// retrieved chunk to justify grounded mode. Default is 0.3.
func WithScoreThreshold(t float32) EngineOption {
	return func(c *engineConfig) { c.threshold = t }
}

// WithExpander sets the query expander applied before retrieval. Passing
// nil disables expansion.
func WithExpander(x *QueryExpander) EngineOption {
	return func(c *engineConfig) { c.expander = x }
}

// WithChitchatDetection toggles the pre-retrieval chitchat check.
// Enabled by default.
func WithChitchatDetection(enabled bool) EngineOption {
	return func(c *engineConfig) { c.chitchat = enabled }
}

// WithLogger sets a structured logger for per-query decision logging.
func WithLogger(l *slog.Logger) EngineOption {
	return func(c *engineConfig) { c.logger = l }
}

// Engine orchestrates one query end to end: chitchat check, query
// expansion, retrieval, the grounding decision, prompt selection, and
// generation. It is stateless between queries; concurrent Ask calls never
// interfere.
type Engine struct {
	retriever *Retriever
	provider  Provider
	cfg       engineConfig
}

// NewEngine creates an Engine. The score threshold is validated here so an
// out-of-range value fails at construction, never mid-query.
func NewEngine(retriever *Retriever, provider Provider, opts ...EngineOption) (*Engine, error) {
	cfg := engineConfig{
		threshold: 0.3,
		expander:  NewQueryExpander(nil),
		chitchat:  true,
		logger:    nopLogger,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.threshold < 0 || cfg.threshold > 1 {
		return nil, &ConfigError{Field: "score_threshold", Message: "must be in [0, 1]"}
	}
	return &Engine{retriever: retriever, provider: provider, cfg: cfg}, nil
}

// Ask answers a question. The original question is always the one shown in
// prompts and returned to the caller; the expanded form is used for
// retrieval only. Fallback mode is a valid terminal state, not an error:
// Ask returns an error only when the embedding provider, vector index, or
// LLM fails.
func (e *Engine) Ask(ctx context.Context, question string) (Answer, error) {
	start := time.Now()

	if e.cfg.chitchat && IsChitchat(question) {
		e.cfg.logger.Debug("chitchat detected, skipping retrieval", "query", truncate(question, 80))
		return e.generate(ctx, question, nil, GroundingDecision{Mode: ModeChitchat}, start, 0)
	}

	retrievalQuery := question
	if e.cfg.expander != nil {
		retrievalQuery = e.cfg.expander.Expand(question)
		if retrievalQuery != question {
			e.cfg.logger.Debug("query expanded", "query", truncate(question, 80))
		}
	}

	retrievalStart := time.Now()
	results, err := e.retriever.Retrieve(ctx, retrievalQuery)
	if err != nil {
		return Answer{}, err
	}
	retrievalTime := time.Since(retrievalStart).Seconds()

	decision := DecideGrounding(results, e.cfg.threshold)
	e.cfg.logger.Info("grounding decision",
		"mode", decision.Mode.String(),
		"reason", decision.Reason.String(),
		"max_score", decision.MaxScore,
		"chunks", len(results),
	)

	if decision.Mode == ModeFallback {
		// Fallback answers carry no sources or citations.
		return e.generate(ctx, question, nil, decision, start, retrievalTime)
	}
	return e.generate(ctx, question, results, decision, start, retrievalTime)
}

func (e *Engine) generate(ctx context.Context, question string, results []RetrievedResult, decision GroundingDecision, start time.Time, retrievalTime float64) (Answer, error) {
	genStart := time.Now()
	resp, err := e.provider.Chat(ctx, ChatRequest{Messages: promptFor(decision.Mode, question, results)})
	if err != nil {
		return Answer{}, fmt.Errorf("generate (%s): %w", e.provider.Name(), err)
	}

	scores := make([]float32, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}

	var citations []Citation
	if decision.Mode == ModeGrounded {
		citations = MergeCitations(results)
	}

	return Answer{
		Text:      resp.Content,
		Sources:   results,
		Citations: citations,
		Decision:  decision,
		Scores:    scores,
		Timing: Timing{
			Total:      time.Since(start).Seconds(),
			Retrieval:  retrievalTime,
			Generation: time.Since(genStart).Seconds(),
		},
	}, nil
}

// nopLogger drops all records. It is the default so library users opt in
// to logging via WithLogger instead of inheriting the process default.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
