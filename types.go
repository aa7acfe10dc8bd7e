package lectern

// FileType identifies the format a document was loaded from.
// Known values get dedicated citation templates; anything else falls through
// to a generic one.
type FileType string

const (
	FileTypePDF      FileType = "pdf"
	FileTypeSRT      FileType = "srt"
	FileTypeTxt      FileType = "txt"
	FileTypeMarkdown FileType = "md"
	FileTypeHTML     FileType = "html"
)

// SourceMeta describes where a chunk's text came from.
// PageStart/PageEnd are 1-indexed and only meaningful for paginated types;
// zero means "not paginated". CourseID is derived from the folder structure
// under the ingestion root and may be empty.
type SourceMeta struct {
	Source    string   `json:"source"`
	FileType  FileType `json:"file_type"`
	Title     string   `json:"title"`
	PageStart int      `json:"page_start,omitempty"`
	PageEnd   int      `json:"page_end,omitempty"`
	CourseID  string   `json:"course_id,omitempty"`
}

// Chunk is an immutable unit of retrievable text. The ID is deterministic
// (source stem + file type + sequence index) so that re-ingesting the same
// document with the same settings reproduces identical IDs.
type Chunk struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Index     int        `json:"index"`
	Meta      SourceMeta `json:"metadata"`
	Embedding []float32  `json:"-"`
}

// ScoredChunk is a chunk paired with its similarity score as returned by a
// VectorIndex. Score is cosine-derived, in [0, 1]; higher is more relevant.
// Embedding is populated so re-rankers never have to re-embed.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// RetrievedResult is a query-scoped, scored copy of a chunk. It is
// constructed per query and never persisted.
type RetrievedResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// Mode is the terminal state of the grounding decision for one query.
type Mode int

const (
	// ModeGrounded constrains answer generation to retrieved evidence.
	ModeGrounded Mode = iota
	// ModeFallback generates with no retrieved context; downstream output
	// must be labeled as ungrounded.
	ModeFallback
	// ModeChitchat handles casual conversation (greetings, thanks) without
	// touching the index at all.
	ModeChitchat
)

func (m Mode) String() string {
	switch m {
	case ModeGrounded:
		return "grounded"
	case ModeFallback:
		return "fallback"
	case ModeChitchat:
		return "chitchat"
	default:
		return "unknown"
	}
}

// Reason explains why a query fell back. ReasonNone accompanies grounded
// and chitchat modes.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoChunks
	ReasonLowScores
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoChunks:
		return "no_chunks"
	case ReasonLowScores:
		return "low_scores"
	default:
		return "unknown"
	}
}

// GroundingDecision records the mode chosen for a query and why. It is a
// pure function of the retrieved score distribution and the configured
// threshold, re-derivable from logged scores.
type GroundingDecision struct {
	Mode     Mode    `json:"mode"`
	Reason   Reason  `json:"reason"`
	MaxScore float32 `json:"max_score"`
}

// Timing holds per-stage wall-clock durations for one query, in seconds.
type Timing struct {
	Total      float64 `json:"total"`
	Retrieval  float64 `json:"retrieval"`
	Generation float64 `json:"generation"`
}

// Answer is the complete response to one query: the generated text, the
// evidence it was (or was not) grounded in, and enough metadata for an
// operator to diagnose why a query fell back.
type Answer struct {
	Text      string            `json:"text"`
	Sources   []RetrievedResult `json:"sources"`
	Citations []Citation        `json:"citations"`
	Decision  GroundingDecision `json:"decision"`
	Scores    []float32         `json:"scores"`
	Timing    Timing            `json:"timing"`
}

// --- LLM protocol types ---

type ChatMessage struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
