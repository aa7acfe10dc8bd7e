package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lectern-ai/lectern"
)

// Span marks a half-open byte range [Start, End) in the source text.
type Span struct {
	Start int
	End   int
}

// CountTokens estimates the token count of text. Tokens are approximated as
// four characters, the same estimate the embedding side assumes, so
// chunking and query embedding agree on what "chunk_size tokens" means.
func CountTokens(text string) int {
	return (len(text) + 3) / 4
}

// Chunker splits normalized text into overlapping token-bounded spans.
// Splitting prefers paragraph boundaries, then line breaks, then sentence
// boundaries (abbreviation and decimal aware), then word boundaries, with a
// hard cut as the last resort. Identical input and settings always yield
// byte-identical spans.
type Chunker struct {
	maxChars     int
	overlapChars int
}

// NewChunker creates a Chunker for the given chunk size and overlap, both
// in tokens. An overlap at or above the chunk size is a configuration
// error, rejected here rather than at ingestion time.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, &lectern.ConfigError{Field: "chunk_size", Message: "must be > 0"}
	}
	if chunkOverlap < 0 {
		return nil, &lectern.ConfigError{Field: "chunk_overlap", Message: "must be >= 0"}
	}
	if chunkOverlap >= chunkSize {
		return nil, &lectern.ConfigError{Field: "chunk_overlap", Message: "must be < chunk_size"}
	}
	return &Chunker{
		maxChars:     chunkSize * 4,
		overlapChars: chunkOverlap * 4,
	}, nil
}

// Split returns the chunk spans for text. Spans cover the input with no
// gaps: each span starts at or before the previous span's end, and
// concatenating the non-overlapping regions reconstructs the input exactly.
// Empty or whitespace-only text yields no spans; text within the chunk
// size yields exactly one.
func (c *Chunker) Split(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= c.maxChars {
		return []Span{{Start: 0, End: len(text)}}
	}
	segments := segmentSpans(text, Span{Start: 0, End: len(text)}, c.maxChars, 0)
	return mergeSpans(segments, c.maxChars, c.overlapChars)
}

// Chunk returns the chunk texts for text.
func (c *Chunker) Chunk(text string) []string {
	spans := c.Split(text)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = text[s.Start:s.End]
	}
	return out
}

// Split levels, coarsest first. Each level is only consulted when the
// previous one produced no usable cut inside an oversized span.
const (
	levelParagraph = iota
	levelLine
	levelSentence
	levelWord
	levelHard
)

// segmentSpans recursively splits s into spans of at most maxChars bytes
// that tile s exactly.
func segmentSpans(text string, s Span, maxChars, level int) []Span {
	if s.End-s.Start <= maxChars {
		return []Span{s}
	}

	var cuts []int
	switch level {
	case levelParagraph:
		cuts = separatorCuts(text, s, "\n\n")
	case levelLine:
		cuts = separatorCuts(text, s, "\n")
	case levelSentence:
		cuts = sentenceCuts(text, s)
	case levelWord:
		cuts = wordCuts(text, s)
	default:
		return hardCuts(text, s, maxChars)
	}

	if len(cuts) == 0 {
		return segmentSpans(text, s, maxChars, level+1)
	}

	var out []Span
	start := s.Start
	for _, cut := range cuts {
		piece := Span{Start: start, End: cut}
		if piece.End-piece.Start > maxChars {
			out = append(out, segmentSpans(text, piece, maxChars, level+1)...)
		} else {
			out = append(out, piece)
		}
		start = cut
	}
	last := Span{Start: start, End: s.End}
	if last.End-last.Start > maxChars {
		out = append(out, segmentSpans(text, last, maxChars, level+1)...)
	} else if last.End > last.Start {
		out = append(out, last)
	}
	return out
}

// separatorCuts returns cut positions after each occurrence of sep strictly
// inside s. The separator stays attached to the preceding piece so the
// pieces tile the span.
func separatorCuts(text string, s Span, sep string) []int {
	var cuts []int
	from := s.Start
	for {
		i := strings.Index(text[from:s.End], sep)
		if i < 0 {
			break
		}
		cut := from + i + len(sep)
		if cut >= s.End {
			break
		}
		cuts = append(cuts, cut)
		from = cut
	}
	return cuts
}

// wordCuts returns cut positions after each run of spaces inside s.
func wordCuts(text string, s Span) []int {
	var cuts []int
	inSpace := false
	for i := s.Start; i < s.End; i++ {
		if text[i] == ' ' || text[i] == '\t' {
			inSpace = true
			continue
		}
		if inSpace && i > s.Start {
			cuts = append(cuts, i)
		}
		inSpace = false
	}
	return cuts
}

// hardCuts splits s at rune boundaries every maxChars bytes. Last resort
// for text with no separators at all.
func hardCuts(text string, s Span, maxChars int) []Span {
	var out []Span
	start := s.Start
	for start < s.End {
		end := start + maxChars
		if end >= s.End {
			end = s.End
		} else {
			// Back up to a rune boundary.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				end = start + maxChars
			}
		}
		out = append(out, Span{Start: start, End: end})
		start = end
	}
	return out
}

// abbreviations that should NOT be treated as sentence boundaries.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true,
	"prof": true, "sr": true, "jr": true,
	"vs": true, "etc": true, "inc": true, "ltd": true,
	"e.g": true, "i.e": true, "viz": true, "al": true,
	"approx": true, "dept": true, "est": true,
	"fig": true, "no": true, "vol": true,
}

// isAbbreviation checks if the text ending at the '.' at dotPos is a common
// abbreviation.
func isAbbreviation(text string, dotPos int) bool {
	start := dotPos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) && r != '.' {
			break
		}
		start -= size
	}
	word := strings.ToLower(text[start:dotPos])
	return abbreviations[word]
}

// isDecimalDot checks if the dot at dotPos is part of a number (e.g. 3.14).
func isDecimalDot(text string, dotPos int) bool {
	if dotPos == 0 || dotPos+1 >= len(text) {
		return false
	}
	prev := text[dotPos-1]
	next := text[dotPos+1]
	return prev >= '0' && prev <= '9' && next >= '0' && next <= '9'
}

// sentenceCuts returns cut positions after sentence-ending punctuation
// inside s. Handles ASCII .!? with abbreviation and decimal awareness plus
// CJK sentence-ending punctuation.
func sentenceCuts(text string, s Span) []int {
	var cuts []int
	i := s.Start
	for i < s.End {
		r, size := utf8.DecodeRuneInString(text[i:s.End])

		if r == '。' || r == '！' || r == '？' {
			if i+size < s.End {
				cuts = append(cuts, i+size)
			}
			i += size
			continue
		}

		if r != '.' && r != '!' && r != '?' {
			i += size
			continue
		}
		if r == '.' && (isDecimalDot(text, i) || isAbbreviation(text, i)) {
			i += size
			continue
		}

		// Consume trailing punctuation and one following space so the cut
		// lands at the start of the next sentence.
		end := i + size
		for end < s.End && (text[end] == '.' || text[end] == '!' || text[end] == '?' || text[end] == '"' || text[end] == '\'') {
			end++
		}
		if end < s.End && (text[end] == ' ' || text[end] == '\n') {
			end++
		}
		if end < s.End {
			cuts = append(cuts, end)
		}
		i = end
	}
	return cuts
}

// mergeSpans packs consecutive segments into chunk spans of at most
// maxChars bytes, carrying up to overlapChars bytes of trailing segments
// into the next chunk for context continuity. The first chunk has no
// leading overlap and the last may be short.
func mergeSpans(segments []Span, maxChars, overlapChars int) []Span {
	if len(segments) == 0 {
		return nil
	}

	var chunks []Span
	cur := []Span{}

	for _, seg := range segments {
		if len(cur) > 0 && seg.End-cur[0].Start > maxChars {
			chunks = append(chunks, Span{Start: cur[0].Start, End: cur[len(cur)-1].End})

			// Carry trailing segments as overlap, as long as they stay
			// within the overlap budget and leave room for seg.
			var tail []Span
			lastEnd := cur[len(cur)-1].End
			for i := len(cur) - 1; i >= 0; i-- {
				if lastEnd-cur[i].Start > overlapChars {
					break
				}
				if seg.End-cur[i].Start > maxChars {
					break
				}
				tail = cur[i:]
			}
			cur = append([]Span(nil), tail...)
		}
		cur = append(cur, seg)
	}

	if len(cur) > 0 {
		last := Span{Start: cur[0].Start, End: cur[len(cur)-1].End}
		// Drop a trailing chunk that adds nothing beyond the overlap it
		// carried over.
		if len(chunks) == 0 || last.End > chunks[len(chunks)-1].End {
			chunks = append(chunks, last)
		}
	}
	return chunks
}
