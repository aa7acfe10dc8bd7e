package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/lectern-ai/lectern"
)

func TestNewChunkerValidation(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		overlap   int
		wantField string
	}{
		{name: "zero size", size: 0, overlap: 0, wantField: "chunk_size"},
		{name: "negative overlap", size: 100, overlap: -1, wantField: "chunk_overlap"},
		{name: "overlap equals size", size: 100, overlap: 100, wantField: "chunk_overlap"},
		{name: "overlap above size", size: 100, overlap: 150, wantField: "chunk_overlap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			var cfgErr *lectern.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}

	if _, err := NewChunker(500, 50); err != nil {
		t.Errorf("valid settings rejected: %v", err)
	}
}

func TestCountTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := CountTokens(tt.text); got != tt.want {
			t.Errorf("CountTokens(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestSplitEdgeCases(t *testing.T) {
	c, _ := NewChunker(100, 10)

	t.Run("empty text", func(t *testing.T) {
		if got := c.Split(""); got != nil {
			t.Errorf("Split(\"\") = %v, want nil", got)
		}
	})
	t.Run("whitespace only", func(t *testing.T) {
		if got := c.Split("   \n\t  "); got != nil {
			t.Errorf("Split(ws) = %v, want nil", got)
		}
	})
	t.Run("short text is one span", func(t *testing.T) {
		text := "a short paragraph."
		got := c.Split(text)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Start != 0 || got[0].End != len(text) {
			t.Errorf("span = %+v, want full text", got[0])
		}
	})
}

// Spans must tile the input: the first starts at 0, the last ends at
// len(text), and each span starts at or before the previous span's end
// (equality when there is no overlap).
func checkCoverage(t *testing.T, text string, spans []Span) {
	t.Helper()
	if len(spans) == 0 {
		t.Fatal("no spans")
	}
	if spans[0].Start != 0 {
		t.Errorf("first span starts at %d, want 0", spans[0].Start)
	}
	if spans[len(spans)-1].End != len(text) {
		t.Errorf("last span ends at %d, want %d", spans[len(spans)-1].End, len(text))
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].Start > spans[i-1].End {
			t.Errorf("gap between span %d (end %d) and span %d (start %d)",
				i-1, spans[i-1].End, i, spans[i].Start)
		}
		if spans[i].End <= spans[i-1].End {
			t.Errorf("span %d does not advance past span %d", i, i-1)
		}
	}
}

func TestSplitCoverage(t *testing.T) {
	texts := map[string]string{
		"paragraphs": strings.Repeat("First paragraph about lambda calculus.\n\nSecond paragraph about type inference and unification in some depth.\n\n", 20),
		"long lines": strings.Repeat("one long line without paragraph breaks that keeps going for a while\n", 40),
		"sentences":  strings.Repeat("This is a sentence. Here is another one! Is this a question? Yes. ", 40),
		"no breaks":  strings.Repeat("word ", 500),
		"wall":       strings.Repeat("x", 3000),
	}
	c, err := NewChunker(100, 10)
	if err != nil {
		t.Fatal(err)
	}
	for name, text := range texts {
		t.Run(name, func(t *testing.T) {
			spans := c.Split(text)
			checkCoverage(t, text, spans)
			for i, s := range spans {
				if s.End-s.Start > 100*4 {
					t.Errorf("span %d is %d bytes, over the limit", i, s.End-s.Start)
				}
			}
		})
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("Sentences repeat here. Some are short. Others go on a bit longer than the rest do.\n\n", 30)
	c, _ := NewChunker(80, 8)
	first := c.Split(text)
	for i := 0; i < 5; i++ {
		again := c.Split(text)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d spans, first run %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("span %d differs: %+v vs %+v", j, again[j], first[j])
			}
		}
	}
}

func TestSplitOverlap(t *testing.T) {
	text := strings.Repeat("Alpha beta gamma delta. ", 100)
	c, _ := NewChunker(50, 10)
	spans := c.Split(text)
	if len(spans) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(spans))
	}
	for i := 1; i < len(spans); i++ {
		overlap := spans[i-1].End - spans[i].Start
		if overlap < 0 {
			t.Errorf("spans %d and %d have a gap", i-1, i)
		}
		if overlap > 10*4 {
			t.Errorf("overlap %d bytes exceeds budget", overlap)
		}
	}
}

func TestSentenceCutsRespectAbbreviations(t *testing.T) {
	text := "See Dr. Smith for details. The exam covers chapter 3.14 topics. Done."
	cuts := sentenceCuts(text, Span{Start: 0, End: len(text)})
	for _, cut := range cuts {
		// No cut may land right after "Dr." or inside "3.14".
		before := text[:cut]
		if strings.HasSuffix(strings.TrimRight(before, " "), "Dr.") {
			t.Errorf("cut after abbreviation at %d", cut)
		}
		if strings.HasSuffix(before, "3.") {
			t.Errorf("cut inside decimal at %d", cut)
		}
	}
	if len(cuts) == 0 {
		t.Error("no sentence cuts found")
	}
}

func TestHardCutsRuneSafe(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 100)
	spans := hardCuts(text, Span{Start: 0, End: len(text)}, 50)
	for i, s := range spans {
		if !strings.HasPrefix(text[s.Start:], string([]rune(text[s.Start:])[0:1])) {
			t.Errorf("span %d starts mid-rune", i)
		}
		for _, r := range text[s.Start:s.End] {
			if r == '�' {
				t.Fatalf("span %d contains a broken rune", i)
			}
		}
	}
	checkCoverage(t, text, spans)
}

func TestChunkTextsMatchSpans(t *testing.T) {
	text := strings.Repeat("Some sentence content here. ", 60)
	c, _ := NewChunker(40, 5)
	spans := c.Split(text)
	chunks := c.Chunk(text)
	if len(spans) != len(chunks) {
		t.Fatalf("spans %d != chunks %d", len(spans), len(chunks))
	}
	for i := range spans {
		if chunks[i] != text[spans[i].Start:spans[i].End] {
			t.Errorf("chunk %d text does not match its span", i)
		}
	}
}
