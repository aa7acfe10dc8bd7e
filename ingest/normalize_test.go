package ingest

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rejoins hyphenated line breaks",
			in:   "func-\ntional programming",
			want: "functional programming",
		},
		{
			name: "collapses space runs",
			in:   "too    many   spaces",
			want: "too many spaces",
		},
		{
			name: "collapses blank line runs",
			in:   "para one\n\n\n\n\npara two",
			want: "para one\n\npara two",
		},
		{
			name: "strips form feeds",
			in:   "page one\fpage two",
			want: "page one\npage two",
		},
		{
			name: "strips zero-width characters",
			in:   "invis\u200Bible\u200D text\uFEFF",
			want: "invisible text",
		},
		{
			name: "trims surrounding whitespace",
			in:   "  \n body \n ",
			want: "body",
		},
		{
			name: "empty stays empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanTextNFC(t *testing.T) {
	// e followed by combining acute accent must normalize to the composed
	// form so identical-looking text chunks identically.
	decomposed := "café"
	composed := "café"
	if got := CleanText(decomposed); got != composed {
		t.Errorf("CleanText(%q) = %q, want %q", decomposed, got, composed)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lecture_7_vectors.pdf", "Lecture 7 Vectors"},
		{"week-2-intro.srt", "Week 2 Intro"},
		{"cs101/notes/syllabus.md", "Syllabus"},
		{"README.txt", "Readme"},
		{"already spaced.html", "Already Spaced"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TitleFromFilename(tt.in); got != tt.want {
				t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
