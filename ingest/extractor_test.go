package ingest

import (
	"sort"
	"strings"
	"testing"

	"github.com/lectern-ai/lectern"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		ext    string
		wantFT lectern.FileType
		wantOK bool
	}{
		{"pdf", lectern.FileTypePDF, true},
		{".pdf", lectern.FileTypePDF, true},
		{"PDF", lectern.FileTypePDF, true},
		{"srt", lectern.FileTypeSRT, true},
		{"txt", lectern.FileTypeTxt, true},
		{"md", lectern.FileTypeMarkdown, true},
		{"markdown", lectern.FileTypeMarkdown, true},
		{"html", lectern.FileTypeHTML, true},
		{"htm", lectern.FileTypeHTML, true},
		{"docx", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			_, ft, ok := r.Lookup(tt.ext)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ft != tt.wantFT {
				t.Errorf("ft = %q, want %q", ft, tt.wantFT)
			}
		})
	}
}

func TestRegistryRegisterOverride(t *testing.T) {
	r := NewRegistry()
	r.Register("log", lectern.FileTypeTxt, PlainTextExtractor{})
	if _, ft, ok := r.Lookup("log"); !ok || ft != lectern.FileTypeTxt {
		t.Errorf("custom extension not registered: ok=%v ft=%q", ok, ft)
	}

	exts := r.Extensions()
	sort.Strings(exts)
	found := false
	for _, e := range exts {
		if e == "log" {
			found = true
		}
	}
	if !found {
		t.Errorf("Extensions() missing log: %v", exts)
	}
}

func TestPageSpanFor(t *testing.T) {
	pages := []PageRange{
		{Page: 1, Start: 0, End: 100},
		{Page: 2, Start: 102, End: 250},
		{Page: 3, Start: 252, End: 400},
	}
	tests := []struct {
		name      string
		span      Span
		wantStart int
		wantEnd   int
	}{
		{name: "inside one page", span: Span{Start: 10, End: 90}, wantStart: 1, wantEnd: 1},
		{name: "crosses a page boundary", span: Span{Start: 80, End: 150}, wantStart: 1, wantEnd: 2},
		{name: "spans all pages", span: Span{Start: 0, End: 400}, wantStart: 1, wantEnd: 3},
		{name: "in separator gap attributes to preceding page", span: Span{Start: 100, End: 102}, wantStart: 1, wantEnd: 1},
		{name: "no page metadata", span: Span{Start: 0, End: 50}, wantStart: 0, wantEnd: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := pages
			if tt.name == "no page metadata" {
				ps = nil
			}
			start, end := pageSpanFor(ps, tt.span)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("pageSpanFor = %d-%d, want %d-%d", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPlainTextExtractor(t *testing.T) {
	got, err := PlainTextExtractor{}.Extract([]byte("  some   text\n\n\n\nhere  "))
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "some text\n\nhere" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Pages != nil {
		t.Errorf("plain text should carry no page metadata, got %v", got.Pages)
	}
}

func TestSRTExtractor(t *testing.T) {
	srt := strings.Join([]string{
		"1",
		"00:00:01,000 --> 00:00:04,000",
		"Welcome to the <i>functional programming</i> course.",
		"",
		"2",
		"00:00:04,500 --> 00:00:08,000",
		"[MUSIC] Today we cover lambda calculus.",
		"",
		"3",
		"00:00:08,500 --> 00:00:10,000",
		"(Professor:) Let's begin.",
		"",
		"not a cue block",
	}, "\n")

	got, err := SRTExtractor{}.Extract([]byte(srt))
	if err != nil {
		t.Fatal(err)
	}
	want := "Welcome to the functional programming course. Today we cover lambda calculus. Let's begin."
	if got.Text != want {
		t.Errorf("Text = %q\nwant   %q", got.Text, want)
	}
}

func TestSRTExtractorWindowsLineEndings(t *testing.T) {
	srt := "1\r\n00:00:01,000 --> 00:00:02,000\r\nHello world.\r\n"
	got, err := SRTExtractor{}.Extract([]byte(srt))
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "Hello world." {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestSRTExtractorEmpty(t *testing.T) {
	got, err := SRTExtractor{}.Extract([]byte(""))
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "" {
		t.Errorf("Text = %q, want empty", got.Text)
	}
}

func TestMarkdownExtractor(t *testing.T) {
	md := "# Type Systems\n\nStatic typing catches errors *early*.\n\n```go\nfunc id(x int) int { return x }\n```\n\n- first point\n- second point\n"
	got, err := MarkdownExtractor{}.Extract([]byte(md))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Type Systems",
		"Static typing catches errors early.",
		"func id(x int) int { return x }",
		"first point",
	} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("Text missing %q:\n%s", want, got.Text)
		}
	}
	if strings.Contains(got.Text, "# ") || strings.Contains(got.Text, "```") {
		t.Errorf("markup leaked into text:\n%s", got.Text)
	}
	if strings.Contains(got.Text, "*early*") {
		t.Errorf("emphasis markers not stripped:\n%s", got.Text)
	}
}

func TestHTMLExtractorFallback(t *testing.T) {
	// A bare fragment has no readable article, so the extractor falls back
	// to a tag strip.
	html := `<div><script>var x = 1;</script><p>Course policies &amp; grading.</p></div>`
	got, err := HTMLExtractor{}.Extract([]byte(html))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got.Text, "Course policies & grading.") {
		t.Errorf("Text = %q", got.Text)
	}
	if strings.Contains(got.Text, "var x") {
		t.Errorf("script content leaked: %q", got.Text)
	}
}
