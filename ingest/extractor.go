package ingest

import (
	"strings"

	"github.com/lectern-ai/lectern"
)

// PageRange marks the byte range in ExtractResult.Text drawn from a single
// page. Page numbers are 1-indexed. Only paginated formats populate these;
// the ingestor uses them to compute each chunk's page span from its split
// positions rather than inferring pages afterwards.
type PageRange struct {
	Page  int
	Start int
	End   int
}

// ExtractResult holds extracted plain text and optional page metadata.
type ExtractResult struct {
	Text  string
	Pages []PageRange
}

// Extractor converts raw file content to normalized plain text.
type Extractor interface {
	Extract(content []byte) (ExtractResult, error)
}

// Registry maps file extensions to extractors and file types. The zero
// value is unusable; use NewRegistry.
type Registry struct {
	byExt map[string]registration
}

type registration struct {
	extractor Extractor
	fileType  lectern.FileType
}

// NewRegistry creates a Registry with the built-in extractors registered:
// pdf, srt, txt, md/markdown, and html/htm.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]registration)}
	r.Register("pdf", lectern.FileTypePDF, NewPDFExtractor())
	r.Register("srt", lectern.FileTypeSRT, SRTExtractor{})
	r.Register("txt", lectern.FileTypeTxt, PlainTextExtractor{})
	r.Register("md", lectern.FileTypeMarkdown, MarkdownExtractor{})
	r.Register("markdown", lectern.FileTypeMarkdown, MarkdownExtractor{})
	r.Register("html", lectern.FileTypeHTML, HTMLExtractor{})
	r.Register("htm", lectern.FileTypeHTML, HTMLExtractor{})
	return r
}

// Register adds or replaces the extractor for an extension (no dot,
// case-insensitive).
func (r *Registry) Register(ext string, ft lectern.FileType, e Extractor) {
	r.byExt[strings.ToLower(ext)] = registration{extractor: e, fileType: ft}
}

// Lookup returns the extractor and file type for an extension, or false
// when the extension is unsupported.
func (r *Registry) Lookup(ext string) (Extractor, lectern.FileType, bool) {
	reg, ok := r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	if !ok {
		return nil, "", false
	}
	return reg.extractor, reg.fileType, true
}

// Extensions returns the registered extensions, unordered.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	return out
}

// PlainTextExtractor returns content as-is, cleaned.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(content []byte) (ExtractResult, error) {
	return ExtractResult{Text: CleanText(string(content))}, nil
}

// pageSpanFor returns the 1-indexed page range covering the byte span s,
// or zeros when no page metadata exists.
func pageSpanFor(pages []PageRange, s Span) (int, int) {
	if len(pages) == 0 {
		return 0, 0
	}
	start, end := 0, 0
	for _, p := range pages {
		if p.End > s.Start && p.Start < s.End {
			if start == 0 {
				start = p.Page
			}
			end = p.Page
		}
	}
	if start == 0 {
		// Span falls in separator territory; attribute it to the nearest
		// preceding page.
		for _, p := range pages {
			if p.Start <= s.Start {
				start, end = p.Page, p.Page
			}
		}
	}
	return start, end
}
