package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var _ Extractor = (*PDFExtractor)(nil)

// PDFExtractor extracts text from PDF documents page by page, recording the
// byte range each page occupies in the joined text so chunks can carry page
// citations.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

func (PDFExtractor) Extract(content []byte) (ExtractResult, error) {
	if len(content) == 0 {
		return ExtractResult{}, fmt.Errorf("empty pdf content")
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ExtractResult{}, fmt.Errorf("open pdf: %w", err)
	}

	var text strings.Builder
	var pages []PageRange
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		raw, err := page.GetPlainText(nil)
		if err != nil {
			// Pages with broken content streams are skipped rather
			// than failing the whole document.
			continue
		}
		cleaned := CleanText(raw)
		if cleaned == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		start := text.Len()
		text.WriteString(cleaned)
		pages = append(pages, PageRange{
			Page:  i,
			Start: start,
			End:   text.Len(),
		})
	}
	return ExtractResult{Text: text.String(), Pages: pages}, nil
}
