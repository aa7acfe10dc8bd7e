// Package ingest extracts, normalizes, chunks, and embeds documents into a
// lectern.VectorIndex. One extractor per file format, dispatched by
// extension via a registry; chunking is token-aware and page-tracked.
package ingest

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	hyphenBreakRe = regexp.MustCompile(`(\w+)-\n(\w+)`)
	multiSpaceRe  = regexp.MustCompile(` +`)
	multiBlankRe  = regexp.MustCompile(`\n\n+`)
	zeroWidthRe   = regexp.MustCompile("[\u200B-\u200D\uFEFF]")
)

// CleanText normalizes extracted document text: it rejoins words hyphenated
// across line breaks, collapses runs of spaces and blank lines, strips form
// feeds and zero-width characters, and applies Unicode NFC normalization so
// that visually identical text always produces identical chunk boundaries.
func CleanText(text string) string {
	text = norm.NFC.String(text)
	text = hyphenBreakRe.ReplaceAllString(text, "$1$2")
	text = strings.ReplaceAll(text, "\f", "\n")
	text = zeroWidthRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiBlankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TitleFromFilename derives a human-readable title from a file name:
// extension dropped, separators spaced, words capitalized.
func TitleFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.English).String(name)
}
