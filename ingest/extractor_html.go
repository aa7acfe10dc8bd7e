package ingest

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

var (
	htmlScriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	htmlTagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
)

// HTMLExtractor pulls readable article text out of an HTML document using
// readability. Pages without a recognizable article body fall back to a
// plain tag strip so boilerplate-free fragments still ingest.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(content []byte) (ExtractResult, error) {
	base := &url.URL{Scheme: "file", Path: "/"}
	article, err := readability.FromReader(bytes.NewReader(content), base)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return ExtractResult{Text: CleanText(article.TextContent)}, nil
	}
	return ExtractResult{Text: CleanText(stripTags(string(content)))}, nil
}

func stripTags(html string) string {
	html = htmlScriptRe.ReplaceAllString(html, " ")
	html = htmlTagRe.ReplaceAllString(html, " ")
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&amp;", "&")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&quot;", `"`)
	html = strings.ReplaceAll(html, "&#39;", "'")
	return html
}
