package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

// MarkdownExtractor converts markdown to plain text by walking the goldmark
// AST: headings and paragraphs become their text content on separate lines,
// code blocks keep their literal text, and link targets, emphasis markers,
// and other formatting are dropped.
type MarkdownExtractor struct{}

func (MarkdownExtractor) Extract(content []byte) (ExtractResult, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gmtext.NewReader(content))

	var b strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.CodeBlock:
			writeCodeLines(&b, node.BaseBlock, content)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			writeCodeLines(&b, node.BaseBlock, content)
			return ast.WalkSkipChildren, nil
		case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return ExtractResult{}, err
	}
	return ExtractResult{Text: CleanText(b.String())}, nil
}

func writeCodeLines(b *strings.Builder, block ast.BaseBlock, source []byte) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
}
