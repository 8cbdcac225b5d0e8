package source

import (
	"bytes"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// openMarkdown parses Markdown with goldmark. Headings become synthetic
// heading lines, fenced and indented code blocks come out in code font,
// and inline code spans keep their backticks so command extraction still
// sees them.
func openMarkdown(r io.Reader) (Source, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	b := newDocBuilder()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			b.heading(node.Level, string(node.Text(src)))
		case *ast.FencedCodeBlock:
			b.code(blockLines(node, src))
		case *ast.CodeBlock:
			b.code(blockLines(node, src))
		default:
			if t := inlineText(n, src); t != "" {
				b.body(t)
			}
		}
	}
	return b.build(), nil
}

// blockLines joins the raw source lines of a block node.
func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

// inlineText flattens a node to plain text. Code spans are re-wrapped in
// backticks.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		return blockLines(n, src)
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Value(src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.CodeSpan:
			buf.WriteByte('`')
			buf.WriteString(string(node.Text(src)))
			buf.WriteByte('`')
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
