package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading font sizes in half-points, indexed by level.
var headingSizes = [...]string{"", "40", "32", "28", "26", "24", "22"}

// DOCX writes the Markdown as a Word document. Headings become bold,
// level-sized runs; code blocks keep one paragraph per line.
func DOCX(w io.Writer, md []byte) error {
	doc := newMarkdown().Parser().Parse(text.NewReader(md))
	out := docx.New().WithDefaultTheme()

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		writeBlock(out, n, md, 0)
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func writeBlock(out *docx.Docx, n ast.Node, src []byte, depth int) {
	switch node := n.(type) {
	case *ast.Heading:
		level := min(node.Level, len(headingSizes)-1)
		out.AddParagraph().AddText(inlineText(node, src)).Bold().Size(headingSizes[level])
	case *ast.Paragraph, *ast.TextBlock:
		if t := inlineText(node, src); t != "" {
			out.AddParagraph().AddText(strings.Repeat("    ", depth) + t)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			out.AddParagraph().AddText(strings.TrimRight(string(line.Value(src)), "\r\n")).Size("18")
		}
	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if _, nested := c.(*ast.List); nested {
					writeBlock(out, c, src, depth+1)
					continue
				}
				if t := inlineText(c, src); t != "" {
					out.AddParagraph().AddText(strings.Repeat("    ", depth) + "• " + t)
				}
			}
		}
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			writeBlock(out, c, src, depth+1)
		}
	case *ast.ThematicBreak, *ast.HTMLBlock:
		// Chapter separators and comments carry no printable content.
	default:
		if t := inlineText(node, src); t != "" {
			out.AddParagraph().AddText(t)
		}
	}
}

// inlineText flattens the inline content of a block.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
