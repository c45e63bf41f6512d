package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/dgallion1/bookbind/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown chapters. The body is kept verbatim unless
// StripFrontMatter is set. A leading block counts as front matter only when
// it decodes to a non-empty YAML or TOML mapping. Anything else, such as a
// chapter opening with a thematic break, is plain content.
type MarkdownParser struct {
	StripFrontMatter bool
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Source, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	out := &Source{Markdown: string(src)}
	if !hasFrontMatter(src) {
		return out, nil
	}

	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil || len(meta) == 0 {
		return out, nil
	}
	if title, ok := meta["title"].(string); ok {
		out.Title = strings.TrimSpace(title)
	}
	stripped := string(body)
	out.body = &stripped
	if p.StripFrontMatter {
		out.Markdown = stripped
	}
	return out, nil
}

func hasFrontMatter(src []byte) bool {
	for _, delim := range []string{"---", "+++"} {
		if bytes.HasPrefix(src, []byte(delim+"\n")) || bytes.HasPrefix(src, []byte(delim+"\r\n")) {
			return true
		}
	}
	return false
}

// Outline lists the top-level headings of a Markdown document in order.
func Outline(src []byte) []doctree.Heading {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var headings []doctree.Heading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		title := strings.TrimSpace(headingText(h, src))
		if title == "" {
			continue
		}
		headings = append(headings, doctree.Heading{Level: h.Level, Text: title})
	}
	return headings
}

// headingText gets the plain text of a heading's inline children.
func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
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
			// Recurse for emphasis, links and code spans.
			buf.WriteString(headingText(c, src))
		}
	}
	return buf.String()
}
