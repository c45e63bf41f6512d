// Package export renders a combined book into publishable formats.
package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"
)

// Format is an export target.
type Format string

const (
	FormatHTML Format = "html"
	FormatDOCX Format = "docx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHTML, FormatDOCX:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (want html or docx)", s)
}

// Path swaps the extension of the combined Markdown file for format's.
func Path(outputPath string, format Format) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "." + string(format)
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// HTMLFragment renders Markdown to an HTML fragment.
func HTMLFragment(md []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := newMarkdown().Convert(md, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// HTML renders Markdown as a standalone HTML page.
func HTML(title string, md []byte) ([]byte, error) {
	body, err := HTMLFragment(md)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", xhtml.EscapeString(title))
	buf.WriteString(pageStyle)
	buf.WriteString("</head>\n<body>\n<main>\n")
	buf.Write(body)
	buf.WriteString("</main>\n</body>\n</html>\n")
	return buf.Bytes(), nil
}

const pageStyle = `<style>
main { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; }
pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; }
code { font-family: ui-monospace, monospace; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
</style>
`
