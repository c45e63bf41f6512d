package assemble

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/parser"
)

// render writes the title page, table of contents and chapters. The output
// depends only on its inputs, so unchanged sources give identical bytes.
func render(m *manifest.Manifest, chapters []*parser.Source) []byte {
	anchors := anchorSet{}
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n", m.Title)
	anchors.add(m.Title)
	if m.Subtitle != "" {
		fmt.Fprintf(&b, "\n_%s_\n", m.Subtitle)
	}

	if len(m.Prerequisites) > 0 {
		b.WriteString("\n## Prerequisites\n\n")
		anchors.add("Prerequisites")
		for _, p := range m.Prerequisites {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	b.WriteString("\n## Table of Contents\n\n")
	anchors.add("Table of Contents")

	// Anchors follow document order, so every chapter heading is
	// registered before the TOC links are written.
	links := make([]string, len(chapters))
	for i, src := range chapters {
		for j := range src.Headings {
			src.Headings[j].Anchor = anchors.add(src.Headings[j].Text)
		}
		links[i] = chapterAnchor(src)
	}
	for i, src := range chapters {
		if links[i] == "" {
			fmt.Fprintf(&b, "%d. %s\n", i+1, src.Title)
			continue
		}
		fmt.Fprintf(&b, "%d. [%s](#%s)\n", i+1, src.Title, links[i])
	}

	sep := m.Separator
	if sep == "" {
		sep = manifest.DefaultSeparator
	}
	for _, src := range chapters {
		b.WriteString(sep)
		if m.SourceHeaders {
			fmt.Fprintf(&b, "<!-- source: %s -->\n\n", src.Path)
		}
		b.WriteString(src.Markdown)
	}
	if !bytes.HasSuffix(b.Bytes(), []byte("\n")) {
		b.WriteString("\n")
	}
	return b.Bytes()
}

// chapterAnchor picks the heading a TOC entry links to: the one matching the
// chapter title, else the first level-1 heading.
func chapterAnchor(src *parser.Source) string {
	for _, h := range src.Headings {
		if h.Text == src.Title {
			return h.Anchor
		}
	}
	for _, h := range src.Headings {
		if h.Level == 1 {
			return h.Anchor
		}
	}
	return ""
}

// anchorSet hands out GitHub-style heading anchors, suffixing repeats
// with -1, -2, ...
type anchorSet map[string]int

func (s anchorSet) add(text string) string {
	base := Slugify(text)
	n := s[base]
	s[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// Slugify converts heading text into a GitHub-compatible anchor.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}
