package doctree

import "strings"

// DocTree is the root of a parsed non-Markdown chapter.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Children []*DocNode // Subsections
}

// Heading is one entry of a chapter outline.
type Heading struct {
	Level  int    // 1-6
	Text   string // Heading text without markup
	Anchor string // Link target in the combined document, set by the assembler
}

// Markdown renders the tree as Markdown. A node's depth below the root
// becomes its heading level, capped at 6.
func (t *DocTree) Markdown() string {
	var sb strings.Builder
	var walk func(nodes []*DocNode, depth int)
	walk = func(nodes []*DocNode, depth int) {
		for _, n := range nodes {
			if n.Title != "" {
				writeBlock(&sb, strings.Repeat("#", min(depth, 6))+" "+n.Title)
			}
			if n.Text != "" {
				writeBlock(&sb, n.Text)
			}
			walk(n.Children, depth+1)
		}
	}
	walk(t.Children, 1)
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, block string) {
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.TrimSpace(block))
}
