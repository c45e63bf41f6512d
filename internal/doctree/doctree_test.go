package doctree

import "testing"

func TestMarkdown_NestedHeadings(t *testing.T) {
	tree := &DocTree{
		Title: "Guide",
		Children: []*DocNode{
			{
				Title: "Storage",
				Text:  "Contracts keep state in storage.",
				Children: []*DocNode{
					{Title: "Mapping", Text: "Key-value storage."},
				},
			},
			{Text: "Trailing notes."},
		},
	}

	want := "# Storage\n\nContracts keep state in storage.\n\n## Mapping\n\nKey-value storage.\n\nTrailing notes.\n"
	if got := tree.Markdown(); got != want {
		t.Errorf("unexpected markdown:\n got %q\nwant %q", got, want)
	}
}

func TestMarkdown_CapsHeadingDepth(t *testing.T) {
	node := &DocNode{Title: "L7"}
	for i := 6; i >= 1; i-- {
		node = &DocNode{Title: "L" + string(rune('0'+i)), Children: []*DocNode{node}}
	}
	tree := &DocTree{Children: []*DocNode{node}}

	got := tree.Markdown()
	want := "# L1\n\n## L2\n\n### L3\n\n#### L4\n\n##### L5\n\n###### L6\n\n###### L7\n"
	if got != want {
		t.Errorf("unexpected markdown:\n got %q\nwant %q", got, want)
	}
}

func TestMarkdown_Empty(t *testing.T) {
	tree := &DocTree{Title: "empty"}
	if got := tree.Markdown(); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
