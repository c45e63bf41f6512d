package assemble

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func bookOf(paths ...string) *manifest.Manifest {
	m := &manifest.Manifest{Title: "Book", Output: "out.md", Separator: manifest.DefaultSeparator}
	for _, p := range paths {
		m.Chapters = append(m.Chapters, manifest.Chapter{Path: p})
	}
	return m
}

func TestBuild_HelloBeforeWorld(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello", "b.md": "World"})

	res, err := New(root, Options{}, nil).Build(context.Background(), bookOf("a.md", "b.md"))
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(root, "out.md"))
	require.NoError(t, err)
	hello := strings.Index(string(out), "Hello")
	world := strings.Index(string(out), "World")
	require.GreaterOrEqual(t, hello, 0)
	assert.Greater(t, world, hello)

	assert.Equal(t, filepath.Join(root, "out.md"), res.OutputPath)
	assert.Equal(t, 2, res.Chapters)
	assert.Equal(t, 2, res.Words)
	assert.Equal(t, len(out), res.Bytes)
	assert.Equal(t, Digest(out), res.SHA256)
}

func TestRender_ExactLayout(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "# Alpha\n\nHello\n", "b.md": "World"})

	book, err := New(root, Options{}, nil).Render(context.Background(), bookOf("a.md", "b.md"))
	require.NoError(t, err)

	want := "# Book\n" +
		"\n## Table of Contents\n\n" +
		"1. [Alpha](#alpha)\n" +
		"2. b\n" +
		"\n\n---\n\n" +
		"# Alpha\n\nHello\n" +
		"\n\n---\n\n" +
		"World\n"
	assert.Equal(t, want, string(book.Markdown))
}

func TestRender_ChaptersAreContiguousAndOrdered(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"README.md":          "# Preface\n\nWhy this book exists.\n",
		"chapter-01.md":      "# Getting Started\n\n```rust\n#[ink::contract]\nmod flipper {}\n```\n",
		"chapters/events.md": "---\ntitle: Events\n---\n# Events\n\nEmit them.\n",
		"appendix.md":        "# Appendix\n\n| a | b |\n|---|---|\n| 1 | 2 |\n",
	}
	writeFiles(t, root, files)
	order := []string{"README.md", "chapter-01.md", "chapters/events.md", "appendix.md"}

	book, err := New(root, Options{Concurrency: 2}, nil).Render(context.Background(), bookOf(order...))
	require.NoError(t, err)

	out := string(book.Markdown)
	last := -1
	for _, name := range order {
		idx := strings.Index(out, files[name])
		require.GreaterOrEqual(t, idx, 0, "chapter %s not found verbatim", name)
		assert.Greater(t, idx, last, "chapter %s out of order", name)
		last = idx
	}
}

func TestBuild_MissingFilesNamedAndNothingWritten(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello"})

	_, err := New(root, Options{}, nil).Build(context.Background(), bookOf("a.md", "b.md", "c.md"))
	require.Error(t, err)

	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"b.md", "c.md"}, incomplete.Missing)
	assert.Empty(t, incomplete.Empty)
	assert.Contains(t, err.Error(), "b.md, c.md")

	_, statErr := os.Stat(filepath.Join(root, "out.md"))
	assert.True(t, os.IsNotExist(statErr), "output must not be written")
}

func TestBuild_DirectoryCountsAsMissing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a.md"), 0o755))

	_, err := New(root, Options{}, nil).Build(context.Background(), bookOf("a.md"))
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"a.md"}, incomplete.Missing)
}

func TestBuild_EmptyChaptersNamedAndNothingWritten(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello", "b.md": "", "d.md": " \n\t\n"})

	_, err := New(root, Options{}, nil).Build(context.Background(), bookOf("a.md", "b.md", "c.md", "d.md"))
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"c.md"}, incomplete.Missing)
	assert.Equal(t, []string{"b.md", "d.md"}, incomplete.Empty)
	assert.Equal(t, "missing required chapter file: c.md; empty chapter files: b.md, d.md", err.Error())
	assert.NoFileExists(t, filepath.Join(root, "out.md"))
}

func TestBuild_FrontMatterKeptVerbatim(t *testing.T) {
	root := t.TempDir()
	a := "---\ntitle: Intro\n---\n# Intro\n\nHello\n"
	writeFiles(t, root, map[string]string{"a.md": a, "b.md": "World"})

	res, err := New(root, Options{}, nil).Build(context.Background(), bookOf("a.md", "b.md"))
	require.NoError(t, err)
	out, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), a)
	assert.Contains(t, string(out), "1. [Intro](#intro)\n")
}

func TestBuild_LeadingThematicBreakChapter(t *testing.T) {
	root := t.TempDir()
	a := "---\n\nIntro paragraph.\n\n---\n\nMore text.\n"
	writeFiles(t, root, map[string]string{"a.md": a, "b.md": "World"})

	res, err := New(root, Options{}, nil).Build(context.Background(), bookOf("a.md", "b.md"))
	require.NoError(t, err)
	out, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), a)
}

func TestRender_StripFrontMatterOptIn(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "---\ntitle: Intro\n---\n# Intro\n\nHello\n"})
	m := bookOf("a.md")
	m.StripFrontMatter = true

	book, err := New(root, Options{}, nil).Render(context.Background(), m)
	require.NoError(t, err)
	assert.NotContains(t, string(book.Markdown), "title: Intro")
	assert.Contains(t, string(book.Markdown), "\n\n---\n\n# Intro\n\nHello\n")
}

func TestBuild_OptionalChapterSkipped(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello"})
	m := bookOf("a.md")
	m.Chapters = append(m.Chapters, manifest.Chapter{Path: "extras.md", Optional: true})

	res, err := New(root, Options{}, nil).Build(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chapters)
}

func TestBuild_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.md": "# Intro\n\nSame heading below.\n\n## Intro\n",
		"b.md": "# Intro\n\nDuplicate chapter title.\n",
	})
	a := New(root, Options{}, nil)
	m := bookOf("a.md", "b.md")

	first, err := a.Build(context.Background(), m)
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(first.OutputPath)
	require.NoError(t, err)

	second, err := a.Build(context.Background(), m)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(second.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, firstBytes, secondBytes)
	assert.Equal(t, first.SHA256, second.SHA256)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".bookbind-"), "temp file left behind: %s", e.Name())
	}
}

func TestRender_TableOfContentsAnchors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.md": "# Intro\n\n## Intro\n",
		"b.md": "# Intro\n",
		"c.md": "Plain text, no heading.\n",
	})
	m := bookOf("a.md", "b.md", "c.md")
	m.Subtitle = "A subtitle"
	m.Prerequisites = []string{"Rust", "cargo-contract"}
	m.Chapters[2].Title = "Closing Notes"

	book, err := New(root, Options{}, nil).Render(context.Background(), m)
	require.NoError(t, err)

	out := string(book.Markdown)
	assert.Contains(t, out, "# Book\n\n_A subtitle_\n")
	assert.Contains(t, out, "## Prerequisites\n\n- Rust\n- cargo-contract\n")
	assert.Contains(t, out, "1. [Intro](#intro)\n2. [Intro](#intro-2)\n3. Closing Notes\n")

	require.Len(t, book.Chapters, 3)
	assert.Equal(t, "intro-1", book.Chapters[0].Headings[1].Anchor)
	assert.Equal(t, "Closing Notes", book.Chapters[2].Title)
}

func TestRender_SourceHeaders(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello\n"})
	m := bookOf("a.md")
	m.SourceHeaders = true

	book, err := New(root, Options{}, nil).Render(context.Background(), m)
	require.NoError(t, err)
	assert.Contains(t, string(book.Markdown), "\n\n---\n\n<!-- source: a.md -->\n\nHello\n")
}

func TestRender_NonMarkdownChapters(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"notes.txt":    "First.\n\n\nSecond.\n",
		"glossary.csv": "Term,Meaning\nDAO,Decentralized autonomous organization\n",
	})

	book, err := New(root, Options{}, nil).Render(context.Background(), bookOf("notes.txt", "glossary.csv"))
	require.NoError(t, err)

	out := string(book.Markdown)
	assert.Contains(t, out, "First.\n\nSecond.\n")
	assert.Contains(t, out, "| DAO | Decentralized autonomous organization |")
}

func TestRender_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(root, Options{}, nil).Render(ctx, bookOf("a.md"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDigest(t *testing.T) {
	// SHA-256 of "hello world" is well-known.
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", Digest([]byte("hello world")))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Digest(nil))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Mastering ink!":                  "mastering-ink",
		"Chapter 1: Introduction":         "chapter-1-introduction",
		"The #[ink(storage)] attribute":   "the-inkstorage-attribute",
		"  Table of Contents ":            "table-of-contents",
		"Cross-contract calls & proxies":  "cross-contract-calls--proxies",
		"snake_case_name":                 "snake_case_name",
		"Überblick":                       "überblick",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}
