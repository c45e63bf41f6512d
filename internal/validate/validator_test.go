package validate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/textstat"
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
	m := &manifest.Manifest{Title: "Book", Output: "out.md"}
	for _, p := range paths {
		m.Chapters = append(m.Chapters, manifest.Chapter{Path: p})
	}
	return m
}

func TestRun_AllPresent(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"a.md":          "# Alpha\n\nHello there.\n",
		"b.md":          "World",
		"chapters/c.md": "```rust\nfn main() {}\n```\n",
	}
	writeFiles(t, root, files)

	r, err := New(root, Options{WordsPerMinute: 2}, nil).Run(context.Background(), bookOf("a.md", "b.md", "chapters/c.md"))
	require.NoError(t, err)

	assert.True(t, r.Passed)
	assert.Equal(t, 3, r.FilesChecked)
	assert.Equal(t, 3, r.FilesFound)
	assert.Empty(t, r.Missing)
	assert.Empty(t, r.Empty)
	assert.Empty(t, r.Failures())

	// Cross-check against independent per-file counts.
	want := 0
	for _, content := range files {
		want += textstat.CountWordsString(content)
	}
	assert.Equal(t, want, r.TotalWords)
	assert.Equal(t, 10, r.TotalWords)
	assert.Equal(t, 5, r.ReadingMinutes)
}

func TestRun_MissingFileNamed(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello", "b.md": "World"})
	require.NoError(t, os.Remove(filepath.Join(root, "b.md")))

	r, err := New(root, Options{}, nil).Run(context.Background(), bookOf("a.md", "b.md"))
	require.NoError(t, err)

	assert.False(t, r.Passed)
	assert.Equal(t, []string{"b.md"}, r.Missing)
	assert.Empty(t, r.Empty)
	assert.Equal(t, 1, r.TotalWords)
}

func TestRun_ReportsEveryFailure(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"ok.md":     "content",
		"empty.md":  "",
		"blank.md":  "  \n\n\t\n",
		"later.md":  "more content",
		"notes.rst": "unsupported",
	})

	m := bookOf("ok.md", "gone-1.md", "empty.md", "gone-2.md", "blank.md", "later.md", "notes.rst")
	r, err := New(root, Options{}, nil).Run(context.Background(), m)
	require.NoError(t, err)

	assert.False(t, r.Passed)
	assert.Equal(t, []string{"gone-1.md", "gone-2.md"}, r.Missing)
	assert.Equal(t, []string{"empty.md", "blank.md"}, r.Empty)
	assert.Equal(t, []string{"notes.rst"}, r.Unreadable)

	failures := r.Failures()
	require.Len(t, failures, 5)
	assert.Equal(t, "gone-1.md", failures[0].Path)
	assert.Equal(t, StatusMissing, failures[0].Status)
	assert.Equal(t, StatusEmpty, failures[1].Status)
	assert.Equal(t, 3, r.TotalWords)
}

func TestRun_OptionalChapterSkipped(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello"})
	m := bookOf("a.md")
	m.Chapters = append(m.Chapters, manifest.Chapter{Path: "extras.md", Optional: true})

	r, err := New(root, Options{}, nil).Run(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, r.Passed)
	require.Len(t, r.Files, 2)
	assert.Equal(t, StatusSkipped, r.Files[1].Status)
}

func TestRun_Orphans(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.md":              "Hello",
		"drafts/idea.md":    "Unlisted",
		"notes.markdown":    "Unlisted too",
		"out.md":            "previous build",
		".github/issue.md":  "hidden",
		"node_modules/x.md": "vendored",
		"image.png":         "not markdown",
	})

	r, err := New(root, Options{CheckOrphans: true}, nil).Run(context.Background(), bookOf("a.md"))
	require.NoError(t, err)

	assert.True(t, r.Passed, "orphans are warnings only")
	assert.Equal(t, []string{"drafts/idea.md", "notes.markdown"}, r.Orphans)
}

func TestRun_OrphansDisabled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.md": "Hello", "stray.md": "x"})

	r, err := New(root, Options{}, nil).Run(context.Background(), bookOf("a.md"))
	require.NoError(t, err)
	assert.Empty(t, r.Orphans)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(t.TempDir(), Options{}, nil).Run(ctx, bookOf("a.md"))
	assert.ErrorIs(t, err, context.Canceled)
}
