// Package assemble concatenates a book's chapters, in manifest order, into a
// single Markdown document with a generated title page and table of contents.
package assemble

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/parser"
	"github.com/dgallion1/bookbind/internal/textstat"
	"golang.org/x/sync/errgroup"
)

// IncompleteError lists every required chapter that was not found and
// every chapter that holds only whitespace.
type IncompleteError struct {
	Missing []string
	Empty   []string
}

func (e *IncompleteError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required %s: %s", chapterNoun(len(e.Missing)), strings.Join(e.Missing, ", ")))
	}
	if len(e.Empty) > 0 {
		parts = append(parts, fmt.Sprintf("empty %s: %s", chapterNoun(len(e.Empty)), strings.Join(e.Empty, ", ")))
	}
	return strings.Join(parts, "; ")
}

func chapterNoun(n int) string {
	if n == 1 {
		return "chapter file"
	}
	return "chapter files"
}

// Options controls how chapters are loaded.
type Options struct {
	Parser      parser.Options
	Concurrency int // Chapters parsed in parallel.
}

// Book is an assembled document held in memory.
type Book struct {
	Markdown []byte
	Chapters []*parser.Source
	Words    int
}

// Result describes a written book.
type Result struct {
	OutputPath string `json:"output_path"`
	Bytes      int    `json:"bytes"`
	Chapters   int    `json:"chapters"`
	Words      int    `json:"words"`
	SHA256     string `json:"sha256"`
}

// Assembler builds combined documents for books rooted at one directory.
type Assembler struct {
	root string
	opts Options
	log  *slog.Logger
}

func New(root string, opts Options, log *slog.Logger) *Assembler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{root: root, opts: opts, log: log}
}

// Render assembles the book in memory. Every required chapter must exist
// and hold more than whitespace; otherwise an *IncompleteError naming all
// offending files is returned.
func (a *Assembler) Render(ctx context.Context, m *manifest.Manifest) (*Book, error) {
	opts := a.opts.Parser
	opts.StripFrontMatter = m.StripFrontMatter

	loaded := make([]chapterFile, len(m.Chapters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for i, ch := range m.Chapters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := a.load(ch, opts)
			if err != nil {
				return err
			}
			loaded[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		sources    []*parser.Source
		incomplete IncompleteError
	)
	for i, f := range loaded {
		ch := m.Chapters[i]
		switch {
		case f.missing && ch.Optional:
			a.log.Debug("optional chapter absent", "path", ch.Path)
		case f.missing:
			incomplete.Missing = append(incomplete.Missing, ch.Path)
		case f.empty:
			incomplete.Empty = append(incomplete.Empty, ch.Path)
		default:
			sources = append(sources, f.src)
		}
	}
	if len(incomplete.Missing) > 0 || len(incomplete.Empty) > 0 {
		return nil, &incomplete
	}

	book := &Book{
		Markdown: render(m, sources),
		Chapters: sources,
	}
	for _, src := range sources {
		book.Words += src.Words
	}
	return book, nil
}

// Build renders the book and writes it to the manifest's output path.
// Nothing is written when a chapter is missing or empty.
func (a *Assembler) Build(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	start := time.Now()
	book, err := a.Render(ctx, m)
	if err != nil {
		return nil, err
	}

	out := m.OutputPath(a.root)
	if err := WriteAtomic(out, book.Markdown); err != nil {
		return nil, fmt.Errorf("write %s: %w", out, err)
	}

	res := &Result{
		OutputPath: out,
		Bytes:      len(book.Markdown),
		Chapters:   len(book.Chapters),
		Words:      book.Words,
		SHA256:     Digest(book.Markdown),
	}
	a.log.Info("book assembled",
		"output", out,
		"chapters", res.Chapters,
		"bytes", res.Bytes,
		"words", res.Words,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// chapterFile is the outcome of loading one manifest entry.
type chapterFile struct {
	src     *parser.Source
	missing bool
	empty   bool
}

func (a *Assembler) load(ch manifest.Chapter, opts parser.Options) (chapterFile, error) {
	full := manifest.Resolve(a.root, ch.Path)
	info, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist), err == nil && info.IsDir():
		return chapterFile{missing: true}, nil
	case err != nil:
		return chapterFile{}, fmt.Errorf("stat %s: %w", ch.Path, err)
	}

	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return chapterFile{missing: true}, nil
	}
	if err != nil {
		return chapterFile{}, fmt.Errorf("read %s: %w", ch.Path, err)
	}
	if textstat.IsBlank(data) {
		return chapterFile{empty: true}, nil
	}

	src, err := parser.LoadBytes(ch.Path, data, opts)
	if err != nil {
		return chapterFile{}, fmt.Errorf("load %s: %w", ch.Path, err)
	}
	if ch.Title != "" {
		src.Title = ch.Title
	}
	return chapterFile{src: src}, nil
}

// WriteAtomic replaces path with data via a temp file in the same directory.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".bookbind-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
