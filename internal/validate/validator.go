// Package validate checks that every chapter a book lists exists and has
// content, and totals the book's word count.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/parser"
	"github.com/dgallion1/bookbind/internal/textstat"
)

// FileStatus is the outcome of checking one chapter file.
type FileStatus string

const (
	StatusOK         FileStatus = "ok"
	StatusMissing    FileStatus = "missing"
	StatusEmpty      FileStatus = "empty"
	StatusUnreadable FileStatus = "unreadable"
	StatusSkipped    FileStatus = "skipped"
)

// FileReport is the result for one manifest entry.
type FileReport struct {
	Path   string     `json:"path"`
	Status FileStatus `json:"status"`
	Bytes  int64      `json:"bytes"`
	Words  int        `json:"words"`
	Error  string     `json:"error,omitempty"`
}

// Report summarizes a validation run.
type Report struct {
	Book           string       `json:"book"`
	Manifest       string       `json:"manifest"`
	Files          []FileReport `json:"files"`
	Missing        []string     `json:"missing"`
	Empty          []string     `json:"empty"`
	Unreadable     []string     `json:"unreadable"`
	Orphans        []string     `json:"orphans"`
	FilesChecked   int          `json:"files_checked"`
	FilesFound     int          `json:"files_found"`
	TotalWords     int          `json:"total_words"`
	WordsPerMinute int          `json:"words_per_minute"`
	ReadingMinutes int          `json:"reading_minutes"`
	Passed         bool         `json:"passed"`
}

// Failures lists every file that failed, in manifest order.
func (r *Report) Failures() []FileReport {
	var out []FileReport
	for _, f := range r.Files {
		switch f.Status {
		case StatusMissing, StatusEmpty, StatusUnreadable:
			out = append(out, f)
		}
	}
	return out
}

// Options configures a Validator.
type Options struct {
	WordsPerMinute int
	CheckOrphans   bool
	Parser         parser.Options
}

// Validator checks a book's source tree.
type Validator struct {
	root string
	opts Options
	log  *slog.Logger
}

func New(root string, opts Options, log *slog.Logger) *Validator {
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = 200
	}
	if log == nil {
		log = slog.Default()
	}
	return &Validator{root: root, opts: opts, log: log}
}

// Run checks every chapter. All failures are collected; the report is
// returned even when validation fails. The error is reserved for problems
// that prevent validating at all.
func (v *Validator) Run(ctx context.Context, m *manifest.Manifest) (*Report, error) {
	r := &Report{
		Book:           m.Title,
		Manifest:       m.Source,
		Missing:        []string{},
		Empty:          []string{},
		Unreadable:     []string{},
		Orphans:        []string{},
		WordsPerMinute: v.opts.WordsPerMinute,
	}

	for _, ch := range m.Chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fr := v.checkFile(ch)
		r.Files = append(r.Files, fr)
		r.FilesChecked++

		switch fr.Status {
		case StatusOK:
			r.FilesFound++
			r.TotalWords += fr.Words
		case StatusMissing:
			r.Missing = append(r.Missing, ch.Path)
		case StatusEmpty:
			r.FilesFound++
			r.Empty = append(r.Empty, ch.Path)
		case StatusUnreadable:
			r.FilesFound++
			r.Unreadable = append(r.Unreadable, ch.Path)
		}
	}

	if v.opts.CheckOrphans {
		orphans, err := v.orphans(m)
		if err != nil {
			v.log.Warn("orphan scan failed", "error", err)
		} else {
			r.Orphans = orphans
		}
	}

	r.ReadingMinutes = textstat.ReadingMinutes(r.TotalWords, v.opts.WordsPerMinute)
	r.Passed = len(r.Missing) == 0 && len(r.Empty) == 0 && len(r.Unreadable) == 0

	v.log.Debug("validation finished",
		"passed", r.Passed,
		"files", r.FilesChecked,
		"missing", len(r.Missing),
		"empty", len(r.Empty),
		"words", r.TotalWords,
	)
	return r, nil
}

func (v *Validator) checkFile(ch manifest.Chapter) FileReport {
	fr := FileReport{Path: ch.Path}
	full := manifest.Resolve(v.root, ch.Path)

	info, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist), err == nil && info.IsDir():
		fr.Status = StatusMissing
		if ch.Optional {
			fr.Status = StatusSkipped
		}
		return fr
	case err != nil:
		fr.Status = StatusUnreadable
		fr.Error = err.Error()
		return fr
	}
	fr.Bytes = info.Size()

	data, err := os.ReadFile(full)
	if err != nil {
		fr.Status = StatusUnreadable
		fr.Error = err.Error()
		return fr
	}
	if textstat.IsBlank(data) {
		fr.Status = StatusEmpty
		return fr
	}

	if !parser.IsSupportedExtension(ch.Path) {
		fr.Status = StatusUnreadable
		fr.Error = parser.ErrUnsupported.Error()
		return fr
	}
	if parser.IsTextual(ch.Path) {
		fr.Words = textstat.CountWords(data)
		fr.Status = StatusOK
		return fr
	}

	// Binary formats are counted on their extracted text.
	src, err := parser.LoadBytes(ch.Path, data, v.opts.Parser)
	if err != nil {
		fr.Status = StatusUnreadable
		fr.Error = err.Error()
		return fr
	}
	fr.Words = src.Words
	fr.Status = StatusOK
	return fr
}

// orphans finds Markdown files under the root that the manifest does not list.
func (v *Validator) orphans(m *manifest.Manifest) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(v.root), "**/*.{md,markdown}")
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}

	output := path.Clean(filepath.ToSlash(m.Output))
	var out []string
	for _, match := range matches {
		if ignoredPath(match) || match == output || m.Contains(match) {
			continue
		}
		out = append(out, match)
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// ignoredPath skips hidden and vendored trees.
func ignoredPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") || seg == "node_modules" || seg == "target" {
			return true
		}
	}
	return false
}
