package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookbind/internal/doctree"
	"github.com/dgallion1/bookbind/internal/textstat"
)

var ErrUnsupported = errors.New("unsupported chapter format")

// Source is a chapter normalized to Markdown.
type Source struct {
	Path     string // Manifest path of the chapter
	Format   string // Lower-case extension without the dot
	Title    string
	Markdown string // Chapter body as written into the book
	Headings []doctree.Heading
	Words    int
	Bytes    int

	// body is the Markdown without front matter, set when front matter was
	// found. The outline is taken from it.
	body *string
}

// Parser converts raw chapter bytes into a Source.
type Parser interface {
	Parse(r io.Reader, filename string) (*Source, error)
}

// Options tune individual parsers.
type Options struct {
	PDFFallbackPdftotext bool
	StripFrontMatter     bool // Drop Markdown front matter from the body
}

// SupportedExtensions lists chapter file extensions bookbind can read.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{StripFrontMatter: opts.StripFrontMatter}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsTextual reports whether the file's raw bytes are human-readable text,
// in which case word counts are taken over the raw file.
func IsTextual(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
		return false
	}
	return true
}

// LoadFile reads path from disk and parses it as the chapter called name.
func LoadFile(path, name string, opts Options) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(name, data, opts)
}

// LoadBytes parses data as the chapter called name and fills in the derived
// fields: outline, title fallback and word count.
func LoadBytes(name string, data []byte, opts Options) (*Source, error) {
	p, err := ForFile(name, opts)
	if err != nil {
		return nil, err
	}
	src, err := p.Parse(bytes.NewReader(data), filepath.Base(name))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	src.Path = name
	src.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	src.Bytes = len(data)
	outline := src.Markdown
	if src.body != nil {
		outline = *src.body
	}
	src.Headings = Outline([]byte(outline))

	if src.Title == "" {
		for _, h := range src.Headings {
			if h.Level == 1 {
				src.Title = h.Text
				break
			}
		}
	}
	if src.Title == "" {
		src.Title = stem(name)
	}

	if IsTextual(name) {
		src.Words = textstat.CountWords(data)
	} else {
		src.Words = textstat.CountWordsString(src.Markdown)
	}
	return src, nil
}

func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// treeSource turns a DocTree into a Source.
func treeSource(tree *doctree.DocTree) *Source {
	return &Source{
		Title:    tree.Title,
		Markdown: tree.Markdown(),
	}
}
