// Package manifest describes a book: its metadata and the ordered list of
// chapter files that make it up.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// BuiltinSource marks a manifest that was not read from disk.
const BuiltinSource = "builtin"

// DefaultSeparator is written before every chapter in the combined document.
const DefaultSeparator = "\n\n---\n\n"

var ErrNoChapters = errors.New("manifest lists no chapters")

// Chapter is one entry in the reading order.
type Chapter struct {
	Path     string `yaml:"path"`
	Title    string `yaml:"title,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
}

// UnmarshalYAML accepts either a bare path or a mapping.
func (c *Chapter) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Path = node.Value
		return nil
	}
	type plain Chapter
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Chapter(p)
	return nil
}

// Manifest is the book definition loaded from book.yaml.
type Manifest struct {
	Title         string    `yaml:"title"`
	Subtitle      string    `yaml:"subtitle,omitempty"`
	Prerequisites []string  `yaml:"prerequisites,omitempty"`
	Output        string    `yaml:"output"`
	Separator     string    `yaml:"separator,omitempty"`
	SourceHeaders bool      `yaml:"source_headers,omitempty"`
	Chapters      []Chapter `yaml:"chapters"`

	// StripFrontMatter drops Markdown front matter from chapter bodies.
	// Chapters are copied verbatim by default.
	StripFrontMatter bool `yaml:"strip_front_matter,omitempty"`

	// Source is the file the manifest came from, or BuiltinSource.
	Source string `yaml:"-"`
}

// Default returns the manifest for "Mastering ink!".
func Default() *Manifest {
	m := &Manifest{
		Title:    "Mastering ink!",
		Subtitle: "Smart contract development in Rust for Wasm-based chains",
		Prerequisites: []string{
			"Working knowledge of Rust (ownership, traits, macros)",
			"Rust stable toolchain with the wasm32-unknown-unknown target",
			"cargo-contract installed",
			"A local substrate-contracts-node for testing deployments",
		},
		Output:    "mastering-ink-complete.md",
		Separator: DefaultSeparator,
		Source:    BuiltinSource,
	}
	m.Chapters = append(m.Chapters, Chapter{Path: "README.md"})
	for i := 1; i <= 10; i++ {
		m.Chapters = append(m.Chapters, Chapter{Path: fmt.Sprintf("chapter-%02d.md", i)})
	}
	m.Chapters = append(m.Chapters, Chapter{Path: "appendix.md"})
	return m
}

// Load reads the manifest at path, resolved against root when relative.
// A missing file yields the builtin manifest.
func Load(root, path string) (*Manifest, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, path)
	}

	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.Source = full
	return m, nil
}

// Parse decodes and validates manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if m.Separator == "" {
		m.Separator = DefaultSeparator
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Validate() error {
	if len(m.Chapters) == 0 {
		return ErrNoChapters
	}
	err := validation.ValidateStruct(m,
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.Output, validation.Required),
	)
	if err != nil {
		return err
	}

	seen := make(map[string]int, len(m.Chapters))
	output := filepath.Clean(m.Output)
	for i, ch := range m.Chapters {
		p := strings.TrimSpace(ch.Path)
		if p == "" {
			return fmt.Errorf("chapter %d: path is empty", i+1)
		}
		clean := filepath.Clean(p)
		if prev, dup := seen[clean]; dup {
			return fmt.Errorf("chapter %d: %s already listed as chapter %d", i+1, p, prev+1)
		}
		if clean == output {
			return fmt.Errorf("chapter %d: %s is also the output file", i+1, p)
		}
		seen[clean] = i
	}
	return nil
}

// Contains reports whether rel (slash or OS separated) is a listed chapter.
func (m *Manifest) Contains(rel string) bool {
	clean := filepath.Clean(filepath.FromSlash(rel))
	for _, ch := range m.Chapters {
		if filepath.Clean(filepath.FromSlash(ch.Path)) == clean {
			return true
		}
	}
	return false
}

// Resolve joins a manifest-relative path onto root.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// OutputPath is where the combined document is written.
func (m *Manifest) OutputPath(root string) string {
	return Resolve(root, m.Output)
}
