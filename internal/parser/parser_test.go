package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestForFile_Extensions(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"chapter-01.md", false},
		{"notes.MARKDOWN", false},
		{"appendix.txt", false},
		{"glossary.csv", false},
		{"events.html", false},
		{"events.htm", false},
		{"slides.pdf", false},
		{"draft.docx", false},
		{"image.png", true},
		{"Makefile", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename, Options{})
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): err=%v, wantErr=%v", tt.filename, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnsupported) {
			t.Errorf("ForFile(%q): expected ErrUnsupported, got %v", tt.filename, err)
		}
		if IsSupportedExtension(tt.filename) == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q) disagrees with ForFile", tt.filename)
		}
	}
}

func TestLoadBytes_TitleFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"chapter-01.md", "---\ntitle: From Meta\n---\n# From Heading\n", "From Meta"},
		{"chapter-02.md", "## Sub first\n\n# From Heading\n", "From Heading"},
		{"chapters/chapter-03.md", "No headings here.\n", "chapter-03"},
		{"appendix.txt", "Plain text.\n", "appendix"},
	}
	for _, tt := range tests {
		src, err := LoadBytes(tt.name, []byte(tt.input), Options{})
		if err != nil {
			t.Fatalf("LoadBytes(%q): %v", tt.name, err)
		}
		if src.Title != tt.want {
			t.Errorf("LoadBytes(%q): expected title %q, got %q", tt.name, tt.want, src.Title)
		}
		if src.Path != tt.name {
			t.Errorf("expected path %q, got %q", tt.name, src.Path)
		}
	}
}

func TestLoadBytes_WordsCountRawTextualFiles(t *testing.T) {
	input := "---\ntitle: T\n---\n# Heading\n\nfour words of body\n"
	src, err := LoadBytes("c.md", []byte(input), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// wc -w over the whole file: "---", "title:", "T", "---", "#", "Heading", + 4.
	if src.Words != 10 {
		t.Errorf("expected 10 words, got %d", src.Words)
	}
	if src.Bytes != len(input) {
		t.Errorf("expected %d bytes, got %d", len(input), src.Bytes)
	}
	if src.Format != "md" {
		t.Errorf("expected format md, got %q", src.Format)
	}
	if len(src.Headings) != 1 || src.Headings[0].Text != "Heading" {
		t.Errorf("unexpected headings %+v", src.Headings)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.md"), "nope.md", Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadBytes_Unsupported(t *testing.T) {
	_, err := LoadBytes("cover.png", []byte{0x89, 'P', 'N', 'G'}, Options{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
