package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/bookbind/internal/parser"
)

const sample = `# Mastering ink!

## Table of Contents

1. [Getting Started](#getting-started)

---

# Getting Started

Install the toolchain & run it.

- first step
- second step

` + "```rust\nfn main() {}\n```\n"

func TestHTML_StandalonePage(t *testing.T) {
	out, err := HTML("Mastering <ink!>", []byte(sample))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Mastering &lt;ink!&gt;</title>",
		`<h1 id="getting-started">Getting Started</h1>`,
		`<a href="#getting-started">Getting Started</a>`,
		"<li>first step</li>",
		`<code class="language-rust">`,
		"</html>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLFragment_NoWrapper(t *testing.T) {
	out, err := HTMLFragment([]byte("plain *text*"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(out)); got != "<p>plain <em>text</em></p>" {
		t.Errorf("fragment = %q", got)
	}
}

func TestDOCX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := DOCX(&buf, []byte(sample)); err != nil {
		t.Fatalf("DOCX: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty document")
	}

	src, err := (&parser.DOCXParser{}).Parse(bytes.NewReader(buf.Bytes()), "book.docx")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, want := range []string{
		"Getting Started",
		"Install the toolchain & run it.",
		"• first step",
		"fn main() {}",
	} {
		if !strings.Contains(src.Markdown, want) {
			t.Errorf("document text missing %q\n%s", want, src.Markdown)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"html", "docx"} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q): %v", in, err)
		}
	}
	if _, err := ParseFormat("epub"); err == nil {
		t.Error("expected error for epub")
	}
}

func TestPath(t *testing.T) {
	if got := Path("/b/mastering-ink-complete.md", FormatHTML); got != "/b/mastering-ink-complete.html" {
		t.Errorf("Path = %q", got)
	}
	if got := Path("out", FormatDOCX); got != "out.docx" {
		t.Errorf("Path = %q", got)
	}
}
