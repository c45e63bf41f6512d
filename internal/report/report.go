// Package report prints validation results for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/bookbind/internal/validate"
)

type styles struct {
	ok, fail, warn, dim, title lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		dim:   r.NewStyle().Faint(true),
		title: r.NewStyle().Bold(true),
	}
}

// Text writes a human-readable report. Colors are used only when w is a
// terminal.
func Text(w io.Writer, r *validate.Report) error {
	st := newStyles(w)
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", st.title.Render(fmt.Sprintf("Validating %q (%d chapters)", r.Book, r.FilesChecked)))

	width := 0
	for _, f := range r.Files {
		width = max(width, len(f.Path))
	}
	for _, f := range r.Files {
		name := fmt.Sprintf("%-*s", width, f.Path)
		switch f.Status {
		case validate.StatusOK:
			fmt.Fprintf(&b, "  %s %s  %s\n", st.ok.Render("✓"), name, st.dim.Render(GroupDigits(f.Words)+" words"))
		case validate.StatusSkipped:
			fmt.Fprintf(&b, "  %s %s  %s\n", st.dim.Render("-"), name, st.dim.Render("skipped (optional)"))
		default:
			detail := string(f.Status)
			if f.Error != "" {
				detail += ": " + f.Error
			}
			fmt.Fprintf(&b, "  %s %s  %s\n", st.fail.Render("✗"), name, st.fail.Render(detail))
		}
	}

	if len(r.Orphans) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.warn.Render("Not listed in the manifest:"))
		for _, o := range r.Orphans {
			fmt.Fprintf(&b, "  %s %s\n", st.warn.Render("!"), o)
		}
	}

	b.WriteString("\n")
	if r.Passed {
		fmt.Fprintf(&b, "%s  %d files, %s words, ~%d min reading time (%d wpm)\n",
			st.ok.Bold(true).Render("PASS"),
			r.FilesFound, GroupDigits(r.TotalWords), r.ReadingMinutes, r.WordsPerMinute)
	} else {
		var counts []string
		if n := len(r.Missing); n > 0 {
			counts = append(counts, fmt.Sprintf("%d missing", n))
		}
		if n := len(r.Empty); n > 0 {
			counts = append(counts, fmt.Sprintf("%d empty", n))
		}
		if n := len(r.Unreadable); n > 0 {
			counts = append(counts, fmt.Sprintf("%d unreadable", n))
		}
		fmt.Fprintf(&b, "%s  %s\n", st.fail.Render("FAIL"), strings.Join(counts, ", "))
		writeList(&b, "missing", r.Missing)
		writeList(&b, "empty", r.Empty)
		writeList(&b, "unreadable", r.Unreadable)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(b, "  %-11s %s\n", label+":", strings.Join(paths, ", "))
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, r *validate.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// GroupDigits formats n with thousands separators.
func GroupDigits(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
