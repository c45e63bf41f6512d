package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/bookbind/internal/assemble"
	"github.com/dgallion1/bookbind/internal/export"
)

// renderBook assembles the book in memory without touching the output file.
func (s *Server) renderBook(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	m, ok := s.loadManifest(w)
	if !ok {
		return "", nil, false
	}
	book, err := s.assembler.Render(r.Context(), m)
	if err != nil {
		var incomplete *assemble.IncompleteError
		if errors.As(err, &incomplete) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":   err.Error(),
				"missing": nonNil(incomplete.Missing),
				"empty":   nonNil(incomplete.Empty),
			})
			return "", nil, false
		}
		s.log.Error("render failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return "", nil, false
	}
	return m.Title, book.Markdown, true
}

func (s *Server) handleBookMarkdown(w http.ResponseWriter, r *http.Request) {
	_, md, ok := s.renderBook(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(md)
}

func (s *Server) handleBookHTML(w http.ResponseWriter, r *http.Request) {
	title, md, ok := s.renderBook(w, r)
	if !ok {
		return
	}
	page, err := export.HTML(title, md)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
