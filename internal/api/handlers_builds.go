package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dgallion1/bookbind/internal/export"
	"github.com/dgallion1/bookbind/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const maxBuildRequestBytes = 64 << 10

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	m, ok := s.loadManifest(w)
	if !ok {
		return
	}
	report, err := s.validator.Run(r.Context(), m)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	code := http.StatusOK
	if !report.Passed {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, report)
}

// handleCreateBuild accepts an optional JSON body {"format": "html",
// "strict": true}; the same fields may be given as query parameters.
func (s *Server) handleCreateBuild(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBuildRequestBytes))
	if err != nil {
		jsonError(w, "failed to read request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	q := r.URL.Query()
	if v := q.Get("format"); v != "" {
		req.Format = export.Format(v)
	}
	if v := q.Get("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, fmt.Sprintf("invalid strict value %q: want true or false", v), http.StatusBadRequest)
			return
		}
		req.Strict = strict
	}
	if req.Format != "" {
		if _, err := export.ParseFormat(string(req.Format)); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	job, err := s.orchestrator.Submit(req)
	if err != nil {
		code := http.StatusServiceUnavailable
		if !errors.Is(err, pipeline.ErrQueueFull) && !errors.Is(err, pipeline.ErrStopped) {
			code = http.StatusInternalServerError
		}
		jsonError(w, err.Error(), code)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/builds/%s", snap.ID),
	})
}

func (s *Server) handleBuildStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
