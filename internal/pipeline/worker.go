package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/bookbind/internal/assemble"
	"github.com/dgallion1/bookbind/internal/export"
	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/validate"
)

// Observer receives the outcome of every finished build.
type Observer interface {
	ObserveBuild(status string, d time.Duration, words, chapters int)
}

// Worker runs build jobs for one book.
type Worker struct {
	root         string
	manifestPath string
	assembler    *assemble.Assembler
	validator    *validate.Validator
	stats        *BuildStats
	observer     Observer
	log          *slog.Logger

	// Builds of the same book write the same output file.
	buildMu sync.Mutex
}

func NewWorker(root, manifestPath string, a *assemble.Assembler, v *validate.Validator, stats *BuildStats, observer Observer, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		root:         root,
		manifestPath: manifestPath,
		assembler:    a,
		validator:    v,
		stats:        stats,
		observer:     observer,
		log:          log,
	}
}

// Process runs validate, assemble and the optional export for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	log := w.log.With("job_id", job.ID)
	start := time.Now()
	timer := &phaseTimer{phases: map[string]time.Duration{}}
	err := w.run(ctx, job, log, timer)
	timer.stop()

	elapsed := time.Since(start)
	snap := job.Snapshot()
	status := StatusCompleted
	sample := BuildSample{
		Format: string(job.Request.Format),
		Total:  elapsed,
		Phases: timer.phases,
	}
	if err != nil {
		status = StatusFailed
		sample.FailedPhase = snap.Phase
	}

	// Record before the terminal status: a poller that sees it sees the sample.
	if w.stats != nil {
		w.stats.Record(sample)
	}
	if w.observer != nil {
		w.observer.ObserveBuild(string(status), elapsed, snap.Result.Words, snap.Result.Chapters)
	}

	if err != nil {
		log.Error("build failed", "phase", snap.Phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, snap.Phase)
		return
	}
	job.SetStatus(StatusCompleted, "done")
	log.Info("build completed",
		"output", snap.Result.OutputPath,
		"words", snap.Result.Words,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// phaseTimer accumulates wall time per build phase.
type phaseTimer struct {
	phases  map[string]time.Duration
	current string
	started time.Time
}

func (t *phaseTimer) enter(phase string) {
	t.stop()
	t.current = phase
	t.started = time.Now()
}

func (t *phaseTimer) stop() {
	if t.current == "" {
		return
	}
	t.phases[t.current] += time.Since(t.started)
	t.current = ""
}

func failureSummary(r *validate.Report) string {
	var parts []string
	for _, f := range r.Failures() {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Path, f.Status))
	}
	return strings.Join(parts, ", ")
}
