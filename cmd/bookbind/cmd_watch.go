package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/bookbind/internal/export"
	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/parser"
	"github.com/dgallion1/bookbind/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the book whenever a chapter or the manifest changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.rebuild(ctx)
			w, err := watch.New(a.cfg.Root, a.cfg.WatchDebounce, a.watchMatcher(), a.log)
			if err != nil {
				return err
			}
			a.log.Info("watching for changes", "root", a.cfg.Root, "debounce", a.cfg.WatchDebounce.String())
			return w.Run(ctx, func(ctx context.Context, _ []string) { a.rebuild(ctx) })
		},
	}
}

// watchMatcher selects chapter sources and the manifest. The combined output
// and its exports are excluded so a rebuild never triggers another.
func (a *app) watchMatcher() func(rel string) bool {
	manifestPath := manifest.Resolve(a.cfg.Root, a.cfg.ManifestPath)
	return func(rel string) bool {
		full := manifest.Resolve(a.cfg.Root, rel)
		if full == manifestPath {
			return true
		}
		if !parser.IsSupportedExtension(rel) {
			return false
		}
		m, err := a.manifest()
		if err != nil {
			return true
		}
		out := m.OutputPath(a.cfg.Root)
		switch full {
		case out, export.Path(out, export.FormatHTML), export.Path(out, export.FormatDOCX):
			return false
		}
		return true
	}
}

// rebuild validates and assembles the book, logging the outcome. Failures are
// logged, not returned, so watching continues.
func (a *app) rebuild(ctx context.Context) {
	m, err := a.manifest()
	if err != nil {
		a.log.Error("manifest load failed", "error", err)
		return
	}
	r, err := a.validator(false).Run(ctx, m)
	if err != nil {
		a.log.Error("validation error", "error", err)
		return
	}
	if !r.Passed {
		a.log.Warn("book incomplete", "missing", r.Missing, "empty", r.Empty, "unreadable", r.Unreadable)
	}
	if _, err := a.assembler().Build(ctx, m); err != nil {
		a.log.Error("rebuild failed", "error", err)
	}
}
