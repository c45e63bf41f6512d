package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/bookbind/internal/api"
	"github.com/dgallion1/bookbind/internal/metrics"
	"github.com/dgallion1/bookbind/internal/pipeline"
	"github.com/dgallion1/bookbind/internal/watch"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port      string
		withWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the book over HTTP and accept build jobs",
		Long: `Serve the combined book as Markdown (/book.md) and HTML (/book), the
validation report (/api/validate), a build queue (/api/builds) and Prometheus
metrics (/metrics). /api routes require a bearer token when
BOOKBIND_API_KEY is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Port = port
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			return a.serve(cmd.Context(), withWatch)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default $PORT or 8090)")
	cmd.Flags().BoolVar(&withWatch, "watch", false, "queue a build whenever sources change")
	return cmd
}

func (a *app) serve(ctx context.Context, withWatch bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	assembler := a.assembler()
	validator := a.validator(true)
	stats := pipeline.NewBuildStats(time.Hour)

	// Initialize pipeline.
	var orch *pipeline.Orchestrator
	m := metrics.New(func() int { return orch.QueueDepth() })
	worker := pipeline.NewWorker(a.cfg.Root, a.cfg.ManifestPath, assembler, validator, stats, m, a.log)
	orch = pipeline.NewOrchestrator(a.cfg, worker, stats, a.log)
	orch.Start(ctx)

	if withWatch {
		w, err := watch.New(a.cfg.Root, a.cfg.WatchDebounce, a.watchMatcher(), a.log)
		if err != nil {
			orch.Stop()
			return err
		}
		go func() {
			err := w.Run(ctx, func(ctx context.Context, paths []string) {
				if _, err := orch.Submit(pipeline.Request{}); err != nil {
					a.log.Warn("watch build not queued", "error", err)
				}
			})
			if err != nil {
				a.log.Error("watcher stopped", "error", err)
			}
		}()
	}

	// Initialize HTTP server.
	srv := api.NewServer(orch, assembler, validator, m, a.log, a.cfg)
	httpServer := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		a.log.Info("shutting down...")

		cancel()
		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	a.log.Info("starting bookbind server", "port", a.cfg.Port, "root", a.cfg.Root, "auth", a.cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
