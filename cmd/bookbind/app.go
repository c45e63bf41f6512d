package main

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/bookbind/internal/assemble"
	"github.com/dgallion1/bookbind/internal/config"
	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/parser"
	"github.com/dgallion1/bookbind/internal/validate"
	"github.com/spf13/cobra"
)

// app carries configuration shared by every subcommand.
type app struct {
	rootFlag     string
	manifestFlag string
	logLevelFlag string

	cfg config.Config
	log *slog.Logger
}

// setup loads the environment configuration, applies flag overrides and
// builds the logger. Logs go to stderr so stdout carries only output.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Load()
	if a.rootFlag != "" {
		cfg.Root = a.rootFlag
	}
	if a.manifestFlag != "" {
		cfg.ManifestPath = a.manifestFlag
	}
	if a.logLevelFlag != "" {
		cfg.LogLevel = a.logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.log = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return nil
}

func (a *app) manifest() (*manifest.Manifest, error) {
	m, err := manifest.Load(a.cfg.Root, a.cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	if m.Source == manifest.BuiltinSource {
		a.log.Debug("no manifest file, using builtin chapter list", "path", a.cfg.ManifestPath)
	}
	return m, nil
}

func (a *app) parserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: a.cfg.PDFFallbackPdftotext}
}

func (a *app) assembler() *assemble.Assembler {
	return assemble.New(a.cfg.Root, assemble.Options{
		Parser:      a.parserOptions(),
		Concurrency: a.cfg.LoadConcurrency,
	}, a.log)
}

func (a *app) validator(checkOrphans bool) *validate.Validator {
	return validate.New(a.cfg.Root, validate.Options{
		WordsPerMinute: a.cfg.WordsPerMinute,
		CheckOrphans:   checkOrphans,
		Parser:         a.parserOptions(),
	}, a.log)
}
