package main

import (
	"fmt"
	"path/filepath"

	"github.com/dgallion1/bookbind/internal/report"
	"github.com/dgallion1/bookbind/internal/textstat"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	strict bool
	output string
}

func newBuildCmd(a *app) *cobra.Command {
	var opts buildOptions
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write the combined book (the default command)",
		Long: `Concatenate every chapter, in manifest order, into the output file.

The build fails, and writes nothing, if any required chapter is missing or
empty. With --strict the full completeness check runs first and its report is
printed on failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "run the completeness check first and print its report on failure")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path, relative to the root (default from the manifest)")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, opts buildOptions) error {
	ctx := cmd.Context()
	m, err := a.manifest()
	if err != nil {
		return err
	}
	if opts.output != "" {
		m.Output = opts.output
		if err := m.Validate(); err != nil {
			return fmt.Errorf("--output: %w", err)
		}
	}

	if opts.strict {
		r, err := a.validator(false).Run(ctx, m)
		if err != nil {
			return err
		}
		if !r.Passed {
			if err := report.Text(cmd.OutOrStdout(), r); err != nil {
				return err
			}
			return errValidationFailed
		}
	}

	res, err := a.assembler().Build(ctx, m)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rel, relErr := filepath.Rel(a.cfg.Root, res.OutputPath)
	if relErr != nil {
		rel = res.OutputPath
	}
	fmt.Fprintf(out, "Wrote %s\n", rel)
	fmt.Fprintf(out, "  %d chapters, %s words, ~%d min reading time\n",
		res.Chapters, report.GroupDigits(res.Words), textstat.ReadingMinutes(res.Words, a.cfg.WordsPerMinute))
	fmt.Fprintf(out, "  sha256 %s\n", res.SHA256)
	return nil
}
