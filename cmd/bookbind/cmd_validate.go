package main

import (
	"github.com/dgallion1/bookbind/internal/report"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		asJSON    bool
		noOrphans bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every chapter exists and is non-empty",
		Long: `Check every chapter in the manifest and report word count and reading
time. Every missing or empty chapter is listed; the exit status is 1 if there
is any.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manifest()
			if err != nil {
				return err
			}
			r, err := a.validator(!noOrphans).Run(cmd.Context(), m)
			if err != nil {
				return err
			}

			if asJSON {
				err = report.JSON(cmd.OutOrStdout(), r)
			} else {
				err = report.Text(cmd.OutOrStdout(), r)
			}
			if err != nil {
				return err
			}
			if !r.Passed {
				return errValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&noOrphans, "no-orphans", false, "skip the scan for Markdown files missing from the manifest")
	return cmd
}
