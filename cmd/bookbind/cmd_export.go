package main

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/dgallion1/bookbind/internal/assemble"
	"github.com/dgallion1/bookbind/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the combined book as HTML or DOCX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			m, err := a.manifest()
			if err != nil {
				return err
			}
			if output != "" && (m.Contains(output) || filepath.Clean(output) == filepath.Clean(m.Output)) {
				return fmt.Errorf("--output %s would overwrite a book source", output)
			}
			book, err := a.assembler().Render(cmd.Context(), m)
			if err != nil {
				return err
			}

			var data []byte
			switch f {
			case export.FormatHTML:
				data, err = export.HTML(m.Title, book.Markdown)
			case export.FormatDOCX:
				var buf bytes.Buffer
				err = export.DOCX(&buf, book.Markdown)
				data = buf.Bytes()
			}
			if err != nil {
				return err
			}

			path := export.Path(m.OutputPath(a.cfg.Root), f)
			if output != "" {
				path = output
				if !filepath.IsAbs(path) {
					path = filepath.Join(a.cfg.Root, path)
				}
			}
			if err := assemble.WriteAtomic(path, data); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			a.log.Info("book exported", "format", f, "output", path, "bytes", len(data))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatHTML), "export format: html or docx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, relative to the root (default: book output with the format's extension)")
	return cmd
}
