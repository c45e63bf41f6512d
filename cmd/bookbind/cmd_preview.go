package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/parser"
	"github.com/spf13/cobra"
)

func newPreviewCmd(a *app) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "preview [chapter]",
		Short: "Render the book, or one chapter, in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var md []byte
			if len(args) == 1 {
				src, err := parser.LoadFile(manifest.Resolve(a.cfg.Root, args[0]), args[0], a.parserOptions())
				if err != nil {
					return fmt.Errorf("load %s: %w", args[0], err)
				}
				md = []byte(src.Markdown)
			} else {
				m, err := a.manifest()
				if err != nil {
					return err
				}
				book, err := a.assembler().Render(cmd.Context(), m)
				if err != nil {
					return err
				}
				md = book.Markdown
			}
			return renderTerminal(cmd.OutOrStdout(), md, width)
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 80, "word wrap width")
	return cmd
}

func renderTerminal(w io.Writer, md []byte, width int) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.RenderBytes(md)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = w.Write(out)
	return err
}
