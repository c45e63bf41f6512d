// Command bookbind assembles a book's chapters into one Markdown document and
// checks that every chapter is present.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const appName = "bookbind"

// Set at build time with -ldflags "-X main.version=...".
var (
	version   = "dev"
	buildTime = "unknown"
)

// errValidationFailed signals a failed completeness check. The report has
// already been printed, so main only sets the exit code.
var errValidationFailed = errors.New("validation failed")

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, buf[:n])
			os.Exit(2)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Assemble and validate a multi-chapter Markdown book",
		Long: `bookbind concatenates a book's chapter files, in manifest order, into a
single Markdown document with a generated title page and table of contents.

Run without a subcommand it builds the book, failing if any chapter is
missing. Without a book.yaml the builtin "Mastering ink!" chapter list is
used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, buildOptions{})
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.rootFlag, "root", "", "book root directory (default $BOOKBIND_ROOT or .)")
	f.StringVar(&a.manifestFlag, "manifest", "", "manifest path, relative to the root (default $BOOKBIND_MANIFEST or book.yaml)")
	f.StringVar(&a.logLevelFlag, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL or info)")

	cmd.AddCommand(
		newBuildCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newPreviewCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Skip config and logger setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, version, buildTime)
		},
	}
}
