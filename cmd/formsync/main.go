// Command formsync renders, serves, watches and fills JSON form schemas.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/internal/logging"
)

type app struct {
	verbose   bool
	logFormat string
	logger    *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "formsync",
		Short: "Keep a JSON form schema and its rendered HTML form in sync",
		Long: `formsync turns a JSON (or YAML) form schema into an HTML form whose radio
questions reveal dependent questions when answered "yes".

Render a schema once, serve a live editor where text edits re-render the form,
watch a file and re-render on every save, or fill the form in from the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(a.verbose, a.logFormat)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", logging.FormatConsole, "Log format: console or json")

	root.AddCommand(
		newRenderCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newFillCmd(a),
		newImportCmd(a),
		newLintCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
