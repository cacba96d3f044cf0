package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsync"
	"github.com/goliatone/go-formsync/pkg/schema"
	"github.com/goliatone/go-formsync/pkg/session"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output   string
		renderer string
		themes   themeFlags
	)
	cmd := &cobra.Command{
		Use:   "render SCHEMA",
		Short: "Render a schema once (vanilla page, form fragment or JSON text)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}
			pageOptions, err := themes.options()
			if err != nil {
				return err
			}
			registry, err := formsync.NewRegistry(pageOptions...)
			if err != nil {
				return err
			}

			out, err := formsync.Render(cmd.Context(), doc, renderer, registry, session.WithLogger(a.logger))
			if err != nil {
				return err
			}
			a.logger.Debug("rendered", zap.String("schema", args[0]), zap.String("renderer", renderer), zap.Int("bytes", len(out)))
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().StringVarP(&renderer, "renderer", "r", "vanilla", "Output: vanilla, fragment or json")
	themes.register(cmd)
	return cmd
}
