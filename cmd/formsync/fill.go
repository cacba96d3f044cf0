package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsync/pkg/render"
	"github.com/goliatone/go-formsync/pkg/renderers/tui"
	"github.com/goliatone/go-formsync/pkg/schema"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "fill SCHEMA",
		Short: "Answer a schema's questions from the terminal",
		Long: `fill prompts for every field of SCHEMA. Answering "yes" to a question with
dependent questions prompts for those as well. The answers are written as JSON,
form-encoded pairs or plain key=value lines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			doc, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}
			for _, issue := range schema.Lint(doc) {
				a.logger.Sugar().Warnf("%s: %s", args[0], issue)
			}

			r := tui.New(tui.WithOutputFormat(outputFormat), tui.WithLogger(a.logger))
			out, err := r.Render(cmd.Context(), render.Snapshot{Schema: doc})
			if err != nil {
				return err
			}
			if outputFormat != tui.OutputFormatPrettyText {
				out = append(out, '\n')
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "Answer format: json, form or pretty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	return cmd
}

func parseOutputFormat(value string) (tui.OutputFormat, error) {
	switch format := tui.OutputFormat(value); format {
	case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, form or pretty)", value)
	}
}
