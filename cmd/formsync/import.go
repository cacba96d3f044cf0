package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync"
	"github.com/goliatone/go-formsync/pkg/openapi"
	"github.com/goliatone/go-formsync/pkg/schema"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		operation string
		title     string
		output    string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "import-openapi SPEC",
		Short: "Derive a form schema from an OpenAPI operation's request body",
		Long: `import-openapi reads an OpenAPI 3 document and converts the request body of
--operation into a form schema. Properties listed under x-dependent-questions
become dependent questions of a yes/no trigger.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var options []openapi.FormOption
			if title != "" {
				options = append(options, openapi.WithTitle(title))
			}
			conversion, err := formsync.ImportOpenAPI(cmd.Context(), schema.SourceFromFile(args[0]), operation, options...)
			if err != nil {
				return err
			}
			for _, skipped := range conversion.Skipped {
				a.logger.Warn("property skipped", zap.String("operation", operation), zap.String("property", skipped.Property), zap.String("reason", skipped.Reason))
			}

			data, err := encodeSchema(conversion.Form, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}
	cmd.Flags().StringVar(&operation, "operation", "", "Operation id (required)")
	cmd.Flags().StringVar(&title, "title", "", "Form title (default: the operation summary)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", "json", "Schema format: json or yaml")
	_ = cmd.MarkFlagRequired("operation")
	return cmd
}

// encodeSchema writes doc in the canonical text form, or as YAML with the same
// key order.
func encodeSchema(doc schema.FormSchema, format string) ([]byte, error) {
	text, err := schema.Serialize(doc)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return []byte(text + "\n"), nil
	case "yaml":
		var node yaml.Node
		if err := yaml.Unmarshal([]byte(text), &node); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		clearStyle(&node)
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(&node); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// clearStyle drops the flow and quoting styles inherited from the JSON text.
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}
