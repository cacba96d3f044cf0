package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsync/pkg/schema"
	"github.com/goliatone/go-formsync/pkg/validation"
)

func newLintCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lint SCHEMA",
		Short: "Report malformed text and schema anomalies (duplicate ids, unknown types, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			var result validation.SchemaValidationResult
			switch strings.ToLower(filepath.Ext(args[0])) {
			case ".yaml", ".yml":
				doc, err := schema.Load(data, args[0])
				if err != nil {
					result = validation.SchemaValidationResult{Issues: []validation.SchemaIssue{{Message: err.Error()}}}
				} else {
					result = validation.ValidateSchema(doc)
				}
			default:
				result = validation.ValidateDocument(string(data))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(result); err != nil {
					return err
				}
			} else {
				for _, issue := range result.Issues {
					fmt.Fprintln(out, formatIssue(args[0], issue))
				}
			}
			if !result.Valid {
				return fmt.Errorf("%s: %d issue(s)", args[0], len(result.Issues))
			}
			a.logger.Debug("schema is clean")
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func formatIssue(file string, issue validation.SchemaIssue) string {
	location := file
	if issue.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", file, issue.Line, issue.Column)
	}
	switch {
	case issue.Path != "" && issue.Field != "":
		return fmt.Sprintf("%s: %s (%s): %s", location, issue.Path, issue.Field, issue.Message)
	case issue.Path != "":
		return fmt.Sprintf("%s: %s: %s", location, issue.Path, issue.Message)
	default:
		return fmt.Sprintf("%s: %s", location, issue.Message)
	}
}
