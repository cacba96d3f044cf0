package validation

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formsync/pkg/schema"
)

// SchemaIssue represents a document problem with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures the outcome of checking schema text.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// ValidateDocument parses text and lints the result. A parse failure yields a
// single positioned issue; lint findings are reported in document order.
func ValidateDocument(text string) SchemaValidationResult {
	doc, err := schema.Parse(text)
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	return ValidateSchema(doc)
}

// ValidateSchema lints an already parsed document.
func ValidateSchema(doc schema.FormSchema) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}
	for _, issue := range schema.Lint(doc) {
		result.Valid = false
		result.Issues = append(result.Issues, SchemaIssue{
			Path:    issue.Path,
			Field:   issue.FieldID,
			Message: issue.Message,
		})
	}
	return result
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}
	var parseErr *schema.ParseError
	if errors.As(err, &parseErr) {
		return SchemaIssue{
			Line:    parseErr.Line,
			Column:  parseErr.Column,
			Message: strings.TrimSpace(parseErr.Err.Error()),
		}
	}
	return SchemaIssue{Message: strings.TrimSpace(err.Error())}
}
