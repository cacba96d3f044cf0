package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports text that is not a well-formed schema document. Offset,
// Line, and Column are zero when the decoder could not locate the problem.
type ParseError struct {
	Offset int64
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("schema: parse: line %d column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("schema: parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNullDocument = errors.New("document is null")

// Parse decodes a JSON schema document.
func Parse(text string) (FormSchema, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "null" {
		return FormSchema{}, &ParseError{Err: errNullDocument}
	}

	var out FormSchema
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return FormSchema{}, newParseError(text, err)
	}
	return out, nil
}

// Serialize encodes s as two-space indented JSON. HTML characters are not
// escaped so labels read the same in the text surface as they were authored.
func Serialize(s FormSchema) (string, error) {
	if s.Fields == nil {
		s.Fields = []Field{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return "", fmt.Errorf("schema: serialize: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// MustSerialize panics when s cannot be encoded. Useful for fixtures.
func MustSerialize(s FormSchema) string {
	text, err := Serialize(s)
	if err != nil {
		panic(err)
	}
	return text
}

func newParseError(text string, err error) *ParseError {
	out := &ParseError{Err: err}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		out.Offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		out.Offset = typeErr.Offset
	default:
		return out
	}

	out.Line, out.Column = position(text, out.Offset)
	return out
}

func position(text string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	column := int(offset) - strings.LastIndex(prefix, "\n")
	return line, column
}
