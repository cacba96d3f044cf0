package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formsync/internal/dom"
	"github.com/goliatone/go-formsync/pkg/schema"
)

// TriggerSchema returns the smallest document exercising a dependent question:
// radio "a" (yes/no) revealing text field "b".
func TriggerSchema() schema.FormSchema {
	return schema.FormSchema{
		Title: "Trigger",
		Fields: []schema.Field{
			{
				ID:      "a",
				Label:   "A",
				Type:    schema.FieldTypeRadio,
				Options: []schema.Option{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}},
				DependentQuestions: []schema.Field{
					{ID: "b", Label: "B", Type: schema.FieldTypeText},
				},
			},
		},
	}
}

// LoadSchema reads a JSON or YAML fixture from disk.
func LoadSchema(t *testing.T, path string) schema.FormSchema {
	t.Helper()

	doc, err := schema.LoadFile(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return doc
}

// MustParse parses schema text, failing the test on error.
func MustParse(t *testing.T, text string) schema.FormSchema {
	t.Helper()

	doc, err := schema.Parse(text)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return doc
}

// MustSerialize serializes doc, failing the test on error.
func MustSerialize(t *testing.T, doc schema.FormSchema) string {
	t.Helper()

	text, err := schema.Serialize(doc)
	if err != nil {
		t.Fatalf("serialize schema: %v", err)
	}
	return text
}

// RenderHTML serializes node, failing the test on error.
func RenderHTML(t *testing.T, node *html.Node) string {
	t.Helper()

	out, err := dom.Render(node)
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	return out
}

// ContainerIDs lists the id of every field container under root in document
// order.
func ContainerIDs(root *html.Node) []string {
	var ids []string
	for _, node := range dom.FindAll(root, func(node *html.Node) bool {
		class, _ := dom.Attr(node, "class")
		return class == "form-field"
	}) {
		ids = append(ids, dom.ID(node))
	}
	return ids
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadFile reads a fixture file and returns its content.
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
