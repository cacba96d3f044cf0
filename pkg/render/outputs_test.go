package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsync/pkg/schema"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(NewFragmentOutput())
	registry.MustRegister(NewTextOutput())

	if err := registry.Register(NewTextOutput()); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil output to fail")
	}
	if diff := cmp.Diff([]string{"fragment", "json"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has("json") || registry.Has("pdf") {
		t.Fatalf("unexpected Has results")
	}
	_, err := registry.Get("pdf")
	if !errors.Is(err, ErrUnknownOutput) {
		t.Fatalf("expected ErrUnknownOutput, got %v", err)
	}
	if !strings.Contains(err.Error(), "available: fragment, json") {
		t.Fatalf("expected the registered names in %q", err)
	}
}

func TestFragmentAndTextOutputs(t *testing.T) {
	doc := schema.FormSchema{Title: "T", Fields: []schema.Field{{ID: "a", Label: "A", Type: schema.FieldTypeText}}}
	snapshot := Snapshot{
		Schema: doc,
		Text:   schema.MustSerialize(doc),
		Form:   New().RenderForm(doc, nil),
	}

	fragment, err := NewFragmentOutput().Render(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("fragment: %v", err)
	}
	if !strings.HasPrefix(string(fragment), `<form id="generatedForm"><h2>T</h2>`) {
		t.Fatalf("unexpected fragment: %s", fragment)
	}

	text, err := NewTextOutput().Render(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if string(text) != snapshot.Text {
		t.Fatalf("expected text output to echo the surface, got %s", text)
	}

	if _, err := NewFragmentOutput().Render(context.Background(), Snapshot{}); err == nil {
		t.Fatalf("expected error without a form")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewTextOutput().Render(ctx, snapshot); err == nil {
		t.Fatalf("expected cancelled context to fail")
	}
}
