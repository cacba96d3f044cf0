package render

import (
	"context"
	"fmt"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formsync/internal/dom"
)

// FragmentOutput emits only the rendered <form> subtree.
type FragmentOutput struct{}

// NewFragmentOutput constructs the fragment output.
func NewFragmentOutput() *FragmentOutput {
	return &FragmentOutput{}
}

func (o *FragmentOutput) Name() string {
	return "fragment"
}

func (o *FragmentOutput) ContentType() string {
	return "text/html; charset=utf-8"
}

func (o *FragmentOutput) Render(ctx context.Context, snapshot Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if snapshot.Form == nil {
		return nil, fmt.Errorf("render: fragment: snapshot has no form")
	}
	out, err := dom.Render(snapshot.Form)
	if err != nil {
		return nil, fmt.Errorf("render: fragment: %w", err)
	}
	return []byte(out), nil
}

// TextOutput emits the text surface contents.
type TextOutput struct{}

// NewTextOutput constructs the text output.
func NewTextOutput() *TextOutput {
	return &TextOutput{}
}

func (o *TextOutput) Name() string {
	return "json"
}

func (o *TextOutput) ContentType() string {
	return "application/json"
}

func (o *TextOutput) Render(ctx context.Context, snapshot Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(snapshot.Text), nil
}

// HTML serializes a rendered subtree.
func HTML(node *html.Node) (string, error) {
	return dom.Render(node)
}
