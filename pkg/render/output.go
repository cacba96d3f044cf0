package render

import (
	"context"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formsync/pkg/schema"
)

// Snapshot is the state an Output renders: the schema currently on display,
// the text surface contents, and the mounted form tree.
type Snapshot struct {
	Schema schema.FormSchema
	Text   string
	// Form is the rendered <form> subtree. Outputs must treat it as read-only.
	Form *html.Node
	// Diagnostics lists the non-fatal problems of the last render and the last
	// rejected edit, oldest first.
	Diagnostics []string
}

// Output converts a Snapshot into a byte representation (page, fragment,
// text, ...).
type Output interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, snapshot Snapshot) ([]byte, error)
}
