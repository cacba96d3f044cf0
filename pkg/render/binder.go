package render

import (
	"golang.org/x/net/html"

	"github.com/goliatone/go-formsync/pkg/schema"
)

// Binder is handed every rendered radio group together with its field
// container, so change events on that group can be routed to whatever
// manages its dependent questions.
type Binder interface {
	BindTrigger(field schema.Field, container *html.Node)
}

// BinderFunc adapts a function into a Binder.
type BinderFunc func(field schema.Field, container *html.Node)

// BindTrigger delegates to the underlying function.
func (fn BinderFunc) BindTrigger(field schema.Field, container *html.Node) {
	fn(field, container)
}

// NopBinder discards every binding. Useful for static previews.
var NopBinder Binder = BinderFunc(func(schema.Field, *html.Node) {})
