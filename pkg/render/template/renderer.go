package template

import (
	"io"
)

// TemplateRenderer is the subset of the github.com/goliatone/go-template
// engine contract used to render page shells.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
