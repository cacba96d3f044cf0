package render

import (
	"errors"
	"strconv"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formsync/internal/dom"
	"github.com/goliatone/go-formsync/pkg/schema"
)

const (
	// DefaultFormID is the id attribute of the generated <form>.
	DefaultFormID = "generatedForm"
	// DefaultSubmitLabel is the text of the trailing submit button.
	DefaultSubmitLabel = "Submit"

	fieldClass    = "form-field"
	requiredClass = "required"
	switchClass   = "yes-no-switch"
)

// ContainerID returns the id attribute of the container wrapping field id.
func ContainerID(fieldID string) string {
	return fieldID + "_container"
}

// ChoiceID returns the id attribute of the input for one option of a radio or
// checkbox group.
func ChoiceID(fieldID, value string) string {
	return fieldID + "_" + value
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLabelPolicy overrides the sanitizer applied to label markup.
func WithLabelPolicy(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.labels = policy
		}
	}
}

// WithFormID overrides the id of the generated form element.
func WithFormID(id string) Option {
	return func(r *Renderer) {
		if id != "" {
			r.formID = id
		}
	}
}

// WithSubmitLabel overrides the text of the submit button.
func WithSubmitLabel(label string) Option {
	return func(r *Renderer) {
		if label != "" {
			r.submitLabel = label
		}
	}
}

// WithDiagnosticHandler receives every non-fatal rendering problem in addition
// to the log entry.
func WithDiagnosticHandler(handler DiagnosticHandler) Option {
	return func(r *Renderer) {
		r.diagnostics = handler
	}
}

// Renderer builds node trees for fields and whole forms. It holds no state
// between calls.
type Renderer struct {
	logger      *zap.Logger
	labels      *bluemonday.Policy
	formID      string
	submitLabel string
	diagnostics DiagnosticHandler
}

// New constructs a Renderer applying any provided options.
func New(options ...Option) *Renderer {
	r := &Renderer{
		logger:      zap.NewNop(),
		labels:      DefaultLabelPolicy(),
		formID:      DefaultFormID,
		submitLabel: DefaultSubmitLabel,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// RenderForm builds the <form> for s: a heading, one container per top-level
// field in document order, and a submit button. Radio groups are reported to
// binder as they are built.
func (r *Renderer) RenderForm(s schema.FormSchema, binder Binder) *html.Node {
	form := dom.Element("form", "id", r.formID)

	title := dom.Element("h2")
	dom.Append(title, dom.Text(s.Title))
	dom.Append(form, title)

	for _, field := range s.Fields {
		dom.Append(form, r.RenderField(field, binder))
	}

	button := dom.Element("button", "type", "submit")
	dom.Append(button, dom.Text(r.submitLabel))
	dom.Append(form, button)

	return form
}

// RenderField builds the container for a single descriptor. The container is
// always returned, even for unknown types, so it stays addressable.
func (r *Renderer) RenderField(field schema.Field, binder Binder) *html.Node {
	if binder == nil {
		binder = NopBinder
	}

	container := dom.Element("div", "class", fieldClass, "id", ContainerID(field.ID))
	dom.Append(container, r.label(field))

	switch {
	case field.Type.Scalar():
		input := dom.Element("input", "type", string(field.Type), "id", field.ID, "name", field.ID)
		applyConstraints(input, field)
		dom.Append(container, input)

	case field.Type == schema.FieldTypeTextarea:
		input := dom.Element("textarea", "id", field.ID, "name", field.ID)
		applyConstraints(input, field)
		dom.Append(container, input)

	case field.Type == schema.FieldTypeFile:
		input := dom.Element("input", "type", "file", "id", field.ID, "name", field.ID)
		applyConstraints(input, field)
		dom.Append(container, input)

	case field.Type == schema.FieldTypeSelect:
		dom.Append(container, selectNode(field))

	case field.Type == schema.FieldTypeRadio:
		appendChoices(container, field.ID, "radio", field.Options)
		binder.BindTrigger(field, container)

	case field.Type == schema.FieldTypeCheckbox:
		if field.HasOptions() {
			appendChoices(container, field.ID, "checkbox", field.Options)
			break
		}
		// A checkbox without options renders as a Yes/No radio pair, not a
		// single checkbox. It is not a trigger.
		toggle := dom.Element("div", "class", switchClass)
		appendChoices(toggle, field.ID, "radio", yesNoOptions)
		dom.Append(container, toggle)

	default:
		r.report(&UnsupportedFieldTypeError{FieldID: field.ID, Type: field.Type})
	}

	return container
}

var yesNoOptions = []schema.Option{
	{Value: "yes", Label: "Yes"},
	{Value: "no", Label: "No"},
}

func (r *Renderer) label(field schema.Field) *html.Node {
	label := dom.Element("label", "for", field.ID)
	dom.Append(label, labelNodes(r.labels, field.Label)...)
	dom.Append(label, dom.Text(" "))
	if field.Required {
		marker := dom.Element("span", "class", requiredClass)
		dom.Append(marker, dom.Text("*"))
		dom.Append(label, marker)
	}
	return label
}

func (r *Renderer) report(err error) {
	var unsupported *UnsupportedFieldTypeError
	if errors.As(err, &unsupported) {
		r.logger.Warn("unsupported field type",
			zap.String("field", unsupported.FieldID),
			zap.String("type", string(unsupported.Type)),
		)
	} else {
		r.logger.Warn("render diagnostic", zap.Error(err))
	}
	if r.diagnostics != nil {
		r.diagnostics(err)
	}
}

func selectNode(field schema.Field) *html.Node {
	input := dom.Element("select", "id", field.ID, "name", field.ID)
	if field.Required {
		dom.SetAttr(input, "required", "")
	}
	for _, option := range field.Options {
		opt := dom.Element("option", "value", option.Value)
		dom.Append(opt, dom.Text(option.Label))
		dom.Append(input, opt)
	}
	return input
}

func appendChoices(parent *html.Node, fieldID, inputType string, options []schema.Option) {
	for _, option := range options {
		wrapper := dom.Element("div")
		id := ChoiceID(fieldID, option.Value)
		input := dom.Element("input", "type", inputType, "id", id, "name", fieldID, "value", option.Value)
		label := dom.Element("label", "for", id)
		dom.Append(label, dom.Text(option.Label))
		dom.Append(wrapper, input, label)
		dom.Append(parent, wrapper)
	}
}

// applyConstraints copies the native constraints present on field onto input.
// It is type-agnostic: constraints that mean nothing for the input type are
// still attached.
func applyConstraints(input *html.Node, field schema.Field) {
	if field.Required {
		dom.SetAttr(input, "required", "")
	}
	c := field.Constraints
	if c.MinLength != nil {
		dom.SetAttr(input, "minlength", strconv.Itoa(*c.MinLength))
	}
	if c.MaxLength != nil {
		dom.SetAttr(input, "maxlength", strconv.Itoa(*c.MaxLength))
	}
	if c.Min != nil {
		dom.SetAttr(input, "min", c.Min.String())
	}
	if c.Max != nil {
		dom.SetAttr(input, "max", c.Max.String())
	}
	if c.Pattern != "" {
		dom.SetAttr(input, "pattern", c.Pattern)
	}
}
