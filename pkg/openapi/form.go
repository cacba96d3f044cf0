package openapi

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/goliatone/go-formsync/pkg/schema"
)

// Extension keys read from request body properties.
const (
	ExtensionType       = "x-formsync-type"
	ExtensionLabel      = "x-formsync-label"
	ExtensionOrder      = "x-formsync-order"
	ExtensionDependents = "x-dependent-questions"
)

// ErrNoRequestBody is returned for operations without an object request body.
var ErrNoRequestBody = errors.New("openapi: operation has no object request body")

// Skipped records a property that could not be mapped onto a field.
type Skipped struct {
	Property string
	Reason   string
}

// Conversion is the result of mapping an operation onto a form schema.
type Conversion struct {
	Form    schema.FormSchema
	Skipped []Skipped
}

// FormOption customises FormFromOperation.
type FormOption func(*formConfig)

type formConfig struct {
	title string
}

// WithTitle overrides the form title. Defaults to the operation summary, then
// its id.
func WithTitle(title string) FormOption {
	return func(cfg *formConfig) {
		cfg.title = strings.TrimSpace(title)
	}
}

// FormFromOperation maps the top-level properties of op's request body onto
// field descriptors.
//
// String formats pick the input type (email, uri, date, time, password,
// binary), enums become selects, booleans become Yes/No checkboxes, arrays of
// enums become multi-choice checkboxes and numbers keep their bounds.
// ExtensionType overrides the derived type. A property listing sibling names
// under ExtensionDependents becomes a Yes/No radio whose dependent questions
// are those siblings. Properties that have no field equivalent, such as
// nested objects, are reported in Conversion.Skipped.
func FormFromOperation(op Operation, options ...FormOption) (Conversion, error) {
	cfg := formConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	body := op.RequestBody
	if body.Type != "object" && len(body.Properties) == 0 {
		return Conversion{}, fmt.Errorf("%w: %s", ErrNoRequestBody, op.ID)
	}

	title := cfg.title
	if title == "" {
		title = strings.TrimSpace(op.Summary)
	}
	if title == "" {
		title = op.ID
	}

	b := &builder{
		body:      body,
		dependent: make(map[string]string),
	}
	if err := b.collectDependents(); err != nil {
		return Conversion{}, err
	}

	fields := make([]schema.Field, 0, len(body.Properties))
	for _, name := range orderedProperties(body.Properties) {
		if _, nested := b.dependent[name]; nested {
			continue
		}
		field, ok, err := b.field(name)
		if err != nil {
			return Conversion{}, err
		}
		if ok {
			fields = append(fields, field)
		}
	}

	return Conversion{
		Form:    schema.FormSchema{Title: title, Fields: fields},
		Skipped: b.skipped,
	}, nil
}

type builder struct {
	body      Schema
	dependent map[string]string
	skipped   []Skipped
}

// collectDependents records which property owns each dependent so owned
// properties are emitted only under their trigger.
func (b *builder) collectDependents() error {
	for _, owner := range orderedProperties(b.body.Properties) {
		for _, name := range stringList(b.body.Properties[owner].Extensions[ExtensionDependents]) {
			if _, ok := b.body.Properties[name]; !ok {
				return fmt.Errorf("openapi: property %q lists unknown dependent %q", owner, name)
			}
			if name == owner {
				return fmt.Errorf("openapi: property %q lists itself as a dependent", owner)
			}
			if previous, taken := b.dependent[name]; taken {
				return fmt.Errorf("openapi: property %q is a dependent of both %q and %q", name, previous, owner)
			}
			b.dependent[name] = owner
		}
	}
	for name := range b.dependent {
		seen := map[string]bool{name: true}
		for owner, ok := b.dependent[name]; ok; owner, ok = b.dependent[owner] {
			if seen[owner] {
				return fmt.Errorf("openapi: dependent cycle through %q", owner)
			}
			seen[owner] = true
		}
	}
	return nil
}

func (b *builder) field(name string) (schema.Field, bool, error) {
	prop := b.body.Properties[name]

	field := schema.Field{
		ID:       name,
		Label:    propertyLabel(name, prop),
		Required: b.body.IsRequired(name),
	}

	fieldType, reason := deriveType(prop)
	if override, ok := prop.Extensions[ExtensionType].(string); ok && strings.TrimSpace(override) != "" {
		fieldType, reason = schema.FieldType(strings.TrimSpace(override)), ""
	}
	dependents := stringList(prop.Extensions[ExtensionDependents])
	if len(dependents) > 0 && fieldType != schema.FieldTypeRadio {
		fieldType, reason = schema.FieldTypeRadio, ""
	}
	if reason != "" {
		b.skipped = append(b.skipped, Skipped{Property: name, Reason: reason})
		return schema.Field{}, false, nil
	}
	field.Type = fieldType

	switch {
	case len(prop.Enum) > 0:
		field.Options = enumOptions(prop.Enum)
	case prop.Items != nil && len(prop.Items.Enum) > 0:
		field.Options = enumOptions(prop.Items.Enum)
	case fieldType == schema.FieldTypeRadio:
		field.Options = []schema.Option{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}}
	}

	applyConstraints(&field, prop)

	for _, dependent := range dependents {
		child, ok, err := b.field(dependent)
		if err != nil {
			return schema.Field{}, false, err
		}
		if ok {
			field.DependentQuestions = append(field.DependentQuestions, child)
		}
	}
	return field, true, nil
}

func deriveType(prop Schema) (schema.FieldType, string) {
	if len(prop.Enum) > 0 {
		return schema.FieldTypeSelect, ""
	}
	switch prop.Type {
	case "boolean":
		return schema.FieldTypeCheckbox, ""
	case "integer", "number":
		return schema.FieldTypeNumber, ""
	case "string", "":
		if prop.Type == "" && len(prop.Properties) > 0 {
			return "", "nested object"
		}
		return stringType(prop.Format), ""
	case "array":
		if prop.Items != nil && len(prop.Items.Enum) > 0 {
			return schema.FieldTypeCheckbox, ""
		}
		return "", "array without enumerated items"
	case "object":
		return "", "nested object"
	default:
		return "", fmt.Sprintf("unsupported schema type %q", prop.Type)
	}
}

func stringType(format string) schema.FieldType {
	switch strings.ToLower(format) {
	case "email", "idn-email":
		return schema.FieldTypeEmail
	case "uri", "url", "iri":
		return schema.FieldTypeURL
	case "date":
		return schema.FieldTypeDate
	case "time":
		return schema.FieldTypeTime
	case "password":
		return schema.FieldTypePassword
	case "binary":
		return schema.FieldTypeFile
	case "color":
		return schema.FieldTypeColor
	case "phone", "tel":
		return schema.FieldTypeTel
	case "textarea", "multiline":
		return schema.FieldTypeTextarea
	default:
		return schema.FieldTypeText
	}
}

func applyConstraints(field *schema.Field, prop Schema) {
	if prop.MinLength != nil && *prop.MinLength > 0 {
		value := *prop.MinLength
		field.MinLength = &value
	}
	if prop.MaxLength != nil {
		value := *prop.MaxLength
		field.MaxLength = &value
	}
	if prop.Pattern != "" {
		field.Pattern = prop.Pattern
	}
	if prop.Minimum != nil {
		field.Min = schema.NumberBound(*prop.Minimum)
	}
	if prop.Maximum != nil {
		field.Max = schema.NumberBound(*prop.Maximum)
	}
}

func propertyLabel(name string, prop Schema) string {
	if label, ok := prop.Extensions[ExtensionLabel].(string); ok && strings.TrimSpace(label) != "" {
		return strings.TrimSpace(label)
	}
	if title := strings.TrimSpace(prop.Title); title != "" {
		return title
	}
	return humanize(name)
}

// humanize turns "firstName" or "first_name" into "First name".
func humanize(name string) string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	if len(words) == 0 {
		return name
	}
	sentence := []rune(strings.Join(words, " "))
	sentence[0] = unicode.ToUpper(sentence[0])
	return string(sentence)
}

func enumOptions(values []any) []schema.Option {
	options := make([]schema.Option, 0, len(values))
	for _, value := range values {
		text := enumString(value)
		options = append(options, schema.Option{Value: text, Label: text})
	}
	return options
}

func enumString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1e15 {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprint(typed)
	default:
		return fmt.Sprint(typed)
	}
}

// orderedProperties sorts by ExtensionOrder, properties without one last, then
// by name. Decoded OpenAPI properties carry no declaration order.
func orderedProperties(props map[string]Schema) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, hasI := order(props[names[i]])
		oj, hasJ := order(props[names[j]])
		switch {
		case hasI && hasJ && oi != oj:
			return oi < oj
		case hasI != hasJ:
			return hasI
		default:
			return names[i] < names[j]
		}
	})
	return names
}

func order(prop Schema) (float64, bool) {
	switch typed := prop.Extensions[ExtensionOrder].(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	default:
		return 0, false
	}
}

func stringList(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if text, ok := item.(string); ok && text != "" {
				out = append(out, text)
			}
		}
		return out
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	default:
		return nil
	}
}
