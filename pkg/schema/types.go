package schema

import (
	"bytes"
	"encoding/json"
)

// FieldType enumerates the control kinds a field descriptor may declare.
// Values outside the enumeration are kept as-is so the renderer can report
// them instead of the parser rejecting the whole document.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
	FieldTypeTel      FieldType = "tel"
	FieldTypeDate     FieldType = "date"
	FieldTypeTime     FieldType = "time"
	FieldTypeNumber   FieldType = "number"
	FieldTypeColor    FieldType = "color"
	FieldTypeURL      FieldType = "url"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeFile     FieldType = "file"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
)

// FieldTypes lists every recognised type in declaration order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypePassword,
	FieldTypeTel,
	FieldTypeDate,
	FieldTypeTime,
	FieldTypeNumber,
	FieldTypeColor,
	FieldTypeURL,
	FieldTypeTextarea,
	FieldTypeFile,
	FieldTypeSelect,
	FieldTypeRadio,
	FieldTypeCheckbox,
}

// Known reports whether t is one of the recognised field types.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Scalar reports whether t renders as a single-line <input> of the same type.
func (t FieldType) Scalar() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeTel,
		FieldTypeDate, FieldTypeTime, FieldTypeNumber, FieldTypeColor, FieldTypeURL:
		return true
	default:
		return false
	}
}

// FormSchema is the authoritative form document.
type FormSchema struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field describes a single control. Constraint keys are flattened onto the
// field object in the JSON representation.
type Field struct {
	ID       string    `json:"id"`
	Label    string    `json:"label,omitempty"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Constraints
	// Options is nil when the document omits the key. An empty, non-nil slice
	// means the key was present with no entries.
	Options            []Option `json:"options,omitempty"`
	DependentQuestions []Field  `json:"dependentQuestions,omitempty"`
}

// MarshalJSON keeps an explicitly empty options list in the output so the
// presence distinction survives a round trip.
func (f Field) MarshalJSON() ([]byte, error) {
	type plain Field
	out := struct {
		plain
		Options            *[]Option `json:"options,omitempty"`
		DependentQuestions []Field   `json:"dependentQuestions,omitempty"`
	}{plain: plain(f), DependentQuestions: f.DependentQuestions}
	if f.Options != nil {
		options := f.Options
		out.Options = &options
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// HasOptions reports whether the descriptor declared an options list.
func (f Field) HasOptions() bool {
	return f.Options != nil
}

// HasDependents reports whether the descriptor declares dependent questions.
func (f Field) HasDependents() bool {
	return len(f.DependentQuestions) > 0
}

// Option is one entry of a select, radio, or multi-checkbox field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Constraints are the native input constraints a field may carry. A nil
// pointer or empty pattern means the constraint is absent.
type Constraints struct {
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Min       *Bound `json:"min,omitempty"`
	Max       *Bound `json:"max,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

// Empty reports whether no constraint is present.
func (c Constraints) Empty() bool {
	return c.MinLength == nil && c.MaxLength == nil && c.Min == nil && c.Max == nil && c.Pattern == ""
}

// IntPtr is a small helper for building constraints in code.
func IntPtr(value int) *int {
	return &value
}
