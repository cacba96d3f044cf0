package render

import (
	"fmt"

	"github.com/goliatone/go-formsync/pkg/schema"
)

// UnsupportedFieldTypeError is recorded when a descriptor declares a type the
// renderer does not recognise. The field still renders as an empty, labelled
// container.
type UnsupportedFieldTypeError struct {
	FieldID string
	Type    schema.FieldType
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("render: unsupported field type %q for field %q", e.Type, e.FieldID)
}

// DiagnosticHandler receives non-fatal rendering problems.
type DiagnosticHandler func(err error)
