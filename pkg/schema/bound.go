package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Bound holds a min/max constraint exactly as authored. Numbers stay numbers
// and strings (dates, times) stay strings so a parse/serialize cycle does not
// change the document.
type Bound struct {
	raw     string
	numeric bool
}

// NumberBound builds a numeric bound.
func NumberBound(value float64) *Bound {
	return &Bound{raw: strconv.FormatFloat(value, 'f', -1, 64), numeric: true}
}

// StringBound builds a textual bound such as "2024-01-01".
func StringBound(value string) *Bound {
	return &Bound{raw: value}
}

// String returns the bound as it appears in an HTML attribute.
func (b Bound) String() string {
	return b.raw
}

// IsNumber reports whether the bound was authored as a JSON number.
func (b Bound) IsNumber() bool {
	return b.numeric
}

// Float parses the bound as a number.
func (b Bound) Float() (float64, bool) {
	value, err := strconv.ParseFloat(b.raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (b Bound) MarshalJSON() ([]byte, error) {
	if b.numeric {
		return []byte(b.raw), nil
	}
	return json.Marshal(b.raw)
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*b = Bound{raw: value}
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("bound must be a number or a string: %w", err)
	}
	*b = Bound{raw: number.String(), numeric: true}
	return nil
}
