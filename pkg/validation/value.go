// Package validation checks documents and submitted values against the rules
// a browser would enforce from the rendered constraint attributes. It is never
// called on the render path.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/goliatone/go-formsync/pkg/schema"
)

// Rule names the constraint a value failed.
type Rule string

const (
	RuleRequired  Rule = "required"
	RuleMinLength Rule = "minLength"
	RuleMaxLength Rule = "maxLength"
	RulePattern   Rule = "pattern"
	RuleMin       Rule = "min"
	RuleMax       Rule = "max"
	RuleType      Rule = "type"
	RuleOption    Rule = "option"
)

// ValueError reports a value rejected by one of a field's constraints.
type ValueError struct {
	FieldID string
	Rule    Rule
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.FieldID, e.Message)
}

// Input types each constraint applies to. Browsers ignore the attribute on
// any other type.
var (
	lengthTypes = map[schema.FieldType]bool{
		schema.FieldTypeText:     true,
		schema.FieldTypeEmail:    true,
		schema.FieldTypePassword: true,
		schema.FieldTypeTel:      true,
		schema.FieldTypeURL:      true,
		schema.FieldTypeTextarea: true,
	}
	patternTypes = map[schema.FieldType]bool{
		schema.FieldTypeText:     true,
		schema.FieldTypeEmail:    true,
		schema.FieldTypePassword: true,
		schema.FieldTypeTel:      true,
		schema.FieldTypeURL:      true,
	}
	rangeTypes = map[schema.FieldType]bool{
		schema.FieldTypeNumber: true,
		schema.FieldTypeDate:   true,
		schema.FieldTypeTime:   true,
	}
)

// emailPattern is the HTML "valid e-mail address" production.
var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// ValidateValue checks a single submitted value. Empty optional values pass
// without further checks, matching browser constraint validation.
func ValidateValue(field schema.Field, value string) error {
	if value == "" {
		if field.Required {
			return fail(field, RuleRequired, "a value is required")
		}
		return nil
	}

	if err := validateType(field, value); err != nil {
		return err
	}

	c := field.Constraints
	if lengthTypes[field.Type] {
		length := utf8.RuneCountInString(value)
		if c.MinLength != nil && length < *c.MinLength {
			return fail(field, RuleMinLength, fmt.Sprintf("must be at least %d characters", *c.MinLength))
		}
		if c.MaxLength != nil && length > *c.MaxLength {
			return fail(field, RuleMaxLength, fmt.Sprintf("must be at most %d characters", *c.MaxLength))
		}
	}
	if patternTypes[field.Type] && c.Pattern != "" {
		// Patterns the engine cannot compile are ignored, as browsers do.
		if re, err := regexp.Compile("^(?:" + c.Pattern + ")$"); err == nil && !re.MatchString(value) {
			return fail(field, RulePattern, fmt.Sprintf("must match %s", c.Pattern))
		}
	}
	if rangeTypes[field.Type] {
		if c.Min != nil && compare(value, c.Min) < 0 {
			return fail(field, RuleMin, rangeMessage(field.Type, "at least", "or later", c.Min))
		}
		if c.Max != nil && compare(value, c.Max) > 0 {
			return fail(field, RuleMax, rangeMessage(field.Type, "at most", "or earlier", c.Max))
		}
	}
	return nil
}

// ValidateValues checks the selections of a multi-choice checkbox group.
func ValidateValues(field schema.Field, values []string) error {
	if len(values) == 0 {
		if field.Required {
			return fail(field, RuleRequired, "select at least one option")
		}
		return nil
	}
	for _, value := range values {
		if !hasOption(field, value) {
			return fail(field, RuleOption, fmt.Sprintf("%q is not an option", value))
		}
	}
	return nil
}

// Validator returns a closure suitable for interactive prompts.
func Validator(field schema.Field) func(string) error {
	return func(value string) error {
		return ValidateValue(field, value)
	}
}

func validateType(field schema.Field, value string) error {
	switch field.Type {
	case schema.FieldTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fail(field, RuleType, "must be a number")
		}
	case schema.FieldTypeEmail:
		if !emailPattern.MatchString(value) {
			return fail(field, RuleType, "must be an email address")
		}
	case schema.FieldTypeURL:
		parsed, err := url.ParseRequestURI(value)
		if err != nil || parsed.Scheme == "" {
			return fail(field, RuleType, "must be an absolute URL")
		}
	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		if field.HasOptions() && !hasOption(field, value) {
			return fail(field, RuleOption, fmt.Sprintf("%q is not an option", value))
		}
	case schema.FieldTypeCheckbox:
		if !field.HasOptions() && value != "yes" && value != "no" {
			return fail(field, RuleOption, `must be "yes" or "no"`)
		}
		if field.HasOptions() && !hasOption(field, value) {
			return fail(field, RuleOption, fmt.Sprintf("%q is not an option", value))
		}
	}
	return nil
}

func rangeMessage(fieldType schema.FieldType, number, chrono string, bound *schema.Bound) string {
	if fieldType == schema.FieldTypeNumber {
		return fmt.Sprintf("must be %s %s", number, bound)
	}
	return fmt.Sprintf("must be %s %s", bound, chrono)
}

// compare orders value against bound numerically when both parse as numbers
// and lexically otherwise, which is correct for ISO dates and times.
func compare(value string, bound *schema.Bound) int {
	if limit, ok := bound.Float(); ok {
		if number, err := strconv.ParseFloat(value, 64); err == nil {
			switch {
			case number < limit:
				return -1
			case number > limit:
				return 1
			default:
				return 0
			}
		}
	}
	switch {
	case value < bound.String():
		return -1
	case value > bound.String():
		return 1
	default:
		return 0
	}
}

func hasOption(field schema.Field, value string) bool {
	for _, option := range field.Options {
		if option.Value == value {
			return true
		}
	}
	return false
}

func fail(field schema.Field, rule Rule, message string) error {
	return &ValueError{FieldID: field.ID, Rule: rule, Message: message}
}
