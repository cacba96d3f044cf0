package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Flatten returns every descriptor in s depth-first, dependents following the
// field that declares them.
func Flatten(s FormSchema) []Field {
	var out []Field
	var walk func(fields []Field)
	walk = func(fields []Field) {
		for _, field := range fields {
			out = append(out, field)
			walk(field.DependentQuestions)
		}
	}
	walk(s.Fields)
	return out
}

// Issue is a single finding reported by Lint.
type Issue struct {
	Path    string `json:"path"`
	FieldID string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.FieldID == "" {
		return fmt.Sprintf("%s: %s", i.Path, i.Message)
	}
	return fmt.Sprintf("%s (%s): %s", i.Path, i.FieldID, i.Message)
}

// Lint checks a schema for the anomalies the renderer tolerates silently:
// duplicate ids across the flattened schema, unknown types, option-bearing
// types without options, and dependents declared where nothing can reveal
// them. It is never called on the render path.
func Lint(s FormSchema) []Issue {
	var issues []Issue
	seen := make(map[string]string)

	var walk func(fields []Field, prefix string)
	walk = func(fields []Field, prefix string) {
		for idx, field := range fields {
			path := prefix + "[" + strconv.Itoa(idx) + "]"
			id := strings.TrimSpace(field.ID)

			switch {
			case id == "":
				issues = append(issues, Issue{Path: path, Message: "missing id"})
			default:
				if first, ok := seen[id]; ok {
					issues = append(issues, Issue{
						Path:    path,
						FieldID: id,
						Message: fmt.Sprintf("duplicate id, first declared at %s", first),
					})
				} else {
					seen[id] = path
				}
			}

			if !field.Type.Known() {
				issues = append(issues, Issue{
					Path:    path,
					FieldID: id,
					Message: fmt.Sprintf("unsupported type %q", field.Type),
				})
			}

			switch field.Type {
			case FieldTypeSelect, FieldTypeRadio:
				if len(field.Options) == 0 {
					issues = append(issues, Issue{Path: path, FieldID: id, Message: "no options declared"})
				}
			}

			if field.HasDependents() && field.Type != FieldTypeRadio {
				issues = append(issues, Issue{
					Path:    path,
					FieldID: id,
					Message: "dependent questions are only revealed by radio fields",
				})
			}
			if field.Type == FieldTypeRadio && field.HasDependents() && !offersActivation(field) {
				issues = append(issues, Issue{
					Path:    path,
					FieldID: id,
					Message: `no option with value "yes"; dependents can never be revealed`,
				})
			}

			walk(field.DependentQuestions, path+".dependentQuestions")
		}
	}
	walk(s.Fields, "fields")
	return issues
}

func offersActivation(field Field) bool {
	for _, option := range field.Options {
		if option.Value == "yes" {
			return true
		}
	}
	return false
}
