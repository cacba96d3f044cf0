package openapi_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgopenapi "github.com/goliatone/go-formsync/pkg/openapi"
	"github.com/goliatone/go-formsync/pkg/schema"
)

func floatPtr(v float64) *float64 { return &v }

func signupOperation() pkgopenapi.Operation {
	body := pkgopenapi.Schema{
		Type:     "object",
		Required: []string{"email", "plan"},
		Properties: map[string]pkgopenapi.Schema{
			"email": {Type: "string", Format: "email", Extensions: map[string]any{pkgopenapi.ExtensionOrder: float64(1)}},
			"displayName": {
				Type:       "string",
				MinLength:  schema.IntPtr(2),
				MaxLength:  schema.IntPtr(40),
				Extensions: map[string]any{pkgopenapi.ExtensionOrder: float64(2)},
			},
			"plan": {Type: "string", Enum: []any{"free", "pro"}, Extensions: map[string]any{pkgopenapi.ExtensionOrder: float64(3)}},
			"hasCompany": {
				Type:  "boolean",
				Title: "Signing up for a company?",
				Extensions: map[string]any{
					pkgopenapi.ExtensionOrder:      float64(4),
					pkgopenapi.ExtensionDependents: []any{"company", "seats"},
				},
			},
			"company":    {Type: "string"},
			"seats":      {Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(500)},
			"newsletter": {Type: "boolean"},
			"address":    {Type: "object", Properties: map[string]pkgopenapi.Schema{"city": {Type: "string"}}},
			"bio":        {Type: "string", Extensions: map[string]any{pkgopenapi.ExtensionType: "textarea"}},
		},
	}
	return pkgopenapi.MustNewOperation("signup", "POST", "/signup", body)
}

func TestFormFromOperation(t *testing.T) {
	op := signupOperation()
	op.Summary = "Create an account"

	got, err := pkgopenapi.FormFromOperation(op)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	want := schema.FormSchema{
		Title: "Create an account",
		Fields: []schema.Field{
			{ID: "email", Label: "Email", Type: schema.FieldTypeEmail, Required: true},
			{ID: "displayName", Label: "Display name", Type: schema.FieldTypeText, Constraints: schema.Constraints{MinLength: schema.IntPtr(2), MaxLength: schema.IntPtr(40)}},
			{ID: "plan", Label: "Plan", Type: schema.FieldTypeSelect, Required: true, Options: []schema.Option{{Value: "free", Label: "free"}, {Value: "pro", Label: "pro"}}},
			{
				ID:      "hasCompany",
				Label:   "Signing up for a company?",
				Type:    schema.FieldTypeRadio,
				Options: []schema.Option{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}},
				DependentQuestions: []schema.Field{
					{ID: "company", Label: "Company", Type: schema.FieldTypeText},
					{ID: "seats", Label: "Seats", Type: schema.FieldTypeNumber, Constraints: schema.Constraints{Min: schema.NumberBound(1), Max: schema.NumberBound(500)}},
				},
			},
			{ID: "bio", Label: "Bio", Type: schema.FieldTypeTextarea},
			{ID: "newsletter", Label: "Newsletter", Type: schema.FieldTypeCheckbox},
		},
	}
	if diff := cmp.Diff(want, got.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]pkgopenapi.Skipped{{Property: "address", Reason: "nested object"}}, got.Skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestFormFromOperationTitleOverride(t *testing.T) {
	got, err := pkgopenapi.FormFromOperation(signupOperation(), pkgopenapi.WithTitle("Join"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Form.Title != "Join" {
		t.Fatalf("expected title override, got %q", got.Form.Title)
	}

	got, err = pkgopenapi.FormFromOperation(signupOperation())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Form.Title != "signup" {
		t.Fatalf("expected operation id as fallback title, got %q", got.Form.Title)
	}
}

func TestFormFromOperationErrors(t *testing.T) {
	empty := pkgopenapi.MustNewOperation("ping", "GET", "/ping", pkgopenapi.Schema{})
	if _, err := pkgopenapi.FormFromOperation(empty); !errors.Is(err, pkgopenapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}

	unknown := signupOperation()
	unknown.RequestBody.Properties["plan"] = pkgopenapi.Schema{
		Type:       "boolean",
		Extensions: map[string]any{pkgopenapi.ExtensionDependents: []any{"missing"}},
	}
	if _, err := pkgopenapi.FormFromOperation(unknown); err == nil {
		t.Fatalf("expected unknown dependent to fail")
	}

	cycle := pkgopenapi.MustNewOperation("loop", "POST", "/loop", pkgopenapi.Schema{
		Type: "object",
		Properties: map[string]pkgopenapi.Schema{
			"a": {Type: "boolean", Extensions: map[string]any{pkgopenapi.ExtensionDependents: []any{"b"}}},
			"b": {Type: "boolean", Extensions: map[string]any{pkgopenapi.ExtensionDependents: []any{"a"}}},
		},
	})
	if _, err := pkgopenapi.FormFromOperation(cycle); err == nil {
		t.Fatalf("expected dependent cycle to fail")
	}
}
