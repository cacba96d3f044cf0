package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	pkgopenapi "github.com/goliatone/go-formsync/pkg/openapi"
	"github.com/goliatone/go-formsync/pkg/schema"
)

func loadFixture(t *testing.T) pkgopenapi.Document {
	t.Helper()
	path := filepath.Join("testdata", "signup.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return pkgopenapi.MustNewDocument(schema.SourceFromFile(path), data)
}

func TestOperationsExtractsRequestBodies(t *testing.T) {
	p := New(pkgopenapi.NewParserOptions())
	operations, err := p.Operations(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}

	if _, ok := operations["get:/health"]; !ok {
		t.Fatalf("expected operation without id keyed by method and path, got %v", keys(operations))
	}

	signup, ok := operations["signup"]
	if !ok {
		t.Fatalf("expected signup operation, got %v", keys(operations))
	}
	if signup.Method != "POST" || signup.Path != "/signup" || signup.Summary != "Create an account" {
		t.Fatalf("unexpected operation metadata %+v", signup)
	}

	body := signup.RequestBody
	if body.Type != "object" {
		t.Fatalf("expected allOf to contribute the object type, got %q", body.Type)
	}
	if diff := cmp.Diff([]string{"email", "plan"}, body.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if len(body.Properties) != 5 {
		t.Fatalf("expected merged properties, got %d", len(body.Properties))
	}
	hasCompany := body.Properties["hasCompany"]
	if diff := cmp.Diff([]any{"company"}, hasCompany.Extensions[pkgopenapi.ExtensionDependents]); diff != "" {
		t.Fatalf("dependents extension mismatch (-want +got):\n%s", diff)
	}
	seats := body.Properties["seats"]
	if seats.Minimum == nil || *seats.Minimum != 1 || seats.Maximum == nil || *seats.Maximum != 500 {
		t.Fatalf("expected numeric bounds on seats, got %s", seats.DebugString())
	}
	if _, ok := seats.Extensions["x-ignored"]; ok {
		t.Fatalf("foreign extensions must be dropped")
	}
	company := body.Properties["company"]
	if company.MinLength == nil || *company.MinLength != 2 || company.MaxLength == nil || *company.MaxLength != 80 {
		t.Fatalf("expected length bounds on company")
	}
}

func TestOperationsFeedFormConversion(t *testing.T) {
	operations, err := New(pkgopenapi.NewParserOptions()).Operations(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	conversion, err := pkgopenapi.FormFromOperation(operations["signup"])
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	var ids []string
	for _, field := range conversion.Form.Fields {
		ids = append(ids, field.ID)
	}
	if diff := cmp.Diff([]string{"email", "plan", "hasCompany", "seats"}, ids); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	trigger := conversion.Form.Fields[2]
	if trigger.Type != schema.FieldTypeRadio || len(trigger.DependentQuestions) != 1 || trigger.DependentQuestions[0].ID != "company" {
		t.Fatalf("expected hasCompany to reveal company, got %+v", trigger)
	}
}

func TestOperationsRejectsInvalidInput(t *testing.T) {
	p := New(pkgopenapi.NewParserOptions())
	ctx := context.Background()

	if _, err := p.Operations(ctx, pkgopenapi.Document{}); err == nil {
		t.Fatalf("expected empty document to fail")
	}
	broken := pkgopenapi.MustNewDocument(schema.SourceFromFS("broken.yaml"), []byte("openapi: [unterminated"))
	if _, err := p.Operations(ctx, broken); err == nil {
		t.Fatalf("expected malformed document to fail")
	}
	noPaths := pkgopenapi.MustNewDocument(schema.SourceFromFS("empty.yaml"), []byte("openapi: 3.0.0\ninfo: {title: t, version: '1'}\npaths: {}\n"))
	if _, err := p.Operations(ctx, noPaths); err == nil {
		t.Fatalf("expected document without operations to fail")
	}
}

func TestConvertSchemaHandlesRecursiveReferences(t *testing.T) {
	const document = `{
  "openapi": "3.0.0",
  "info": { "title": "Cycle", "version": "1.0.0" },
  "paths": {},
  "components": {
    "schemas": {
      "PublishingHouse": {
        "type": "object",
        "properties": {
          "headquarters": { "$ref": "#/components/schemas/Headquarters" }
        }
      },
      "Headquarters": {
        "type": "object",
        "properties": {
          "publisher": { "$ref": "#/components/schemas/PublishingHouse" }
        }
      }
    }
  }
}`

	doc, err := openapi3.NewLoader().LoadFromData([]byte(document))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}

	converted := convertSchema(doc.Components.Schemas["PublishingHouse"], nil)
	headquarters, ok := converted.Properties["headquarters"]
	if !ok {
		t.Fatalf("expected headquarters property")
	}
	publisher, ok := headquarters.Properties["publisher"]
	if !ok {
		t.Fatalf("expected publisher property on headquarters")
	}
	if publisher.Ref != "#/components/schemas/PublishingHouse" || len(publisher.Properties) != 0 {
		t.Fatalf("expected the cycle to stop at a bare reference, got %s", publisher.DebugString())
	}
}

func keys(operations map[string]pkgopenapi.Operation) []string {
	out := make([]string, 0, len(operations))
	for key := range operations {
		out = append(out, key)
	}
	return out
}
