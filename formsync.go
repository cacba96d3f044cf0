// Package formsync keeps a JSON form schema and the HTML form rendered from it
// in sync. The root package wires the building blocks under pkg/ together:
// loading schemas, importing them from OpenAPI documents, and rendering a
// session snapshot through a named output.
package formsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	internalLoader "github.com/goliatone/go-formsync/internal/openapi/loader"
	internalParser "github.com/goliatone/go-formsync/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-formsync/pkg/openapi"
	"github.com/goliatone/go-formsync/pkg/render"
	"github.com/goliatone/go-formsync/pkg/renderers/vanilla"
	"github.com/goliatone/go-formsync/pkg/schema"
	"github.com/goliatone/go-formsync/pkg/session"
)

// ErrUnknownOperation is returned by ImportOpenAPI when the document has no
// operation with the requested id.
var ErrUnknownOperation = errors.New("formsync: unknown operation")

// NewLoader constructs an OpenAPI loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	return internalLoader.New(pkgopenapi.NewLoaderOptions(options...))
}

// NewParser constructs an OpenAPI parser backed by kin-openapi.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalParser.New(pkgopenapi.NewParserOptions(options...))
}

// ImportOpenAPI loads the OpenAPI document at src and maps the request body
// of operationID onto a form schema.
func ImportOpenAPI(ctx context.Context, src schema.Source, operationID string, options ...pkgopenapi.FormOption) (pkgopenapi.Conversion, error) {
	doc, err := NewLoader().Load(ctx, src)
	if err != nil {
		return pkgopenapi.Conversion{}, err
	}
	return ImportOpenAPIDocument(ctx, doc, operationID, options...)
}

// ImportOpenAPIDocument is ImportOpenAPI for an already loaded document.
func ImportOpenAPIDocument(ctx context.Context, doc pkgopenapi.Document, operationID string, options ...pkgopenapi.FormOption) (pkgopenapi.Conversion, error) {
	operations, err := NewParser().Operations(ctx, doc)
	if err != nil {
		return pkgopenapi.Conversion{}, err
	}
	op, ok := operations[operationID]
	if !ok {
		ids := make([]string, 0, len(operations))
		for id := range operations {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return pkgopenapi.Conversion{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownOperation, operationID, strings.Join(ids, ", "))
	}
	return pkgopenapi.FormFromOperation(op, options...)
}

// NewRegistry returns a registry holding the built-in outputs: the vanilla
// page, the bare form fragment and the JSON text.
func NewRegistry(options ...vanilla.Option) (*render.Registry, error) {
	page, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	for _, output := range []render.Output{page, render.NewFragmentOutput(), render.NewTextOutput()} {
		if err := registry.Register(output); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Render initialises a session for doc and renders it through the named
// output. An empty name selects "vanilla".
func Render(ctx context.Context, doc schema.FormSchema, outputName string, registry *render.Registry, options ...session.Option) ([]byte, error) {
	if registry == nil {
		return nil, errors.New("formsync: registry is required")
	}
	if outputName == "" {
		outputName = "vanilla"
	}
	output, err := registry.Get(outputName)
	if err != nil {
		return nil, err
	}

	s := session.New(doc, options...)
	if err := s.Init(); err != nil {
		return nil, err
	}
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return output.Render(ctx, snapshot)
}

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the built-in stylesheet.
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}
