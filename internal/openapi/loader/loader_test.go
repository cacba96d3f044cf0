package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	pkgopenapi "github.com/goliatone/go-formsync/pkg/openapi"
	"github.com/goliatone/go-formsync/pkg/schema"
)

const minimal = "openapi: 3.0.0\ninfo: {title: t, version: '1'}\npaths: {}\n"

func TestLoadFileAndFS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	if err := os.WriteFile(path, []byte(minimal), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithFileSystem(fstest.MapFS{
		"specs/api.yaml": {Data: []byte(minimal)},
	})))

	doc, err := l.Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if string(doc.Raw()) != minimal || doc.Location() != path {
		t.Fatalf("unexpected document from %s", doc.Location())
	}

	doc, err = l.Load(context.Background(), schema.SourceFromFS("specs/api.yaml"))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if string(doc.Raw()) != minimal {
		t.Fatalf("unexpected fs document")
	}
}

func TestLoadErrors(t *testing.T) {
	l := New(pkgopenapi.LoaderOptions{})
	ctx := context.Background()

	if _, err := l.Load(ctx, nil); err == nil {
		t.Fatalf("expected nil source to fail")
	}
	if _, err := l.Load(ctx, schema.SourceFromFS("api.yaml")); err == nil {
		t.Fatalf("expected fs source without filesystem to fail")
	}
	if _, err := l.Load(ctx, schema.SourceFromFile(filepath.Join(t.TempDir(), "missing.yaml"))); err == nil {
		t.Fatalf("expected missing file to fail")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := l.Load(cancelled, schema.SourceFromFile("api.yaml")); err == nil {
		t.Fatalf("expected cancelled context to fail")
	}
}
