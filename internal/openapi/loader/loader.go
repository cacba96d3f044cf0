// Package loader reads OpenAPI documents from disk or from an fs.FS.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	pkgopenapi "github.com/goliatone/go-formsync/pkg/openapi"
	"github.com/goliatone/go-formsync/pkg/schema"
)

// Loader implements pkgopenapi.Loader. Build it through formsync.NewLoader.
type Loader struct {
	fsys fs.FS
}

var _ pkgopenapi.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options.
func New(options pkgopenapi.LoaderOptions) pkgopenapi.Loader {
	return &Loader{fsys: options.FileSystem}
}

// Load reads src and wraps the bytes in a Document.
func (l *Loader) Load(ctx context.Context, src schema.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgopenapi.Document{}, err
	}
	location := src.Location()
	if location == "" {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: %s source has no location", src.Kind())
	}

	data, err := l.read(src.Kind(), location)
	if err != nil {
		return pkgopenapi.Document{}, err
	}
	return pkgopenapi.NewDocument(src, data)
}

func (l *Loader) read(kind schema.SourceKind, location string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch kind {
	case schema.SourceKindFile:
		data, err = os.ReadFile(location)
	case schema.SourceKindFS:
		if l.fsys == nil {
			return nil, errors.New("openapi loader: no filesystem configured for fs sources")
		}
		data, err = fs.ReadFile(l.fsys, location)
	default:
		return nil, fmt.Errorf("openapi loader: unsupported source kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("openapi loader: read %s: %w", location, err)
	}
	return data, nil
}
