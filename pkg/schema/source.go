package schema

import (
	"path"
	"path/filepath"
	"strings"
)

// Source names where a schema or OpenAPI document is read from.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind tells a loader how to resolve a Location.
type SourceKind string

const (
	// SourceKindFile locations are paths on the local disk.
	SourceKindFile SourceKind = "file"
	// SourceKindFS locations are slash-separated names inside an fs.FS.
	SourceKindFS SourceKind = "fs"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }

func (s source) Location() string { return s.location }

func (s source) String() string { return string(s.kind) + ":" + s.location }

// SourceFromFile returns a Source for a path on disk.
func SourceFromFile(p string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(p)}
}

// SourceFromFS returns a Source for name inside an fs.FS. The name is cleaned
// and any leading slash dropped so it satisfies fs.ValidPath.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: strings.TrimPrefix(path.Clean("/"+name), "/")}
}
