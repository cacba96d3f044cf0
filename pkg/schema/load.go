package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load decodes an initial schema document authored as JSON or YAML. source is
// only used to label errors.
func Load(data []byte, source string) (FormSchema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return FormSchema{}, fmt.Errorf("schema: document %s is empty", source)
	}

	if json.Valid(data) {
		out, err := Parse(string(data))
		if err != nil {
			return FormSchema{}, fmt.Errorf("schema: load %s: %w", source, err)
		}
		return out, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return FormSchema{}, fmt.Errorf("schema: load %s: invalid JSON or YAML: %w", source, err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return FormSchema{}, fmt.Errorf("schema: load %s: document must be a mapping", source)
	}

	// yaml.v3 decodes string-keyed mappings into map[string]any, so the tree
	// can be routed through the JSON codec and share its field handling.
	payload, err := json.Marshal(raw)
	if err != nil {
		return FormSchema{}, fmt.Errorf("schema: load %s: %w", source, err)
	}
	out, err := Parse(string(payload))
	if err != nil {
		return FormSchema{}, fmt.Errorf("schema: load %s: %w", source, err)
	}
	return out, nil
}

// LoadFile reads and decodes a schema document from disk.
func LoadFile(path string) (FormSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FormSchema{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Load(data, path)
}

// LoadFS reads and decodes a schema document from fsys.
func LoadFS(fsys fs.FS, name string) (FormSchema, error) {
	if fsys == nil {
		return FormSchema{}, fmt.Errorf("schema: filesystem is not configured")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return FormSchema{}, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return Load(data, name)
}

// LoadSource resolves src through the matching loader.
func LoadSource(src Source, fsys fs.FS) (FormSchema, error) {
	if src == nil {
		return FormSchema{}, fmt.Errorf("schema: source is nil")
	}
	switch src.Kind() {
	case SourceKindFile:
		return LoadFile(src.Location())
	case SourceKindFS:
		return LoadFS(fsys, src.Location())
	default:
		return FormSchema{}, fmt.Errorf("schema: unsupported source kind %q", src.Kind())
	}
}
