package main

import (
	"fmt"
	"io"
	"os"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync/pkg/renderers/vanilla"
)

// themeFlags select an optional theme manifest for the page output.
type themeFlags struct {
	manifest string
	name     string
	variant  string
}

func (f *themeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.manifest, "theme", "", "Theme manifest (YAML: name, version, tokens, templates, assets, variants)")
	cmd.Flags().StringVar(&f.name, "theme-name", "", "Theme to select (default: the manifest's)")
	cmd.Flags().StringVar(&f.variant, "variant", "", "Theme variant")
}

// options returns the vanilla options selecting the configured theme.
func (f *themeFlags) options() ([]vanilla.Option, error) {
	if f.manifest == "" {
		return nil, nil
	}
	data, err := os.ReadFile(f.manifest)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	var manifest theme.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode theme %s: %w", f.manifest, err)
	}
	selector, err := vanilla.NewManifestSelector(&manifest)
	if err != nil {
		return nil, err
	}
	return []vanilla.Option{vanilla.WithThemeSelector(selector, f.name, f.variant)}, nil
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
