package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync/pkg/schema"
)

const triggerJSON = `{"title":"Trigger","fields":[{"id":"a","label":"A","type":"radio","options":[{"value":"yes","label":"Yes"},{"value":"no","label":"No"}],"dependentQuestions":[{"id":"b","label":"B","type":"text"}]}]}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRenderFragment(t *testing.T) {
	path := writeFile(t, "trigger.json", triggerJSON)

	out, err := run(t, "render", path, "-r", "fragment")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, `<form id="generatedForm"><h2>Trigger</h2>`) {
		t.Fatalf("unexpected fragment %s", out)
	}
	if !strings.Contains(out, `id="a_container"`) || strings.Contains(out, `id="b_container"`) {
		t.Fatalf("expected only the trigger rendered, got %s", out)
	}
}

func TestRenderToFile(t *testing.T) {
	path := writeFile(t, "trigger.json", triggerJSON)
	target := filepath.Join(t.TempDir(), "page.html")

	if _, err := run(t, "render", path, "-o", target); err != nil {
		t.Fatalf("render: %v", err)
	}
	page, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(page), `<title>Trigger</title>`) {
		t.Fatalf("expected the page output, got %s", page)
	}
}

func TestRenderUnknownRenderer(t *testing.T) {
	path := writeFile(t, "trigger.json", triggerJSON)
	if _, err := run(t, "render", path, "-r", "pdf"); err == nil {
		t.Fatalf("expected unknown renderer to fail")
	}
}

func TestLint(t *testing.T) {
	clean := writeFile(t, "clean.json", triggerJSON)
	if out, err := run(t, "lint", clean); err != nil {
		t.Fatalf("lint clean: %v\n%s", err, out)
	}

	dup := writeFile(t, "dup.json", `{"title":"Dup","fields":[{"id":"x","type":"text"},{"id":"x","type":"email"}]}`)
	out, err := run(t, "lint", dup)
	if err == nil {
		t.Fatalf("expected duplicate ids to fail")
	}
	if !strings.Contains(out, "fields[1] (x): duplicate id") {
		t.Fatalf("unexpected lint output %s", out)
	}

	broken := writeFile(t, "broken.json", "{\n  \"title\": ,\n}")
	out, err = run(t, "lint", broken, "--json")
	if err == nil {
		t.Fatalf("expected malformed text to fail")
	}
	var result struct {
		Valid  bool `json:"valid"`
		Issues []struct {
			Line int `json:"line"`
		} `json:"issues"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode lint json %s: %v", out, err)
	}
	if result.Valid || len(result.Issues) != 1 || result.Issues[0].Line != 2 {
		t.Fatalf("unexpected lint result %+v", result)
	}
}

func TestImportOpenAPI(t *testing.T) {
	apiDoc := filepath.Join("..", "..", "testdata", "signup.yaml")

	out, err := run(t, "import-openapi", apiDoc, "--operation", "signup", "--title", "Join")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	doc, err := schema.Parse(out)
	if err != nil {
		t.Fatalf("parse imported schema: %v\n%s", err, out)
	}
	if doc.Title != "Join" || len(doc.Fields) == 0 {
		t.Fatalf("unexpected imported schema %+v", doc)
	}

	out, err = run(t, "import-openapi", apiDoc, "--operation", "signup", "--format", "yaml")
	if err != nil {
		t.Fatalf("import yaml: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("decode yaml %s: %v", out, err)
	}
	if _, ok := raw["fields"].([]any); !ok {
		t.Fatalf("expected a fields list, got %s", out)
	}

	if _, err := run(t, "import-openapi", apiDoc, "--operation", "missing"); err == nil {
		t.Fatalf("expected unknown operation to fail")
	}
}

func TestWatchKeepsOutputOnMalformedEdit(t *testing.T) {
	schemaPath := writeFile(t, "trigger.json", triggerJSON)
	dir := t.TempDir()
	textPath := filepath.Join(dir, "form.json")
	outPath := filepath.Join(dir, "form.html")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"watch", schemaPath, "--text", textPath, "-o", outPath, "-r", "fragment", "--debounce", "20ms"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	readOutput := func() string {
		data, _ := os.ReadFile(outPath)
		return string(data)
	}
	edit := func(content string) {
		t.Helper()
		if err := os.WriteFile(textPath, []byte(content), 0o644); err != nil {
			t.Fatalf("edit text: %v", err)
		}
	}
	retitled := func(title string) string {
		return strings.Replace(triggerJSON, `"title":"Trigger"`, fmt.Sprintf("%q:%q", "title", title), 1)
	}

	// The watch is registered after the first render, so keep saving distinct
	// edits until one is picked up.
	live := false
	for i := 0; i < 100 && !live; i++ {
		edit(retitled(fmt.Sprintf("Edited %d", i)))
		time.Sleep(50 * time.Millisecond)
		live = strings.Contains(readOutput(), "<h2>Edited ")
	}
	if !live {
		t.Fatalf("watch never re-rendered, output %q", readOutput())
	}
	time.Sleep(100 * time.Millisecond)
	before := readOutput()

	edit(`{"title": "Broken", "fields": [`)
	time.Sleep(300 * time.Millisecond)
	if got := readOutput(); got != before {
		t.Fatalf("malformed edit replaced the output\nwant: %s\n got: %s", before, got)
	}

	edit(retitled("Recovered"))
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(readOutput(), "<h2>Recovered</h2>") {
		if time.Now().After(deadline) {
			t.Fatalf("expected the next valid edit to render, output %q", readOutput())
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop after cancellation")
	}
}

func TestParseOutputFormat(t *testing.T) {
	var got []string
	for _, value := range []string{"json", "form", "pretty"} {
		format, err := parseOutputFormat(value)
		if err != nil {
			t.Fatalf("parse %s: %v", value, err)
		}
		got = append(got, string(format))
	}
	if diff := cmp.Diff([]string{"json", "form", "pretty"}, got); diff != "" {
		t.Fatalf("formats mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseOutputFormat("xml"); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}
