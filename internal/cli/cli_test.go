package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode output %q: %v", raw, err)
	}
	return out
}

func TestDefaultsCommand(t *testing.T) {
	out, _, err := run(t, "defaults", "testdata/scene.yaml")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	want := map[string]any{"title": "Untitled", "mode": "talk", "target": "", "lines": []any{}}
	if diff := cmp.Diff(want, decodeJSON(t, out)); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeCommand(t *testing.T) {
	out, errOut, err := run(t, "normalize", "testdata/scene.yaml", "testdata/value.json")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := map[string]any{"title": "Untitled", "mode": "talk", "lines": []any{}}
	if diff := cmp.Diff(want, decodeJSON(t, out)); diff != "" {
		t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(errOut, "title: coerced") || !strings.Contains(errOut, "extra: coerced") {
		t.Fatalf("expected diagnostics on stderr, got %q", errOut)
	}

	if _, _, err := run(t, "normalize", "--strict", "testdata/scene.yaml", "testdata/value.json"); err == nil {
		t.Fatalf("expected --strict to fail on diagnostics")
	}
}

func TestPathsCommandText(t *testing.T) {
	out, _, err := run(t, "paths", "-o", "text", "testdata/scene.yaml")
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header and 6 rows, got %q", out)
	}
	if fields := strings.Fields(lines[5]); len(fields) < 2 || fields[0] != "lines" || fields[1] != "array" {
		t.Fatalf("unexpected row %q", lines[5])
	}
}

func TestFindCommandUsesConfigOutput(t *testing.T) {
	out, _, err := run(t, "--config", "testdata/config.yaml", "find", "testdata/scene.yaml", "mode")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("expected yaml output: %v", err)
	}
	if got["kind"] != "select" {
		t.Fatalf("unexpected kind %v", got["kind"])
	}

	if _, _, err := run(t, "find", "testdata/scene.yaml", "nope"); err == nil {
		t.Fatalf("expected unknown path to fail")
	}
}

func TestImportOpenAPICommand(t *testing.T) {
	out, _, err := run(t, "import-openapi", "testdata/petstore.yaml")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]any{"Pet"}, decodeJSON(t, out)); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}

	out, _, err = run(t, "import-openapi", "testdata/petstore.yaml", "Pet")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	got := decodeJSON(t, out).(map[string]any)
	if got["type"] != "object" {
		t.Fatalf("unexpected definition %v", got)
	}
	fields := got["fields"].(map[string]any)
	if fields["adopted"].(map[string]any)["type"] != "boolean" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestUnsupportedOutputFormat(t *testing.T) {
	if _, _, err := run(t, "-o", "xml", "defaults", "testdata/scene.yaml"); err == nil {
		t.Fatalf("expected xml output to be rejected")
	}
}

func TestLayoutCommand(t *testing.T) {
	out, _, err := run(t, "layout", "testdata/scene.yaml")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	rows, ok := decodeJSON(t, out).([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("expected two rows, got %s", out)
	}
	first := rows[0].([]any)
	if len(first) != 3 || first[2].(map[string]any)["id"] != "target" {
		t.Fatalf("unexpected first row %v", first)
	}
}

func TestLayoutCommandText(t *testing.T) {
	out, _, err := run(t, "layout", "-o", "text", "testdata/scene.yaml")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header and 4 cells, got %q", out)
	}
	if diff := cmp.Diff([]string{"ROW", "FIELD", "KIND", "START", "SPAN"}, strings.Fields(lines[0])); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if fields := strings.Fields(lines[4]); len(fields) != 5 || fields[0] != "2" || fields[1] != "lines" {
		t.Fatalf("unexpected last row %q", lines[4])
	}
}
