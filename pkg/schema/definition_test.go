package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadDefinition(t *testing.T, name string) Definition {
	t.Helper()

	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	def, err := MustNewDocument(SourceFromFile(path), raw).Definition()
	if err != nil {
		t.Fatalf("parse definition: %v", err)
	}
	return def
}

func TestParseDefinitionJSONKeepsFieldOrder(t *testing.T) {
	t.Parallel()

	def := loadDefinition(t, "dialogue.json")

	want := []string{"speaker", "content", "mode", "target", "options"}
	if diff := cmp.Diff(want, def.Fields.IDs()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	options, ok := def.Fields.Lookup("options")
	if !ok || options.FieldSchema == nil {
		t.Fatalf("expected options array with fieldSchema")
	}
	if diff := cmp.Diff([]string{"id", "name"}, options.FieldSchema.Fields.IDs()); diff != "" {
		t.Fatalf("nested order mismatch (-want +got):\n%s", diff)
	}
	content, _ := def.Fields.Lookup("content")
	if content.Name != "Content" || content.Config["needI18n"] != true {
		t.Fatalf("unexpected content definition: %+v", content)
	}
}

func TestParseDefinitionYAMLKeepsFieldOrderAndNormalisesNumbers(t *testing.T) {
	t.Parallel()

	def := loadDefinition(t, "dialogue.yaml")

	if diff := cmp.Diff([]string{"zeta", "alpha", "list"}, def.Fields.IDs()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	zeta, _ := def.Fields.Lookup("zeta")
	if got, ok := zeta.Config["defaultValue"].(float64); !ok || got != 3 {
		t.Fatalf("expected float64 default, got %#v", zeta.Config["defaultValue"])
	}
	if got := def.Config["colSpan"]; got != float64(12) {
		t.Fatalf("expected normalised colSpan, got %#v", got)
	}
}

func TestParseDefinitionTOMLUsesDeclarationOrder(t *testing.T) {
	t.Parallel()

	def := loadDefinition(t, "options.toml")

	if def.Type != "array" || def.FieldSchema == nil {
		t.Fatalf("expected array definition, got %+v", def)
	}
	if diff := cmp.Diff([]string{"id", "name"}, def.FieldSchema.Fields.IDs()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	name, _ := def.FieldSchema.Fields.Lookup("name")
	if name.Config["needI18n"] != true {
		t.Fatalf("expected needI18n on name, got %#v", name.Config)
	}
	if got := name.Config["colSpan"]; got != float64(3) {
		t.Fatalf("expected float64 colSpan, got %#v", got)
	}
}

func TestParseDefinitionSniffsInlineJSON(t *testing.T) {
	t.Parallel()

	doc := MustNewDocument(SourceInline(""), []byte(`{"type":"string","config":{"defaultValue":"x"}}`))
	def, err := doc.Definition()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.Type != "string" || def.Config["defaultValue"] != "x" {
		t.Fatalf("unexpected definition: %+v", def)
	}
}

func TestParseDefinitionRejectsDuplicateFieldIDs(t *testing.T) {
	t.Parallel()

	doc := MustNewDocument(SourceInline("dup.json"), []byte(`{"type":"object","fields":{"a":{"type":"string"},"a":{"type":"number"}}}`))
	if _, err := doc.Definition(); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestParseDefinitionRequiresType(t *testing.T) {
	t.Parallel()

	doc := MustNewDocument(SourceInline("empty.json"), []byte(`{"config":{}}`))
	if _, err := doc.Definition(); err == nil {
		t.Fatalf("expected missing type error")
	}
}

func TestFieldsJSONRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	def := loadDefinition(t, "dialogue.json")
	encoded, err := EncodeDefinition(def, FormatJSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := DecodeDefinition(encoded, FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(def.Fields.IDs(), again.Fields.IDs()); diff != "" {
		t.Fatalf("order changed (-want +got):\n%s", diff)
	}
}

func TestEncodeDefinitionNestedObjects(t *testing.T) {
	t.Parallel()

	def := Definition{
		Type: "object",
		Fields: Fields{
			{ID: "zeta", Definition: Definition{Type: "object", Fields: Fields{
				{ID: "b", Definition: Definition{Type: "string"}},
				{ID: "a", Definition: Definition{Type: "number"}},
			}}},
			{ID: "alpha", Definition: Definition{Type: "array", FieldSchema: &Definition{Type: "object", Fields: Fields{
				{ID: "id", Definition: Definition{Type: "string"}},
			}}}},
		},
	}
	encoded, err := EncodeDefinition(def, FormatJSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := DecodeDefinition(encoded, FormatJSON)
	if err != nil {
		t.Fatalf("decode %s: %v", encoded, err)
	}
	zeta, _ := again.Fields.Lookup("zeta")
	if diff := cmp.Diff([]string{"zeta", "alpha"}, again.Fields.IDs()); diff != "" {
		t.Fatalf("top-level order changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "a"}, zeta.Fields.IDs()); diff != "" {
		t.Fatalf("nested order changed (-want +got):\n%s", diff)
	}
}
