package model

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"

	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/schema"
)

func newTestBuilder(hooks *Hooks) (*Builder, *ident.Sequence) {
	ids := ident.NewSequence("t")
	return New(Options{IDs: ids, Hooks: hooks}), ids
}

func field(id string, def schema.Definition) schema.FieldDefinition {
	return schema.FieldDefinition{ID: id, Definition: def}
}

func TestBuilderObjectKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	node, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("zeta", schema.Definition{Type: "number", Name: "Zeta"}),
			field("alpha", schema.Definition{Type: "boolean"}),
			field("jumpTarget", schema.Definition{Type: "string"}),
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var ids, labels []string
	for _, f := range node.Fields() {
		ids = append(ids, f.ID)
		labels = append(labels, f.Label)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "jumpTarget"}, ids); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Zeta", "Alpha", "Jump Target"}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderMergesConfigOverVariantDefaults(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	node, err := builder.Build(schema.Definition{
		Type:   "string",
		Config: map[string]any{"colSpan": float64(6), "needI18n": true},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	cfg := node.Config()
	if got := cfg[KeyColSpan]; got != float64(6) {
		t.Fatalf("expected override colSpan 6, got %v", got)
	}
	if got := cfg[KeyType]; got != StringTypeSingleline {
		t.Fatalf("expected default type singleline, got %v", got)
	}
	if got := cfg[KeyMaxLen]; got != float64(MaxSafeInteger) {
		t.Fatalf("expected default maxLen, got %v", got)
	}
	if !node.NeedI18n() {
		t.Fatalf("expected needI18n")
	}
	if got := node.FieldID(); got != "field_string_t-1" {
		t.Fatalf("unexpected field id %q", got)
	}
}

func TestBuilderBakesObjectDefault(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	node, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("name", schema.Definition{Type: "string", Config: map[string]any{"defaultValue": "Ada"}}),
			field("count", schema.Definition{Type: "number"}),
			field("tags", schema.Definition{Type: "array", FieldSchema: &schema.Definition{Type: "string"}}),
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := map[string]any{"name": "Ada", "count": float64(0), "tags": []any{}}
	if diff := cmp.Diff(want, node.DefaultValue()); diff != "" {
		t.Fatalf("baked default mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderArrayForcesFullRowItem(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	node, err := builder.Build(schema.Definition{
		Type:        "array",
		Config:      map[string]any{"colSpan": float64(6)},
		FieldSchema: &schema.Definition{Type: "number"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got, _ := node.Item().Config().Number(KeyColSpan); got != 12 {
		t.Fatalf("expected item colSpan 12, got %v", got)
	}
	if got, _ := node.Config().Number(KeyColSpan); got != 6 {
		t.Fatalf("expected array colSpan override 6, got %v", got)
	}
}

func TestBuilderUnknownTypeFallsBackToEmptyObject(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	node, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("mystery", schema.Definition{Type: "colour"}),
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	child, ok := node.Field("mystery")
	if !ok {
		t.Fatalf("expected mystery field")
	}
	if child.Node.Kind() != KindObject || len(child.Node.Fields()) != 0 {
		t.Fatalf("expected empty object, got %s with %d fields", child.Node.Kind(), len(child.Node.Fields()))
	}
	diags := builder.Diagnostics()
	if len(diags) != 1 || diags[0].Code != CodeUnknownType || diags[0].Path != "mystery" {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestBuilderAggregatesStructuralErrors(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	_, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("first", schema.Definition{Type: "array"}),
			field("nested", schema.Definition{
				Type: "object",
				Fields: schema.Fields{
					field("second", schema.Definition{Type: "array"}),
				},
			}),
		},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected multierror, got %T", err)
	}
	if len(merr.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(merr.Errors), err)
	}
	if !errors.Is(merr.Errors[0], ErrMissingFieldSchema) {
		t.Fatalf("expected ErrMissingFieldSchema, got %v", merr.Errors[0])
	}
	if !strings.Contains(merr.Errors[1].Error(), "nested.second") {
		t.Fatalf("expected path in error, got %v", merr.Errors[1])
	}
}

func TestBuilderDetectsCycles(t *testing.T) {
	t.Parallel()

	loop := &schema.Definition{Type: "array"}
	loop.FieldSchema = &schema.Definition{
		Type:   "object",
		Fields: schema.Fields{field("again", *loop)},
	}
	loop.FieldSchema.Fields[0].FieldSchema = loop.FieldSchema

	builder, _ := newTestBuilder(nil)
	_, err := builder.Build(*loop)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestBuilderRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	_, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("id", schema.Definition{Type: "string"}),
			field("id", schema.Definition{Type: "number"}),
		},
	})
	if !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
}

func TestBuilderExtendsSharesInstance(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	base, err := builder.Define("base", schema.Definition{
		Type:   "string",
		Config: map[string]any{"needI18n": true},
	})
	if err != nil {
		t.Fatalf("define: %v", err)
	}

	node, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("title", schema.Definition{Type: "string", Config: map[string]any{"extends": "base"}}),
			field("subtitle", schema.Definition{Type: "string", Config: map[string]any{"extends": "base", "colSpan": float64(9)}}),
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	title, _ := node.Field("title")
	subtitle, _ := node.Field("subtitle")
	if title.Node != subtitle.Node {
		t.Fatalf("expected both fields to alias one node")
	}
	if title.Node == base {
		t.Fatalf("expected the build to alias a copy of the registered node")
	}
	if title.Node.FieldID() != base.FieldID() || !title.Node.NeedI18n() {
		t.Fatalf("expected the copy to carry the registered fieldId and config")
	}
	if got, _ := title.Node.Config().Number(KeyColSpan); got != 9 {
		t.Fatalf("expected override through alias, got colSpan %v", got)
	}
	if got, _ := base.Config().Number(KeyColSpan); got != 3 {
		t.Fatalf("expected registered node to keep colSpan 3, got %v", got)
	}
}

func TestBuilderExtendsLeavesEarlierBuildsUntouched(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	if _, err := builder.Define("base", schema.Definition{Type: "string"}); err != nil {
		t.Fatalf("define: %v", err)
	}
	build := func(override map[string]any) *Node {
		node, err := builder.Build(schema.Definition{
			Type:   "object",
			Fields: schema.Fields{field("line", schema.Definition{Type: "string", Config: override})},
		})
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		line, _ := node.Field("line")
		return line.Node
	}

	first := build(map[string]any{"extends": "base", "defaultValue": "first"})
	second := build(map[string]any{"extends": "base", "needI18n": true})
	if first == second {
		t.Fatalf("expected separate builds to receive separate copies")
	}
	if first.NeedI18n() || first.DefaultValue() != "first" {
		t.Fatalf("expected first build to keep its own config, got %v", first.Config())
	}
	if second.DefaultValue() != "" {
		t.Fatalf("expected second build to start from the registered config, got %v", second.DefaultValue())
	}
	base, _ := builder.Lookup("base")
	if base.NeedI18n() || base.DefaultValue() != "" {
		t.Fatalf("expected registered node to stay untouched, got %v", base.Config())
	}
}

func TestBuilderUnresolvedExtendsBuildsFreshNode(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	builder.Register("count", NewLeaf(KindNumber, nil, nil))
	node, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("a", schema.Definition{Type: "string", Config: map[string]any{"extends": "missing"}}),
			field("b", schema.Definition{Type: "string", Config: map[string]any{"extends": "count"}}),
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a, _ := node.Field("a")
	b, _ := node.Field("b")
	if a.Node == b.Node || a.Node.Kind() != KindString || b.Node.Kind() != KindString {
		t.Fatalf("expected two fresh string nodes")
	}
	if diff := cmp.Diff([]string{CodeUnresolvedExtends, CodeUnresolvedExtends}, builder.Diagnostics().Codes()); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderBindsEnableWhen(t *testing.T) {
	t.Parallel()

	hooks := NewHooks()
	hooks.RegisterPredicate("isJump", func(root any) bool {
		values, _ := root.(map[string]any)
		return values["mode"] == "jump"
	})
	builder, _ := newTestBuilder(hooks)
	node, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("byHook", schema.Definition{Type: "string", Config: map[string]any{"enableWhen": "isJump"}}),
			field("byExpr", schema.Definition{Type: "string", Config: map[string]any{"enableWhen": `mode == "jump"`}}),
			field("broken", schema.Definition{Type: "string", Config: map[string]any{"enableWhen": "mode = jump"}}),
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	stay := map[string]any{"mode": "stay"}
	jump := map[string]any{"mode": "jump"}
	for _, id := range []string{"byHook", "byExpr"} {
		f, _ := node.Field(id)
		if ok, err := f.Node.Enabled(jump); err != nil || !ok {
			t.Fatalf("%s: expected enabled for jump, got %v %v", id, ok, err)
		}
		if ok, err := f.Node.Enabled(stay); err != nil || ok {
			t.Fatalf("%s: expected disabled for stay, got %v %v", id, ok, err)
		}
	}

	broken, _ := node.Field("broken")
	if ok, _ := broken.Node.Enabled(stay); !ok {
		t.Fatalf("expected uncompilable rule to leave field enabled")
	}
	if diags := builder.Diagnostics(); !diags.HasCode(CodeInvalidExpression) || len(diags.AtPath("broken")) != 1 {
		t.Fatalf("expected invalid_expression diagnostic at broken, got %v", diags)
	}
}

func TestBuilderCompilesSingleQuotedRules(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	node, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("mode", schema.Definition{Type: "select"}),
			field("target", schema.Definition{Type: "string", Config: map[string]any{"enableWhen": "mode == 'jump'"}}),
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diags := builder.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	target, _ := node.Field("target")
	if ok, err := target.Node.Enabled(map[string]any{"mode": "stay"}); err != nil || ok {
		t.Fatalf("expected target disabled for stay, got %v %v", ok, err)
	}
	if ok, err := target.Node.Enabled(map[string]any{"mode": "jump"}); err != nil || !ok {
		t.Fatalf("expected target enabled for jump, got %v %v", ok, err)
	}
}

func TestBuilderRulesReadExtras(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	node, err := builder.Build(schema.Definition{
		Type:   "string",
		Config: map[string]any{"enableWhen": "extras.beta == true"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ok, _ := node.Enabled(nil); ok {
		t.Fatalf("expected rule to be false without extras")
	}
	if ok, _ := node.EnabledWith(nil, map[string]any{"beta": true}); !ok {
		t.Fatalf("expected rule to read extras")
	}
}

func TestBuilderResolvesDefaultAndOptionHooks(t *testing.T) {
	t.Parallel()

	hooks := NewHooks()
	hooks.RegisterDefault("newEntry", func(utils DefaultUtils) any {
		return map[string]any{"id": utils.NewID(), "label": utils.NewI18nKey()}
	})
	hooks.RegisterOptions("scenes", func(_ context.Context, root any) ([]Option, error) {
		return []Option{{Label: "Intro", Value: "intro"}}, nil
	})
	builder, ids := newTestBuilder(hooks)
	node, err := builder.Build(schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			field("entry", schema.Definition{Type: "actor_select", Config: map[string]any{"defaultValueFn": "newEntry"}}),
			field("scene", schema.Definition{Type: "select", Config: map[string]any{"dynamicOptions": "scenes"}}),
			field("other", schema.Definition{Type: "select", Config: map[string]any{"dynamicOptions": "nope"}}),
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	entry, _ := node.Field("entry")
	before := ids.Minted()
	got := entry.Node.CanonicalDefault(ids)
	want := map[string]any{
		"id":    "t-" + strconv.Itoa(before+1),
		"label": I18nKeyPrefix + "t-" + strconv.Itoa(before+2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hook default mismatch (-want +got):\n%s", diff)
	}

	scene, _ := node.Field("scene")
	opts, err := scene.Node.Options(context.Background(), nil)
	if err != nil || len(opts) != 1 || opts[0].Value != "intro" {
		t.Fatalf("unexpected dynamic options %v, %v", opts, err)
	}
	if diags := builder.Diagnostics().AtPath("other"); len(diags) != 1 || diags[0].Code != CodeUnknownHook {
		t.Fatalf("expected unknown_hook at other, got %v", diags)
	}
}

func TestBuilderDefineRequiresName(t *testing.T) {
	t.Parallel()

	builder, _ := newTestBuilder(nil)
	if _, err := builder.Define(" ", schema.Definition{Type: "string"}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, ok := builder.Lookup("anything"); ok {
		t.Fatalf("expected empty registry")
	}
}
