package validation_test

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/testsupport"
	"github.com/goliatone/go-fieldschema/pkg/validation"
)

func TestNormalizeSceneGolden(t *testing.T) {
	t.Parallel()

	node := testsupport.MustBuild(t, "testdata/scene.yaml", ident.NewSequence("g"))
	input := testsupport.MustLoadValue(t, "testdata/scene_input.json")

	got, diags := validation.New(validation.WithIDSource(ident.NewSequence("v"))).Normalize(input, node)

	const golden = "testdata/scene_normalized.golden.json"
	testsupport.WriteGolden(t, golden, got)

	var want any
	if err := json.Unmarshal(testsupport.MustReadGolden(t, golden), &want); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
	}
	if !diags.HasCode(model.CodeCoerced) || !diags.HasCode(model.CodeDefaultApplied) {
		t.Fatalf("expected coerced and default_applied diagnostics, got %v", diags)
	}
}
