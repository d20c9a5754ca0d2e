package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldschema/pkg/openapi"
	"github.com/goliatone/go-fieldschema/pkg/schema"
)

const document = `
openapi: 3.0.3
info:
  title: Dialogue
  version: 1.0.0
paths: {}
components:
  schemas:
    Named:
      type: object
      required: [name]
      properties:
        name:
          type: string
          description: Display name
          maxLength: 40
          x-i18n: true
    Line:
      allOf:
        - $ref: '#/components/schemas/Named'
        - type: object
          properties:
            mood:
              type: string
              enum: [calm, angry]
              default: calm
            portrait:
              type: string
              format: binary
            delay:
              type: integer
              minimum: 0
              default: 2
            skippable:
              type: boolean
              x-fieldschema:
                colSpan: 6
            tags:
              type: array
              items:
                type: string
    Loop:
      type: object
      properties:
        next:
          $ref: '#/components/schemas/Loop'
`

func TestImportComponent(t *testing.T) {
	t.Parallel()

	got, err := openapi.ImportComponent(context.Background(), []byte(document), "Line")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	want := schema.Definition{
		Type: "object",
		Fields: schema.Fields{
			{ID: "delay", Definition: schema.Definition{
				Type:   "number",
				Config: map[string]any{"minLen": float64(0), "defaultValue": float64(2)},
			}},
			{ID: "mood", Definition: schema.Definition{
				Type: "select",
				Config: map[string]any{
					"defaultValue": "calm",
					"options": []any{
						map[string]any{"label": "calm", "value": "calm"},
						map[string]any{"label": "angry", "value": "angry"},
					},
				},
			}},
			{ID: "name", Definition: schema.Definition{
				Type: "string",
				Name: "Display name",
				Config: map[string]any{
					"maxLen":   float64(40),
					"needI18n": true,
					"required": true,
				},
			}},
			{ID: "portrait", Definition: schema.Definition{Type: "file"}},
			{ID: "skippable", Definition: schema.Definition{
				Type:   "boolean",
				Config: map[string]any{"colSpan": float64(6)},
			}},
			{ID: "tags", Definition: schema.Definition{
				Type:        "array",
				FieldSchema: &schema.Definition{Type: "string"},
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestImportComponentErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := openapi.ImportComponent(ctx, []byte(document), "Missing"); !errors.Is(err, openapi.ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
	if _, err := openapi.ImportComponent(ctx, []byte(document), "Loop"); err == nil {
		t.Fatalf("expected recursive component to fail")
	}
	if _, err := openapi.ImportComponent(ctx, nil, "Line"); err == nil {
		t.Fatalf("expected empty payload to fail")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := openapi.ImportComponent(cancelled, []byte(document), "Line"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestComponents(t *testing.T) {
	t.Parallel()

	got, err := openapi.Components(context.Background(), []byte(document))
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	if diff := cmp.Diff([]string{"Line", "Loop", "Named"}, got); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
}
