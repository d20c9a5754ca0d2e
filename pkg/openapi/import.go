package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-fieldschema/pkg/schema"
)

// Extension keys understood by the importer.
const (
	// ExtensionI18n marks a string property as translatable.
	ExtensionI18n = "x-i18n"
	// ExtensionConfig is merged verbatim into the generated node config.
	ExtensionConfig = "x-fieldschema"
)

var (
	// ErrComponentNotFound is returned when the named component schema is
	// missing from the document.
	ErrComponentNotFound = errors.New("openapi: component not found")
	// ErrRecursiveSchema is returned for self-referencing components, which
	// field schemas cannot express.
	ErrRecursiveSchema = errors.New("openapi: recursive schema")
)

// Options tunes the importer.
type Options struct {
	// Validate runs kin-openapi document validation before converting.
	Validate bool
}

// Option mutates Options.
type Option func(*Options)

// WithValidation toggles document validation.
func WithValidation(enabled bool) Option {
	return func(opts *Options) {
		opts.Validate = enabled
	}
}

// Components lists the component schema names declared in raw, sorted.
func Components(ctx context.Context, raw []byte) ([]string, error) {
	doc, err := load(ctx, raw, Options{})
	if err != nil {
		return nil, err
	}
	if doc.Components == nil {
		return nil, nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ImportComponent converts the component schema called name into a
// definition. Object properties are emitted in lexical order.
func ImportComponent(ctx context.Context, raw []byte, name string, options ...Option) (schema.Definition, error) {
	cfg := Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	doc, err := load(ctx, raw, cfg)
	if err != nil {
		return schema.Definition{}, err
	}
	if doc.Components == nil {
		return schema.Definition{}, fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return schema.Definition{}, fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}

	conv := converter{visiting: make(map[*openapi3.Schema]struct{})}
	return conv.convert(ref.Value, name)
}

func load(ctx context.Context, raw []byte, cfg Options) (*openapi3.T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.Validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return doc, nil
}

type converter struct {
	visiting map[*openapi3.Schema]struct{}
}

func (c converter) convert(src *openapi3.Schema, path string) (schema.Definition, error) {
	if _, cycle := c.visiting[src]; cycle {
		return schema.Definition{}, fmt.Errorf("%w at %s", ErrRecursiveSchema, path)
	}
	c.visiting[src] = struct{}{}
	defer delete(c.visiting, src)

	properties, required := collectProperties(src)
	def := schema.Definition{Name: src.Title}
	if def.Name == "" {
		def.Name = src.Description
	}
	config := map[string]any{}

	switch kind := schemaType(src); {
	case kind == openapi3.TypeObject || len(properties) > 0:
		def.Type = "object"
		names := make([]string, 0, len(properties))
		for name := range properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			prop := properties[name]
			if prop == nil || prop.Value == nil {
				return schema.Definition{}, fmt.Errorf("openapi: unresolved property %s.%s", path, name)
			}
			child, err := c.convert(prop.Value, path+"."+name)
			if err != nil {
				return schema.Definition{}, err
			}
			if _, ok := required[name]; ok && child.Type != "object" && child.Type != "array" {
				if child.Config == nil {
					child.Config = map[string]any{}
				}
				child.Config["required"] = true
			}
			def.Fields = append(def.Fields, schema.FieldDefinition{ID: name, Definition: child})
		}
	case kind == openapi3.TypeArray:
		def.Type = "array"
		if src.Items == nil || src.Items.Value == nil {
			return schema.Definition{}, fmt.Errorf("openapi: array without items at %s", path)
		}
		item, err := c.convert(src.Items.Value, path+"[]")
		if err != nil {
			return schema.Definition{}, err
		}
		def.FieldSchema = &item
	case kind == openapi3.TypeString && len(src.Enum) > 0:
		def.Type = "select"
		options := make([]any, 0, len(src.Enum))
		for _, value := range src.Enum {
			options = append(options, map[string]any{"label": fmt.Sprint(value), "value": value})
		}
		config["options"] = options
	case kind == openapi3.TypeString && (src.Format == "binary" || src.Format == "uri"):
		def.Type = "file"
	case kind == openapi3.TypeString:
		def.Type = "string"
		if src.MinLength > 0 {
			config["minLen"] = float64(src.MinLength)
		}
		if src.MaxLength != nil {
			config["maxLen"] = float64(*src.MaxLength)
		}
		if i18n, ok := src.Extensions[ExtensionI18n].(bool); ok && i18n {
			config["needI18n"] = true
		}
	case kind == openapi3.TypeInteger || kind == openapi3.TypeNumber:
		def.Type = "number"
		if src.Min != nil {
			config["minLen"] = *src.Min
		}
		if src.Max != nil {
			config["maxLen"] = *src.Max
		}
	case kind == openapi3.TypeBoolean:
		def.Type = "boolean"
	default:
		return schema.Definition{}, fmt.Errorf("openapi: unsupported schema type %q at %s", kind, path)
	}

	if src.Default != nil && def.Type != "object" {
		config["defaultValue"] = src.Default
	}
	if extra, ok := src.Extensions[ExtensionConfig].(map[string]any); ok {
		for key, value := range extra {
			config[key] = value
		}
	}
	if len(config) > 0 {
		def.Config = schema.NormalizeValue(config).(map[string]any)
	}
	return def, nil
}

// collectProperties merges the properties of src and its allOf members.
func collectProperties(src *openapi3.Schema) (openapi3.Schemas, map[string]struct{}) {
	properties := openapi3.Schemas{}
	required := map[string]struct{}{}
	var walk func(s *openapi3.Schema)
	walk = func(s *openapi3.Schema) {
		if s == nil {
			return
		}
		for _, member := range s.AllOf {
			if member != nil {
				walk(member.Value)
			}
		}
		for name, prop := range s.Properties {
			properties[name] = prop
		}
		for _, name := range s.Required {
			required[name] = struct{}{}
		}
	}
	walk(src)
	return properties, required
}

func schemaType(src *openapi3.Schema) string {
	if src.Type == nil {
		return ""
	}
	values := src.Type.Slice()
	for _, value := range values {
		if value != openapi3.TypeNull {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
