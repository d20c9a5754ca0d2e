// Package validation normalizes runtime values against a schema tree. It
// never rejects input: wrong-shaped values are replaced by defaults, missing
// entries are synthesised, disabled fields are dropped and every translatable
// string ends up holding an i18n key. What was repaired is reported as
// model.Diagnostics.
package validation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/schema"
)

// Validator coerces values into the shape a schema describes. A Validator is
// stateless apart from its id source and can be shared between goroutines.
type Validator struct {
	ids    ident.Source
	extras map[string]any
	logger zerolog.Logger
}

// New constructs a Validator. Without options it mints UUID-based keys and
// logs nothing.
func New(options ...Option) *Validator {
	v := &Validator{
		ids:    ident.UUID(),
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Normalize coerces value against node using value itself as the enableWhen
// root. Input is first converted to the JSON value model (every Go numeric
// kind becomes float64, typed maps and slices become map[string]any and
// []any) and is never aliased by the result. When the root node itself is
// disabled the result is nil and the diagnostics carry model.CodeDisabled.
func (v *Validator) Normalize(value any, node *model.Node) (any, model.Diagnostics) {
	value = schema.NormalizeValue(value)
	r := &run{Validator: v}
	out, ok := r.normalize(value, value, node, "")
	if !ok {
		r.report("", model.CodeDisabled, "enableWhen %q disabled the root", node.EnableWhen())
		return nil, r.diags
	}
	return out, r.diags
}

// NormalizeField coerces value against node, evaluating enableWhen against
// root. present is false when the field is disabled and must be omitted from
// its parent.
func (v *Validator) NormalizeField(root, value any, node *model.Node) (any, bool) {
	r := &run{Validator: v}
	return r.normalize(schema.NormalizeValue(root), schema.NormalizeValue(value), node, "")
}

type run struct {
	*Validator
	diags model.Diagnostics
}

func (r *run) report(path, code, format string, args ...any) {
	diag := model.Diagnostic{Path: path, Code: code, Message: fmt.Sprintf(format, args...)}
	r.diags = append(r.diags, diag)
	r.logger.Debug().
		Str("path", path).
		Str("code", code).
		Msg(diag.Message)
}

func (r *run) normalize(root, value any, node *model.Node, path string) (any, bool) {
	if node == nil {
		return value, true
	}

	enabled, err := node.EnabledWith(root, r.extras)
	if err != nil {
		r.report(path, model.CodeEnableWhenError, "enableWhen %q: %v; field kept", node.EnableWhen(), err)
		enabled = true
	}
	if !enabled {
		return nil, false
	}

	switch node.Kind() {
	case model.KindArray:
		return r.normalizeArray(value, node, path), true
	case model.KindObject:
		return r.normalizeObject(value, node, path), true
	case model.KindString:
		return r.normalizeString(value, node, path), true
	case model.KindNumber:
		if n, ok := model.AsNumber(value); ok {
			return n, true
		}
		return r.fallback(value, node, path), true
	case model.KindBoolean:
		if b, ok := value.(bool); ok {
			return b, true
		}
		return r.fallback(value, node, path), true
	case model.KindSelect, model.KindFile, model.KindActorSelect, model.KindStringSpeed:
		if value != nil {
			return model.CloneValue(value), true
		}
		return r.fallback(value, node, path), true
	default:
		return model.CloneValue(value), true
	}
}

func (r *run) normalizeArray(value any, node *model.Node, path string) any {
	items, ok := value.([]any)
	if !ok {
		fallback, _ := node.DefaultValue().([]any)
		if fallback == nil {
			fallback = []any{}
		}
		r.replaced(value, path, "[]")
		return fallback
	}

	item := node.Item()
	out := make([]any, 0, len(items))
	for i, element := range items {
		normalized, present := r.normalize(element, element, item, indexPath(path, i))
		if present {
			out = append(out, normalized)
		}
	}
	return out
}

func (r *run) normalizeObject(value any, node *model.Node, path string) any {
	values, ok := value.(map[string]any)
	if !ok || values == nil {
		r.replaced(value, path, "the canonical object default")
		return node.CanonicalDefault(r.ids)
	}

	fields := node.Fields()
	out := make(map[string]any, len(fields))
	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		known[field.ID] = struct{}{}
		childPath := fieldPath(path, field.ID)
		childValue, present := values[field.ID]
		if !present {
			childValue = nil
		}
		normalized, keep := r.normalize(values, childValue, field.Node, childPath)
		if keep {
			out[field.ID] = normalized
		}
	}
	for key := range values {
		if _, ok := known[key]; !ok {
			r.report(fieldPath(path, key), model.CodeCoerced, "dropped key not declared by the schema")
		}
	}
	return out
}

func (r *run) normalizeString(value any, node *model.Node, path string) any {
	if node.NeedI18n() {
		if text, ok := value.(string); ok && text != "" {
			return text
		}
		key := model.NewI18nKey(r.ids)
		if truthy(value) {
			r.report(path, model.CodeCoerced, "non-string %T replaced by i18n key %s", value, key)
		} else {
			r.report(path, model.CodeI18nKeyMinted, "minted %s", key)
		}
		return key
	}

	if node.StringType() == model.StringTypeCode {
		if tpl, ok := node.Template(); ok {
			return expandTemplate(tpl, value)
		}
		if isCodeValue(value) {
			return model.CloneValue(value)
		}
		r.replaced(value, path, "an empty code value")
		return map[string]any{"value": nil, "fields": map[string]any{}}
	}

	if text, ok := value.(string); ok {
		return text
	}
	return r.fallback(value, node, path)
}

func (r *run) fallback(value any, node *model.Node, path string) any {
	def := node.DefaultValue()
	r.replaced(value, path, fmt.Sprintf("default %v", describe(def)))
	return def
}

func (r *run) replaced(value any, path, with string) {
	if value == nil {
		r.report(path, model.CodeDefaultApplied, "missing value replaced by %s", with)
		return
	}
	r.report(path, model.CodeCoerced, "%T value replaced by %s", value, with)
}

func isCodeValue(value any) bool {
	values, ok := value.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := values["value"]; !ok {
		return false
	}
	_, ok = values["fields"].(map[string]any)
	return ok
}

// truthy mirrors loose truthiness: nil, false, 0, NaN and "" are falsy.
func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case float64:
		return typed != 0 && !math.IsNaN(typed)
	default:
		if n, ok := model.AsNumber(value); ok {
			return n != 0
		}
		return true
	}
}

func describe(value any) string {
	switch typed := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func fieldPath(path, id string) string {
	if path == "" {
		return id
	}
	return path + "." + id
}

func indexPath(path string, index int) string {
	return fieldPath(path, strconv.Itoa(index))
}
