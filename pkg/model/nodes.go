package model

import (
	internalmodel "github.com/goliatone/go-fieldschema/internal/model"
	"github.com/goliatone/go-fieldschema/pkg/ident"
)

// NewLeaf constructs a node of kind from variant defaults merged with
// overrides.
func NewLeaf(kind Kind, ids ident.Source, overrides Config) *Node {
	return internalmodel.NewLeaf(kind, ids, overrides)
}

// NewObject constructs an object node over fields.
func NewObject(ids ident.Source, fields []Field, overrides Config) *Node {
	return internalmodel.NewObject(ids, fields, overrides)
}

// NewArray constructs an array node around item.
func NewArray(ids ident.Source, item *Node, overrides Config) *Node {
	return internalmodel.NewArray(ids, item, overrides)
}

// NewHooks constructs an empty hook registry.
func NewHooks() *Hooks {
	return internalmodel.NewHooks()
}

// CanonicalDefault computes the default value of node, minting fresh i18n
// keys for translatable strings.
func CanonicalDefault(node *Node, ids ident.Source) any {
	return internalmodel.CanonicalDefault(node, ids)
}

// NewI18nKey mints a translation key.
func NewI18nKey(ids ident.Source) string {
	return internalmodel.NewI18nKey(ids)
}

// IsI18nKey reports whether s looks like a minted translation key.
func IsI18nKey(s string) bool {
	return internalmodel.IsI18nKey(s)
}

// CloneValue deep-copies a JSON-model value.
func CloneValue(value any) any {
	return internalmodel.CloneValue(value)
}

// AsNumber converts any Go numeric kind to float64.
func AsNumber(value any) (float64, bool) {
	return internalmodel.AsNumber(value)
}

// ParseOptions reads a select options list in document form.
func ParseOptions(raw any) []Option {
	return internalmodel.ParseOptions(raw)
}

// FlattenOptions expands option groups into their selectable choices.
func FlattenOptions(options []Option) []Option {
	return internalmodel.FlattenOptions(options)
}

// DefaultLabeler derives a label from a field id.
func DefaultLabeler(id string) string {
	return internalmodel.DefaultLabeler(id)
}
