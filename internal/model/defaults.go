package model

import (
	"strings"

	"github.com/goliatone/go-fieldschema/pkg/ident"
)

// I18nKeyPrefix starts every minted translation key.
const I18nKeyPrefix = "string_field_"

// NewI18nKey mints a fresh translation key.
func NewI18nKey(ids ident.Source) string {
	return I18nKeyPrefix + ident.OrDefault(ids).NewID()
}

// IsI18nKey reports whether s looks like a minted translation key.
func IsI18nKey(s string) bool {
	return strings.HasPrefix(s, I18nKeyPrefix) && len(s) > len(I18nKeyPrefix)
}

// CanonicalDefault computes the default value of node. It is not idempotent:
// every translatable string below node receives a newly minted key, so call
// it once per "need a default" event.
func CanonicalDefault(node *Node, ids ident.Source) any {
	return node.CanonicalDefault(ids)
}

// CanonicalDefault computes the default value of the subtree rooted at n.
// A bound default hook replaces the computation for its node.
func (n *Node) CanonicalDefault(ids ident.Source) any {
	if n == nil {
		return nil
	}
	ids = ident.OrDefault(ids)
	if n.defaultFn != nil {
		return n.defaultFn(DefaultUtils{
			NewID:      ids.NewID,
			NewI18nKey: func() string { return NewI18nKey(ids) },
		})
	}

	switch n.kind {
	case KindObject:
		out := make(map[string]any, len(n.fields))
		for _, field := range n.fields {
			out[field.ID] = field.Node.CanonicalDefault(ids)
		}
		return out
	case KindArray:
		if items, ok := n.config[KeyDefaultValue].([]any); ok {
			return CloneValue(items)
		}
		return []any{}
	case KindString:
		if n.NeedI18n() {
			return NewI18nKey(ids)
		}
		return n.DefaultValue()
	case KindNumber, KindBoolean, KindSelect, KindFile, KindActorSelect, KindStringSpeed:
		return n.DefaultValue()
	default:
		return nil
	}
}

// CloneValue deep-copies values of the JSON value model. Other values are
// returned as-is.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = CloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = CloneValue(v)
		}
		return out
	case Config:
		out := make(Config, len(typed))
		for k, v := range typed {
			out[k] = CloneValue(v)
		}
		return out
	default:
		return value
	}
}

// AsNumber converts any Go numeric kind to float64.
func AsNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
