package traverse

import (
	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/model"
)

// I18nKeys collects the translation keys stored in value's translatable
// leaves in traversal order, without duplicates.
func I18nKeys(node *model.Node, value any) []string {
	var keys []string
	seen := map[string]struct{}{}
	ProcessValue(node, value, func(leaf *model.Node, v any) any {
		key, ok := v.(string)
		if !ok || key == "" || !leaf.NeedI18n() {
			return v
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		return v
	})
	return keys
}

// ReplaceI18nKeys returns a copy of value in which every translatable leaf
// holds a freshly minted key. onReplace, when set, is told about each
// old/new pair so the caller can carry translations over. Nil leaves stay
// nil; an empty leaf gets a key and is reported with an empty old key.
func ReplaceI18nKeys(node *model.Node, value any, ids ident.Source, onReplace func(oldKey, newKey string)) any {
	return ProcessValue(node, value, func(leaf *model.Node, v any) any {
		if !leaf.NeedI18n() {
			return model.CloneValue(v)
		}
		oldKey, _ := v.(string)
		newKey := model.NewI18nKey(ids)
		if onReplace != nil {
			onReplace(oldKey, newKey)
		}
		return newKey
	})
}
