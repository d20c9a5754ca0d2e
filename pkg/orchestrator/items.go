package orchestrator

import (
	"fmt"

	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/summary"
	"github.com/goliatone/go-fieldschema/pkg/translation"
	"github.com/goliatone/go-fieldschema/pkg/traverse"
)

// DuplicateItem returns a copy of items with items[index] duplicated right
// after it. Translatable leaves of the copy get fresh keys and, when table is
// set, inherit the lang text of the key they replace. items is not modified.
func (o *Orchestrator) DuplicateItem(name, arrayPath string, items []any, index int, table *translation.Table, lang string) ([]any, error) {
	list, err := o.array(name, arrayPath)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("orchestrator: index %d out of range [0,%d)", index, len(items))
	}

	dup := traverse.ReplaceI18nKeys(list.Item(), items[index], o.ids, func(oldKey, newKey string) {
		if table == nil {
			return
		}
		if !table.Copy(oldKey, newKey, lang) {
			table.Set(newKey, lang, "")
		}
	})

	out := make([]any, 0, len(items)+1)
	for i, item := range items {
		out = append(out, model.CloneValue(item))
		if i == index {
			out = append(out, dup)
		}
	}
	o.logger.Debug().
		Str("schema", name).
		Str("path", arrayPath).
		Int("index", index).
		Msg("list item duplicated")
	return out, nil
}

// Summaries renders the configured summary line of every element of the
// list at arrayPath. It returns nil when the item schema has no summary.
func (o *Orchestrator) Summaries(name, arrayPath string, items []any, table *translation.Table, lang string) ([]string, error) {
	list, err := o.array(name, arrayPath)
	if err != nil {
		return nil, err
	}
	root, _ := o.Schema(name)
	label := labelOf(root, list)

	var out []string
	for i, item := range items {
		ctx := summary.Context{Key: label, Index: i, Value: item, Lang: lang}
		if table != nil {
			ctx.Translations = table
		}
		line, ok := summary.ForItem(list, ctx)
		if !ok {
			return nil, nil
		}
		out = append(out, line)
	}
	return out, nil
}

// Companion returns the text shown next to a string_speed field: the lang
// translation of the key stored at its targetProp inside root. Missing keys
// and languages yield "".
func Companion(node *model.Node, root any, table *translation.Table, lang string) string {
	if node.Kind() != model.KindStringSpeed || table == nil {
		return ""
	}
	raw, ok := traverse.Get(root, node.TargetProp())
	if !ok {
		return ""
	}
	key, ok := raw.(string)
	if !ok {
		return ""
	}
	text, err := table.Lookup(key, lang)
	if err != nil {
		return ""
	}
	return text
}

func (o *Orchestrator) array(name, arrayPath string) (*model.Node, error) {
	root, err := o.root(name)
	if err != nil {
		return nil, err
	}
	node, ok := traverse.FindChild(root, arrayPath)
	if !ok {
		return nil, fmt.Errorf("orchestrator: %s: no field at %q", name, arrayPath)
	}
	if node.Kind() != model.KindArray {
		return nil, fmt.Errorf("orchestrator: %s: %q is a %s, not an array", name, arrayPath, node.Kind())
	}
	return node, nil
}

func labelOf(root, target *model.Node) string {
	var label string
	traverse.Iter(root, func(node *model.Node, _ string, l string) {
		if node == target && label == "" {
			label = l
		}
	})
	return label
}
