// Package traverse walks schema trees and schema-shaped values: visiting
// every node with its dotted path, resolving a path to the node describing
// it and mapping a value leaf by leaf under schema guidance.
package traverse

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-fieldschema/pkg/model"
)

// Visitor receives a node, its dotted path and the label of the field that
// introduced it. The root is visited with an empty path and label.
type Visitor func(node *model.Node, path, label string)

// Iter walks node depth-first in pre-order. Object fields extend the path
// with their id; array items are visited under the array's own path since a
// single schema describes every element.
func Iter(node *model.Node, visit Visitor) {
	iter(node, visit, "", "")
}

func iter(node *model.Node, visit Visitor, path, label string) {
	if node == nil {
		return
	}
	visit(node, path, label)
	switch node.Kind() {
	case model.KindArray:
		iter(node.Item(), visit, path, label)
	case model.KindObject:
		for _, field := range node.Fields() {
			iter(field.Node, visit, joinPath(path, field.ID), field.Label)
		}
	}
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// SplitPath splits a dotted path into segments, accepting bracketed indexes:
// `options[0].name` and `options.0.name` are equivalent.
func SplitPath(path string) []string {
	path = bracketIndex.ReplaceAllString(strings.TrimSpace(path), ".$1")
	var out []string
	for _, segment := range strings.Split(path, ".") {
		if segment = strings.TrimSpace(segment); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

// FindChild resolves path below node. Object segments must match a field id
// exactly; at an array, an index segment is consumed and any other segment
// is matched against the item schema. Reaching a leaf with segments left, or
// an unknown id, reports false.
func FindChild(node *model.Node, path string) (*model.Node, bool) {
	current := node
	segments := SplitPath(path)
	for i := 0; i < len(segments); {
		if current == nil {
			return nil, false
		}
		segment := segments[i]
		switch current.Kind() {
		case model.KindObject:
			field, ok := current.Field(segment)
			if !ok {
				return nil, false
			}
			current = field.Node
			i++
		case model.KindArray:
			current = current.Item()
			if isIndex(segment) {
				i++
			}
		default:
			return nil, false
		}
	}
	return current, current != nil
}

// Transform maps one leaf value. node is nil when the value has no schema.
type Transform func(node *model.Node, value any) any

// ProcessValue rebuilds value, applying fn to every leaf. Objects are matched
// key by key against the schema fields, arrays element by element against the
// item schema; keys the schema does not declare are still visited with a nil
// schema. Object keys are visited in field declaration order, then the
// undeclared keys sorted, so fn sees leaves in a stable order. Nil values are
// returned unchanged.
func ProcessValue(node *model.Node, value any, fn Transform) any {
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case []any:
		if node != nil && node.IsLeaf() {
			return fn(node, value)
		}
		var item *model.Node
		if node != nil {
			item = node.Item()
		}
		out := make([]any, len(typed))
		for i, element := range typed {
			out[i] = ProcessValue(item, element, fn)
		}
		return out
	case map[string]any:
		if node != nil && node.IsLeaf() {
			return fn(node, value)
		}
		out := make(map[string]any, len(typed))
		for _, field := range node.Fields() {
			if child, ok := typed[field.ID]; ok {
				out[field.ID] = ProcessValue(field.Node, child, fn)
			}
		}
		for _, key := range slices.Sorted(maps.Keys(typed)) {
			if _, done := out[key]; !done {
				out[key] = ProcessValue(nil, typed[key], fn)
			}
		}
		return out
	default:
		return fn(node, value)
	}
}

// Get reads the value stored at path inside a schema-shaped value.
func Get(value any, path string) (any, bool) {
	current := value
	for _, segment := range SplitPath(path) {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(typed) {
				return nil, false
			}
			current = typed[index]
		default:
			return nil, false
		}
	}
	return current, true
}

func isIndex(segment string) bool {
	_, err := strconv.Atoi(segment)
	return err == nil
}

func joinPath(path, id string) string {
	if path == "" {
		return id
	}
	return path + "." + id
}
