package schema

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Definition is the declarative schema document consumed by the builder: a
// type tag, a config map and, depending on the type, an ordered set of child
// fields (object) or the element schema (array).
type Definition struct {
	Type        string         `json:"type" yaml:"type"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Config      map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Fields      Fields         `json:"fields,omitempty" yaml:"fields,omitempty"`
	FieldSchema *Definition    `json:"fieldSchema,omitempty" yaml:"fieldSchema,omitempty"`
}

// FieldDefinition is one entry of an object definition. ID is the key under
// which the field is declared; Name (inherited from Definition) is its label.
type FieldDefinition struct {
	ID string
	Definition
}

// Fields keeps object entries in declaration order. Order matters: it drives
// traversal order and therefore generated paths.
type Fields []FieldDefinition

// Lookup returns the field declared under id.
func (f Fields) Lookup(id string) (FieldDefinition, bool) {
	for _, field := range f {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// IDs lists the declared field ids in order.
func (f Fields) IDs() []string {
	out := make([]string, 0, len(f))
	for _, field := range f {
		out = append(out, field.ID)
	}
	return out
}

// MarshalJSON renders the fields as a JSON object preserving order. Entries
// go through a private encoder: this method runs inside an outer Marshal and
// the package-level encoder state is not reentrant.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf, scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	write := func(v any) error {
		scratch.Reset()
		if err := enc.Encode(v); err != nil {
			return err
		}
		buf.Write(bytes.TrimRight(scratch.Bytes(), "\n"))
		return nil
	}

	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := write(field.ID); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := write(field.Definition); err != nil {
			return nil, fmt.Errorf("schema: marshal field %q: %w", field.ID, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object token by token so declaration order
// survives decoding.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("schema: fields: %w", err)
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: fields must be an object")
	}

	var out Fields
	seen := make(map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("schema: fields: %w", err)
		}
		id, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("schema: fields: unexpected key %v", keyTok)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("schema: duplicate field id %q", id)
		}
		seen[id] = struct{}{}

		var def Definition
		if err := dec.Decode(&def); err != nil {
			return fmt.Errorf("schema: field %q: %w", id, err)
		}
		out = append(out, FieldDefinition{ID: id, Definition: def})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("schema: fields: %w", err)
	}
	*f = out
	return nil
}

// MarshalYAML renders the fields as an ordered mapping node.
func (f Fields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range f {
		value := &yaml.Node{}
		if err := value.Encode(field.Definition); err != nil {
			return nil, fmt.Errorf("schema: marshal field %q: %w", field.ID, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: field.ID},
			value,
		)
	}
	return node, nil
}

// UnmarshalYAML walks mapping pairs in document order.
func (f *Fields) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*f = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("schema: fields must be a mapping (line %d)", value.Line)
	}
	out := make(Fields, 0, len(value.Content)/2)
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(value.Content); i += 2 {
		id := value.Content[i].Value
		if _, dup := seen[id]; dup {
			return fmt.Errorf("schema: duplicate field id %q (line %d)", id, value.Content[i].Line)
		}
		seen[id] = struct{}{}

		var def Definition
		if err := value.Content[i+1].Decode(&def); err != nil {
			return fmt.Errorf("schema: field %q: %w", id, err)
		}
		out = append(out, FieldDefinition{ID: id, Definition: def})
	}
	*f = out
	return nil
}

// KeyOrder reports the declaration order of the keys found below path. A nil
// KeyOrder sorts keys lexically.
type KeyOrder func(path []string, keys []string) []string

// DefinitionFromMap converts a generic decoded document (for example the
// output of a TOML or JSON decoder into map[string]any) into a Definition.
func DefinitionFromMap(raw map[string]any, order KeyOrder) (Definition, error) {
	return definitionFromMap(raw, nil, order)
}

func definitionFromMap(raw map[string]any, path []string, order KeyOrder) (Definition, error) {
	def := Definition{
		Type: strings.TrimSpace(readString(raw, "type")),
		Name: readString(raw, "name"),
	}

	if cfgRaw, ok := raw["config"]; ok && cfgRaw != nil {
		cfg, ok := asMap(cfgRaw)
		if !ok {
			return Definition{}, fmt.Errorf("schema: config must be a mapping at %s", renderPath(path))
		}
		def.Config = cfg
	}

	if fieldsRaw, ok := raw["fields"]; ok && fieldsRaw != nil {
		fields, ok := asMap(fieldsRaw)
		if !ok {
			return Definition{}, fmt.Errorf("schema: fields must be a mapping at %s", renderPath(path))
		}
		fieldsPath := appendPath(path, "fields")
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		if order != nil {
			keys = order(fieldsPath, keys)
		} else {
			sort.Strings(keys)
		}
		for _, id := range keys {
			child, ok := asMap(fields[id])
			if !ok {
				return Definition{}, fmt.Errorf("schema: field %q must be a mapping at %s", id, renderPath(fieldsPath))
			}
			childDef, err := definitionFromMap(child, appendPath(fieldsPath, id), order)
			if err != nil {
				return Definition{}, err
			}
			def.Fields = append(def.Fields, FieldDefinition{ID: id, Definition: childDef})
		}
	}

	if itemRaw, ok := raw["fieldSchema"]; ok && itemRaw != nil {
		item, ok := asMap(itemRaw)
		if !ok {
			return Definition{}, fmt.Errorf("schema: fieldSchema must be a mapping at %s", renderPath(path))
		}
		itemDef, err := definitionFromMap(item, appendPath(path, "fieldSchema"), order)
		if err != nil {
			return Definition{}, err
		}
		def.FieldSchema = &itemDef
	}

	return def, nil
}

func appendPath(path []string, segment string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}

func renderPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, ".")
}

func readString(raw map[string]any, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}
