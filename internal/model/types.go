package model

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/visibility"
)

// Kind is the variant tag of a schema node. The set is closed: every
// consumer switches over these nine values.
type Kind string

const (
	KindObject      Kind = "object"
	KindArray       Kind = "array"
	KindString      Kind = "string"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
	KindSelect      Kind = "select"
	KindFile        Kind = "file"
	KindActorSelect Kind = "actor_select"
	KindStringSpeed Kind = "string_speed"
)

// Kinds lists every variant in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindObject, KindArray, KindString, KindNumber, KindBoolean,
		KindSelect, KindFile, KindActorSelect, KindStringSpeed,
	}
}

// Valid reports whether k is one of the known variants.
func (k Kind) Valid() bool {
	switch k {
	case KindObject, KindArray, KindString, KindNumber, KindBoolean,
		KindSelect, KindFile, KindActorSelect, KindStringSpeed:
		return true
	default:
		return false
	}
}

// IsComposite reports whether nodes of this kind carry children.
func (k Kind) IsComposite() bool {
	return k == KindObject || k == KindArray
}

// Field is one entry of an object node: the key the value is stored under,
// its display label and the child schema.
type Field struct {
	ID    string
	Label string
	Node  *Node
}

// Node is a single schema instance. Nodes are assembled by the Builder and
// are read-only afterwards; the only mutation is Setup, which the builder
// applies while a document is being materialised. A node reached through
// `extends` is shared by every field that names it.
type Node struct {
	kind   Kind
	config Config
	fields []Field
	item   *Node

	enable    visibility.Program
	defaultFn DefaultFunc
	optionsFn OptionsFunc
}

// NewLeaf constructs a leaf (or an empty object) of the given kind. The
// config starts from the variant defaults, gets a freshly minted fieldId and
// is then overlaid with overrides. Arrays need an item schema and must be
// built with NewArray.
func NewLeaf(kind Kind, ids ident.Source, overrides Config) *Node {
	if kind == KindArray {
		panic("model: arrays must be constructed with NewArray")
	}
	return newNode(kind, ids, overrides)
}

func newNode(kind Kind, ids ident.Source, overrides Config) *Node {
	node := &Node{kind: kind, config: defaultConfig(kind)}
	node.config[KeyFieldID] = newFieldID(kind, ids)
	node.Setup(overrides)
	return node
}

// NewObject constructs an object node over fields, preserving their order.
// It panics when two fields share an id; the builder rejects such documents
// before reaching this point.
func NewObject(ids ident.Source, fields []Field, overrides Config) *Node {
	node := NewLeaf(KindObject, ids, overrides)
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.Node == nil {
			panic(fmt.Sprintf("model: field %q has no schema", field.ID))
		}
		if _, dup := seen[field.ID]; dup {
			panic(fmt.Sprintf("model: duplicate field id %q", field.ID))
		}
		seen[field.ID] = struct{}{}
	}
	node.fields = append([]Field(nil), fields...)
	return node
}

// NewArray constructs an array node whose elements are described by item.
// The item is stretched to the full row (colSpan 12), mirroring how list
// elements are laid out. A nil item panics.
func NewArray(ids ident.Source, item *Node, overrides Config) *Node {
	if item == nil {
		panic("model: array requires an item schema")
	}
	node := newNode(KindArray, ids, overrides)
	item.config[KeyColSpan] = float64(fullRow)
	node.item = item
	return node
}

func newFieldID(kind Kind, ids ident.Source) string {
	return "field_" + string(kind) + "_" + ident.OrDefault(ids).NewID()
}

// copyLeaf returns a leaf sharing n's fieldId and bound hooks but owning a
// deep copy of its config.
func (n *Node) copyLeaf() *Node {
	out := *n
	out.config = make(Config, len(n.config))
	for key, value := range n.config {
		out.config[key] = CloneValue(value)
	}
	return &out
}

// Setup shallow-merges overrides into the node config; override keys win.
// It is part of construction: callers must not invoke it on a tree that is
// already being validated or traversed.
func (n *Node) Setup(overrides Config) {
	if n == nil || len(overrides) == 0 {
		return
	}
	for key, value := range overrides {
		n.config[key] = CloneValue(value)
	}
}

// Kind returns the variant tag.
func (n *Node) Kind() Kind {
	if n == nil {
		return ""
	}
	return n.kind
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n != nil && !n.kind.IsComposite()
}

// Config returns a shallow copy of the node configuration.
func (n *Node) Config() Config {
	if n == nil {
		return Config{}
	}
	return maps.Clone(n.config)
}

// ConfigValue returns a deep copy of a single config entry.
func (n *Node) ConfigValue(key string) (any, bool) {
	if n == nil {
		return nil, false
	}
	value, ok := n.config[key]
	if !ok {
		return nil, false
	}
	return CloneValue(value), true
}

// Fields returns the object entries in declaration order.
func (n *Node) Fields() []Field {
	if n == nil || n.kind != KindObject {
		return nil
	}
	return append([]Field(nil), n.fields...)
}

// Field looks up an object entry by id.
func (n *Node) Field(id string) (Field, bool) {
	if n == nil || n.kind != KindObject {
		return Field{}, false
	}
	for _, field := range n.fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// Item returns the element schema of an array node.
func (n *Node) Item() *Node {
	if n == nil || n.kind != KindArray {
		return nil
	}
	return n.item
}

// AllLeaves flattens an object into its non-object descendants. Nested
// objects are expanded in place; arrays are reported as a single entry.
func (n *Node) AllLeaves() []*Node {
	if n == nil || n.kind != KindObject {
		return nil
	}
	var out []*Node
	for _, field := range n.fields {
		if field.Node.kind == KindObject {
			out = append(out, field.Node.AllLeaves()...)
			continue
		}
		out = append(out, field.Node)
	}
	return out
}

// FieldID returns the identifier minted at construction time.
func (n *Node) FieldID() string {
	return n.configString(KeyFieldID)
}

// NeedI18n reports whether the node stores translation keys instead of text.
// Only strings can be translatable.
func (n *Node) NeedI18n() bool {
	return n != nil && n.kind == KindString && n.config.Bool(KeyNeedI18n)
}

// StringType returns singleline, multiline or code for string nodes.
func (n *Node) StringType() string {
	if n == nil || n.kind != KindString {
		return ""
	}
	return n.configString(KeyType)
}

// Template returns the code template configured on a string node.
func (n *Node) Template() (string, bool) {
	if n == nil || n.kind != KindString {
		return "", false
	}
	tpl := n.configString(KeyTemplate)
	return tpl, tpl != ""
}

// Extends returns the shared definition name a string node asked for.
func (n *Node) Extends() string {
	if n == nil || n.kind != KindString {
		return ""
	}
	return n.configString(KeyExtends)
}

// TargetProp returns the dotted path a string_speed node reads its companion
// text from.
func (n *Node) TargetProp() string {
	if n == nil || n.kind != KindStringSpeed {
		return ""
	}
	return n.configString(KeyTargetProp)
}

// EnableWhen returns the raw enableWhen source.
func (n *Node) EnableWhen() string {
	return n.configString(KeyEnableWhen)
}

// DefaultValue returns a deep copy of the configured literal default.
func (n *Node) DefaultValue() any {
	if n == nil {
		return nil
	}
	return CloneValue(n.config[KeyDefaultValue])
}

// Enabled evaluates the bound enableWhen predicate against root. Nodes without
// a predicate are always enabled; a falsy result disables the node.
func (n *Node) Enabled(root any) (bool, error) {
	return n.EnabledWith(root, nil)
}

// EnabledWith is Enabled with host-supplied extras, addressable from rules
// through the `extras.` prefix.
func (n *Node) EnabledWith(root any, extras map[string]any) (bool, error) {
	if n == nil || n.enable == nil {
		return true, nil
	}
	return n.enable.Eval(visibility.ContextFor(root).WithExtras(extras))
}

// Options returns the choices of a select node. A bound dynamicOptions hook
// takes precedence over the static list.
func (n *Node) Options(ctx context.Context, root any) ([]Option, error) {
	if n == nil || n.kind != KindSelect {
		return nil, nil
	}
	if n.optionsFn != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		return n.optionsFn(ctx, root)
	}
	return ParseOptions(n.config[KeyOptions]), nil
}

// BindPredicate attaches a compiled enableWhen program. The builder does this
// for documents; callers constructing nodes by hand use it directly.
func (n *Node) BindPredicate(program visibility.Program) {
	if n != nil {
		n.enable = program
	}
}

// BindDefault attaches a default hook that replaces canonical default
// resolution for this node.
func (n *Node) BindDefault(fn DefaultFunc) {
	if n != nil {
		n.defaultFn = fn
	}
}

// BindOptions attaches a dynamic options hook to a select node.
func (n *Node) BindOptions(fn OptionsFunc) {
	if n != nil {
		n.optionsFn = fn
	}
}

func (n *Node) configString(key string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.config.String(key))
}
