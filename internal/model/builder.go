package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/goliatone/go-fieldschema/pkg/schema"
	"github.com/goliatone/go-fieldschema/pkg/visibility"
)

var (
	// ErrMissingFieldSchema is reported for array definitions without an
	// element schema.
	ErrMissingFieldSchema = errors.New("array requires fieldSchema")
	// ErrCycle is reported when a definition contains itself.
	ErrCycle = errors.New("definition cycle")
	// ErrDuplicateField is reported when an object declares an id twice.
	ErrDuplicateField = errors.New("duplicate field id")
)

// Builder materialises schema definitions into node trees. It owns the
// registry of named nodes that string fields can share via `extends`.
// Registered nodes are templates and are never modified by later builds:
// the first field of a build naming one receives a private copy, and every
// further field of that build naming it aliases the same copy, so overrides
// are visible through every alias of the build and nowhere else.
//
// Builds are serialised; the builder may be shared between goroutines.
type Builder struct {
	opts Options

	mu     sync.Mutex
	shared map[string]*Node
	diags  Diagnostics
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	return &Builder{
		opts:   options.withDefaults(),
		shared: make(map[string]*Node),
	}
}

// Build materialises def. Structural problems (arrays without an element
// schema, cycles, duplicate ids) are collected across the whole document and
// returned together; recoverable anomalies are available from Diagnostics.
func (b *Builder) Build(def schema.Definition) (*Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.build(&def)
}

// Define builds def and registers the result under name so later documents
// can reference it through `extends`.
func (b *Builder) Define(name string, def schema.Definition) (*Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("model: define requires a name")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	node, err := b.build(&def)
	if err != nil {
		return nil, err
	}
	b.shared[name] = node
	return node, nil
}

// Register makes node available to `extends` under name.
func (b *Builder) Register(name string, node *Node) {
	name = strings.TrimSpace(name)
	if name == "" || node == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shared[name] = node
}

// Lookup returns the node registered under name.
func (b *Builder) Lookup(name string) (*Node, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	node, ok := b.shared[strings.TrimSpace(name)]
	return node, ok
}

// Diagnostics returns the anomalies recorded by the most recent build.
func (b *Builder) Diagnostics() Diagnostics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(Diagnostics(nil), b.diags...)
}

func (b *Builder) build(def *schema.Definition) (*Node, error) {
	state := &buildState{
		Builder:  b,
		visiting: map[*schema.Definition]struct{}{def: {}},
		aliases:  map[string]*Node{},
	}
	node := state.build(def, "")
	b.diags = state.diags
	if err := state.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return node, nil
}

type buildState struct {
	*Builder
	visiting map[*schema.Definition]struct{}
	aliases  map[string]*Node
	errs     *multierror.Error
	diags    Diagnostics
}

func (s *buildState) fail(path string, err error) {
	s.errs = multierror.Append(s.errs, fmt.Errorf("model: %s: %w", displayPath(path), err))
}

func (s *buildState) diagnose(path, code, format string, args ...any) {
	diag := Diagnostic{Path: path, Code: code, Message: fmt.Sprintf(format, args...)}
	s.diags = append(s.diags, diag)
	s.opts.Logger.Debug().
		Str("path", displayPath(path)).
		Str("code", code).
		Msg(diag.Message)
}

func (s *buildState) build(def *schema.Definition, path string) *Node {
	kind := Kind(strings.TrimSpace(def.Type))
	switch kind {
	case KindObject:
		return s.buildObject(def, path)
	case KindArray:
		return s.buildArray(def, path)
	case KindString:
		return s.buildString(def, path)
	case KindNumber, KindBoolean, KindSelect, KindFile, KindActorSelect, KindStringSpeed:
		node := NewLeaf(kind, s.opts.IDs, def.Config)
		s.bind(node, path)
		return node
	default:
		s.diagnose(path, CodeUnknownType, "unknown type %q, using an empty object", def.Type)
		return NewObject(s.opts.IDs, nil, nil)
	}
}

func (s *buildState) buildObject(def *schema.Definition, path string) *Node {
	fields := make([]Field, 0, len(def.Fields))
	seen := make(map[string]struct{}, len(def.Fields))
	failed := false
	for i := range def.Fields {
		entry := &def.Fields[i]
		childPath := joinPath(path, entry.ID)
		if _, dup := seen[entry.ID]; dup {
			s.fail(childPath, ErrDuplicateField)
			failed = true
			continue
		}
		seen[entry.ID] = struct{}{}

		child := s.build(&entry.Definition, childPath)
		if child == nil {
			failed = true
			continue
		}
		label := strings.TrimSpace(entry.Name)
		if label == "" {
			label = s.opts.Labeler(entry.ID)
		}
		fields = append(fields, Field{ID: entry.ID, Label: label, Node: child})
	}
	if failed {
		return nil
	}

	node := NewObject(s.opts.IDs, fields, def.Config)
	s.bind(node, path)
	node.config[KeyDefaultValue] = node.CanonicalDefault(s.opts.IDs)
	return node
}

func (s *buildState) buildArray(def *schema.Definition, path string) *Node {
	itemDef := def.FieldSchema
	if itemDef == nil {
		s.fail(path, ErrMissingFieldSchema)
		return nil
	}
	if _, cyclic := s.visiting[itemDef]; cyclic {
		s.fail(path, ErrCycle)
		return nil
	}
	s.visiting[itemDef] = struct{}{}
	item := s.build(itemDef, path)
	delete(s.visiting, itemDef)
	if item == nil {
		return nil
	}

	node := NewArray(s.opts.IDs, item, def.Config)
	s.bind(node, path)
	return node
}

func (s *buildState) buildString(def *schema.Definition, path string) *Node {
	name := strings.TrimSpace(Config(def.Config).String(KeyExtends))
	if name != "" {
		if alias, ok := s.aliases[name]; ok {
			alias.Setup(def.Config)
			s.bind(alias, path)
			return alias
		}
		shared, ok := s.shared[name]
		switch {
		case ok && shared.kind == KindString:
			alias := shared.copyLeaf()
			s.aliases[name] = alias
			alias.Setup(def.Config)
			s.bind(alias, path)
			return alias
		case ok:
			s.diagnose(path, CodeUnresolvedExtends, "%q is a %s, not a string", name, shared.kind)
		default:
			s.diagnose(path, CodeUnresolvedExtends, "nothing registered as %q", name)
		}
	}
	node := NewLeaf(KindString, s.opts.IDs, def.Config)
	s.bind(node, path)
	return node
}

// bind resolves the symbolic hook slots of node. Registered hooks win; an
// enableWhen that names no predicate is compiled as an expression.
func (s *buildState) bind(node *Node, path string) {
	node.enable = nil
	if rule := node.EnableWhen(); rule != "" {
		if pred, ok := s.opts.Hooks.Predicate(rule); ok {
			node.enable = predicateProgram(pred)
		} else if program, err := s.opts.Compiler.Compile(rule); err != nil {
			s.diagnose(path, CodeInvalidExpression, "enableWhen %q: %v; field stays enabled", rule, err)
		} else {
			node.enable = program
		}
	}

	node.defaultFn = nil
	if name := node.configString(KeyDefaultValueFn); name != "" {
		if fn, ok := s.opts.Hooks.Default(name); ok {
			node.defaultFn = fn
		} else {
			s.diagnose(path, CodeUnknownHook, "defaultValueFn %q is not registered", name)
		}
	}

	node.optionsFn = nil
	if name := node.configString(KeyDynamicOptions); name != "" && node.kind == KindSelect {
		if fn, ok := s.opts.Hooks.Options(name); ok {
			node.optionsFn = fn
		} else {
			s.diagnose(path, CodeUnknownHook, "dynamicOptions %q is not registered", name)
		}
	}
}

func predicateProgram(pred Predicate) visibility.Program {
	return visibility.ProgramFunc(func(ctx visibility.Context) (bool, error) {
		return pred(ctx.Self), nil
	})
}

func joinPath(path, id string) string {
	if path == "" {
		return id
	}
	return path + "." + id
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
