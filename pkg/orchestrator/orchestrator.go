package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-fieldschema/internal/schema/loader"
	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/schema"
	"github.com/goliatone/go-fieldschema/pkg/validation"
	"github.com/goliatone/go-fieldschema/pkg/visibility"
)

// ErrUnknownSchema is returned when a name has not been loaded.
var ErrUnknownSchema = errors.New("orchestrator: unknown schema")

// Published is an immutable snapshot of a loaded schema.
type Published struct {
	Name        string
	Version     int
	Definition  schema.Definition
	Root        *model.Node
	Diagnostics model.Diagnostics
}

type catalog map[string]*Published

// Orchestrator owns the schemas of an editing session.
type Orchestrator struct {
	loader   schema.Loader
	ids      ident.Source
	hooks    *model.Hooks
	compiler visibility.Compiler
	extras   map[string]any
	logger   zerolog.Logger

	builder   model.Builder
	validator *validation.Validator

	// mu serialises writers; readers only touch current.
	mu      sync.Mutex
	current atomic.Pointer[catalog]
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies fall back to the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	if o.loader == nil {
		o.loader = loader.New(schema.NewLoaderOptions())
	}
	if o.ids == nil {
		o.ids = ident.UUID()
	}
	if o.hooks == nil {
		o.hooks = model.NewHooks()
	}

	builderOpts := []model.BuilderOption{
		model.WithIDSource(o.ids),
		model.WithHooks(o.hooks),
		model.WithLogger(o.logger),
	}
	if o.compiler != nil {
		builderOpts = append(builderOpts, model.WithExpressionEvaluator(o.compiler))
	}
	o.builder = model.NewBuilder(builderOpts...)
	o.validator = validation.New(
		validation.WithIDSource(o.ids),
		validation.WithExtras(o.extras),
		validation.WithLogger(o.logger),
	)

	empty := catalog{}
	o.current.Store(&empty)
	return o
}

// Hooks exposes the registry so hosts can register functions before loading.
func (o *Orchestrator) Hooks() *model.Hooks {
	return o.hooks
}

// IDs returns the identifier source shared by every component.
func (o *Orchestrator) IDs() ident.Source {
	return o.ids
}

// Load reads src, builds it and publishes the result under name.
func (o *Orchestrator) Load(ctx context.Context, name string, src schema.Source) (*Published, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := o.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return o.LoadDocument(name, doc)
}

// LoadDocument decodes doc and publishes it under name.
func (o *Orchestrator) LoadDocument(name string, doc schema.Document) (*Published, error) {
	def, err := doc.Definition()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: decode %s: %w", doc.Location(), err)
	}
	return o.LoadDefinition(name, def)
}

// LoadDefinition builds def and publishes it under name, replacing any
// previous version. The name also becomes available as an extends target
// for documents loaded afterwards.
func (o *Orchestrator) LoadDefinition(name string, def schema.Definition) (*Published, error) {
	if name == "" {
		return nil, errors.New("orchestrator: schema name is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	root, err := o.builder.Define(name, def)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build %s: %w", name, err)
	}

	prev := *o.current.Load()
	version := 1
	if old, ok := prev[name]; ok {
		version = old.Version + 1
	}
	pub := &Published{
		Name:        name,
		Version:     version,
		Definition:  def,
		Root:        root,
		Diagnostics: o.builder.Diagnostics(),
	}

	next := maps.Clone(prev)
	next[name] = pub
	o.current.Store(&next)

	o.logger.Debug().
		Str("schema", name).
		Int("version", version).
		Int("diagnostics", len(pub.Diagnostics)).
		Msg("schema published")
	return pub, nil
}

// Unload removes name from the session.
func (o *Orchestrator) Unload(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	prev := *o.current.Load()
	if _, ok := prev[name]; !ok {
		return false
	}
	next := maps.Clone(prev)
	delete(next, name)
	o.current.Store(&next)
	return true
}

// Published returns the snapshot stored under name.
func (o *Orchestrator) Published(name string) (*Published, bool) {
	pub, ok := (*o.current.Load())[name]
	return pub, ok
}

// Schema returns the root node published under name.
func (o *Orchestrator) Schema(name string) (*model.Node, bool) {
	pub, ok := o.Published(name)
	if !ok {
		return nil, false
	}
	return pub.Root, true
}

// Names lists the loaded schema names, sorted.
func (o *Orchestrator) Names() []string {
	return slices.Sorted(maps.Keys(*o.current.Load()))
}

// Normalize coerces value into the shape of the named schema.
func (o *Orchestrator) Normalize(name string, value any) (any, model.Diagnostics, error) {
	root, err := o.root(name)
	if err != nil {
		return nil, nil, err
	}
	out, diags := o.validator.Normalize(value, root)
	return out, diags, nil
}

// Defaults returns a fresh default value for the named schema.
func (o *Orchestrator) Defaults(name string) (any, error) {
	root, err := o.root(name)
	if err != nil {
		return nil, err
	}
	return model.CanonicalDefault(root, o.ids), nil
}

func (o *Orchestrator) root(name string) (*model.Node, error) {
	root, ok := o.Schema(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	return root, nil
}
