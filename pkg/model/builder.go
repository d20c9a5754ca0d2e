package model

import (
	"github.com/rs/zerolog"

	internalmodel "github.com/goliatone/go-fieldschema/internal/model"
	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/schema"
	"github.com/goliatone/go-fieldschema/pkg/visibility"
)

// Builder converts schema definitions into node trees.
type Builder interface {
	Build(def schema.Definition) (*Node, error)
	Define(name string, def schema.Definition) (*Node, error)
	Register(name string, node *Node)
	Lookup(name string) (*Node, bool)
	Diagnostics() Diagnostics
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	ids      ident.Source
	hooks    *Hooks
	compiler visibility.Compiler
	logger   *zerolog.Logger
	labeler  func(string) string
}

// WithIDSource sets the generator used for fieldId and i18n key minting.
func WithIDSource(ids ident.Source) BuilderOption {
	return func(opts *builderOptions) {
		opts.ids = ids
	}
}

// WithHooks supplies the registry that resolves enableWhen, defaultValueFn
// and dynamicOptions names.
func WithHooks(hooks *Hooks) BuilderOption {
	return func(opts *builderOptions) {
		opts.hooks = hooks
	}
}

// WithExpressionEvaluator overrides the compiler used for enableWhen rules
// that do not name a registered predicate.
func WithExpressionEvaluator(compiler visibility.Compiler) BuilderOption {
	return func(opts *builderOptions) {
		opts.compiler = compiler
	}
}

// WithLogger routes build diagnostics to logger at debug level.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(opts *builderOptions) {
		opts.logger = &logger
	}
}

// WithLabeler overrides the label derived for fields without a name.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	return internalmodel.New(internalmodel.Options{
		IDs:      cfg.ids,
		Hooks:    cfg.hooks,
		Compiler: cfg.compiler,
		Logger:   cfg.logger,
		Labeler:  cfg.labeler,
	})
}
