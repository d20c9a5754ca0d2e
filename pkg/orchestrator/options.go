package orchestrator

import (
	"maps"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/schema"
	"github.com/goliatone/go-fieldschema/pkg/visibility"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom schema loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithIDSource sets the generator used for field ids and i18n keys.
func WithIDSource(ids ident.Source) Option {
	return func(o *Orchestrator) {
		o.ids = ids
	}
}

// WithHooks supplies the registry resolving enableWhen, defaultValueFn and
// dynamicOptions names.
func WithHooks(hooks *model.Hooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithExpressionEvaluator overrides the enableWhen compiler.
func WithExpressionEvaluator(compiler visibility.Compiler) Option {
	return func(o *Orchestrator) {
		o.compiler = compiler
	}
}

// WithExtras supplies host data, such as feature flags, that enableWhen rules
// read through the `extras.` prefix during normalization.
func WithExtras(extras map[string]any) Option {
	return func(o *Orchestrator) {
		o.extras = maps.Clone(extras)
	}
}

// WithLogger routes orchestrator, builder and validator events to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}
