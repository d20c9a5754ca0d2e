package validation

import (
	"maps"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-fieldschema/pkg/ident"
)

// Option configures a Validator.
type Option func(*Validator)

// WithIDSource sets the generator used when translatable leaves need a fresh
// i18n key.
func WithIDSource(ids ident.Source) Option {
	return func(v *Validator) {
		if ids != nil {
			v.ids = ids
		}
	}
}

// WithExtras supplies host data, such as feature flags, that enableWhen rules
// read through the `extras.` prefix.
func WithExtras(extras map[string]any) Option {
	return func(v *Validator) {
		v.extras = maps.Clone(extras)
	}
}

// WithLogger routes normalization diagnostics to logger at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}
