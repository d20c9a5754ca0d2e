package model

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/visibility"
	"github.com/goliatone/go-fieldschema/pkg/visibility/expr"
)

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapter in pkg/model and passed into New.
type Options struct {
	IDs      ident.Source
	Hooks    *Hooks
	Compiler visibility.Compiler
	Logger   *zerolog.Logger
	Labeler  func(string) string
}

func defaultOptions() Options {
	nop := zerolog.Nop()
	return Options{
		IDs:      ident.UUID(),
		Hooks:    NewHooks(),
		Compiler: expr.New(),
		Logger:   &nop,
		Labeler:  DefaultLabeler,
	}
}

func (o Options) withDefaults() Options {
	out := defaultOptions()
	if o.IDs != nil {
		out.IDs = o.IDs
	}
	if o.Hooks != nil {
		out.Hooks = o.Hooks
	}
	if o.Compiler != nil {
		out.Compiler = o.Compiler
	}
	if o.Logger != nil {
		out.Logger = o.Logger
	}
	if o.Labeler != nil {
		out.Labeler = o.Labeler
	}
	return out
}
