// Package model exposes the schema node tree: a closed set of nine variants
// (object, array and seven leaves) each carrying a config map merged from
// variant defaults and document overrides. Builders reside in internal/model
// but return the types re-exported here.
//
// Documents name behaviour symbolically. `enableWhen` either names a
// predicate registered in Hooks or is compiled with the pkg/visibility/expr
// language; `defaultValueFn` and `dynamicOptions` must name registered hooks.
// Nothing in a document is executed as code. Unresolvable names never fail a
// build: they surface as Diagnostics and the field keeps its static
// behaviour.
//
// String fields declaring `extends: <name>` share the node registered under
// that name (see Builder.Define and Builder.Register). Within one build,
// sharing is aliasing: every referencing field receives the same instance and
// their override configs are merged into it. That instance is a copy of the
// registered node, which stays untouched so trees built earlier never change.
package model
