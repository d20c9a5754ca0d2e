// Package visibility defines the contract between schema nodes and the
// rule language deciding whether a field is enabled.
package visibility

// Program is a rule compiled once (at schema build time) and evaluated many
// times against different contexts.
type Program interface {
	Eval(ctx Context) (bool, error)
}

// Compiler turns rule source into a Program. Compilation errors surface when
// the schema is built rather than on every evaluation.
type Compiler interface {
	Compile(rule string) (Program, error)
}

// Context holds the inputs of one evaluation. Values is the enclosing object
// the rule is evaluated against, Self the raw root (which may not be an
// object, e.g. a primitive array element) and Extras host-supplied data such
// as feature flags.
type Context struct {
	Values map[string]any
	Self   any
	Extras map[string]any
}

// ContextFor builds a Context whose root is value.
func ContextFor(value any) Context {
	values, _ := value.(map[string]any)
	return Context{Values: values, Self: value}
}

// WithExtras returns a copy of c carrying extras.
func (c Context) WithExtras(extras map[string]any) Context {
	c.Extras = extras
	return c
}

// ProgramFunc adapts a function into a Program.
type ProgramFunc func(ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn ProgramFunc) Eval(ctx Context) (bool, error) {
	return fn(ctx)
}
