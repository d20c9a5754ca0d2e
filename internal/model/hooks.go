package model

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Predicate decides whether a field is enabled for the given root value.
type Predicate func(root any) bool

// DefaultUtils is handed to default hooks so they can mint identifiers from
// the same source the engine uses.
type DefaultUtils struct {
	NewID      func() string
	NewI18nKey func() string
}

// DefaultFunc replaces canonical default resolution for a node.
type DefaultFunc func(utils DefaultUtils) any

// OptionsFunc computes select options from host data.
type OptionsFunc func(ctx context.Context, root any) ([]Option, error)

// Hooks maps the symbolic names used in documents (enableWhen,
// defaultValueFn, dynamicOptions) to host-supplied functions. Names are
// matched exactly after trimming. Registration is safe for concurrent use;
// the latest registration for a name wins.
type Hooks struct {
	mu         sync.RWMutex
	predicates map[string]Predicate
	defaults   map[string]DefaultFunc
	options    map[string]OptionsFunc
}

// NewHooks constructs an empty registry.
func NewHooks() *Hooks {
	return &Hooks{
		predicates: make(map[string]Predicate),
		defaults:   make(map[string]DefaultFunc),
		options:    make(map[string]OptionsFunc),
	}
}

// RegisterPredicate registers an enableWhen predicate.
func (h *Hooks) RegisterPredicate(name string, fn Predicate) {
	name = strings.TrimSpace(name)
	if h == nil || fn == nil || name == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.predicates[name] = fn
}

// RegisterDefault registers a defaultValueFn hook.
func (h *Hooks) RegisterDefault(name string, fn DefaultFunc) {
	name = strings.TrimSpace(name)
	if h == nil || fn == nil || name == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaults[name] = fn
}

// RegisterOptions registers a dynamicOptions hook.
func (h *Hooks) RegisterOptions(name string, fn OptionsFunc) {
	name = strings.TrimSpace(name)
	if h == nil || fn == nil || name == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.options[name] = fn
}

// Predicate resolves a registered predicate.
func (h *Hooks) Predicate(name string) (Predicate, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.predicates[strings.TrimSpace(name)]
	return fn, ok
}

// Default resolves a registered default hook.
func (h *Hooks) Default(name string) (DefaultFunc, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.defaults[strings.TrimSpace(name)]
	return fn, ok
}

// Options resolves a registered options hook.
func (h *Hooks) Options(name string) (OptionsFunc, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.options[strings.TrimSpace(name)]
	return fn, ok
}

// Names lists every registered name, sorted, grouped by hook family.
func (h *Hooks) Names() (predicates, defaults, options []string) {
	if h == nil {
		return nil, nil, nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedKeys(h.predicates), sortedKeys(h.defaults), sortedKeys(h.options)
}

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
