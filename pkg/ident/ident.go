// Package ident supplies the identifiers minted by the schema engine: field ids
// assigned at construction time and i18n placeholder keys minted whenever a
// translatable leaf needs a fresh slot. Production code uses UUIDs; tests inject
// a Sequence so minted values are predictable.
package ident

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Source mints process-unique identifiers.
type Source interface {
	NewID() string
}

// SourceFunc adapts a function into a Source.
type SourceFunc func() string

// NewID delegates to the underlying function.
func (fn SourceFunc) NewID() string {
	return fn()
}

type uuidSource struct{}

func (uuidSource) NewID() string {
	return uuid.New().String()
}

// UUID returns a Source backed by random (v4) UUIDs.
func UUID() Source {
	return uuidSource{}
}

// Sequence yields prefix-1, prefix-2, ... and is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence constructs a deterministic Source.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: strings.TrimSpace(prefix)}
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	if s.prefix == "" {
		return strconv.Itoa(s.next)
	}
	return s.prefix + "-" + strconv.Itoa(s.next)
}

// Minted reports how many identifiers the sequence has produced.
func (s *Sequence) Minted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// OrDefault returns src, falling back to UUID when src is nil.
func OrDefault(src Source) Source {
	if src == nil {
		return UUID()
	}
	return src
}
