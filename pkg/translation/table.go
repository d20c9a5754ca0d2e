// Package translation holds the text behind i18n keys: a table keyed by
// translation key, then language. Looking up a key that has no text for a
// language yields the key itself, so untranslated content stays visible.
package translation

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
)

// ErrMissingTranslation is returned by Translate when no text exists.
var ErrMissingTranslation = errors.New("translation: missing translation")

// Texts maps language codes to text.
type Texts map[string]string

// Table is a concurrency-safe translation store.
type Table struct {
	mu        sync.RWMutex
	languages []string
	entries   map[string]Texts
}

// New creates a table for the given languages. The first language is the
// default used by callers that do not pick one.
func New(languages ...string) *Table {
	var langs []string
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if lang != "" && !slices.Contains(langs, lang) {
			langs = append(langs, lang)
		}
	}
	return &Table{languages: langs, entries: make(map[string]Texts)}
}

// Languages returns the configured languages in order.
func (t *Table) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.languages)
}

// DefaultLanguage returns the first configured language.
func (t *Table) DefaultLanguage() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.languages) == 0 {
		return ""
	}
	return t.languages[0]
}

// Tr returns the text of key in lang, or key itself when there is none.
func (t *Table) Tr(key, lang string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if text, ok := t.entries[key][lang]; ok {
		return text
	}
	return key
}

// Lookup is Tr for callers that must tell a missing entry apart from a text
// equal to its key.
func (t *Table) Lookup(key, lang string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if text, ok := t.entries[key][lang]; ok {
		return text, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, lang)
}

// Set stores text for key in lang. Every other configured language without
// an entry is seeded with an empty string so the key shows up as pending.
func (t *Table) Set(key, lang, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := t.entry(key)
	entry[lang] = text
	for _, other := range t.languages {
		if _, ok := entry[other]; !ok {
			entry[other] = ""
		}
	}
}

// SetAll stores texts for key. Configured languages missing from texts keep
// their current value, or become empty.
func (t *Table) SetAll(key string, texts Texts) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := t.entry(key)
	for _, lang := range t.languages {
		if text := texts[lang]; text != "" {
			entry[lang] = text
		} else if _, ok := entry[lang]; !ok {
			entry[lang] = ""
		}
	}
	for lang, text := range texts {
		if !slices.Contains(t.languages, lang) {
			entry[lang] = text
		}
	}
}

// Has reports whether key has an entry.
func (t *Table) Has(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[key]
	return ok
}

// ForKey returns a copy of the texts stored for key.
func (t *Table) ForKey(key string) (Texts, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	return maps.Clone(entry), true
}

// Copy duplicates the lang text of from into to, the way a duplicated list
// item inherits the text of its source. Nothing happens when from has no
// text in lang.
func (t *Table) Copy(from, to, lang string) bool {
	t.mu.RLock()
	text, ok := t.entries[from][lang]
	t.mu.RUnlock()
	if !ok {
		return false
	}
	t.Set(to, lang, text)
	return true
}

// Delete removes key.
func (t *Table) Delete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// Keys lists every key, sorted.
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a deep copy of the table contents.
func (t *Table) Snapshot() map[string]Texts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Texts, len(t.entries))
	for key, entry := range t.entries {
		out[key] = maps.Clone(entry)
	}
	return out
}

// Replace swaps the whole table contents for all.
func (t *Table) Replace(all map[string]Texts) {
	entries := make(map[string]Texts, len(all))
	for key, entry := range all {
		entries[key] = maps.Clone(entry)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = entries
}

func (t *Table) entry(key string) Texts {
	entry, ok := t.entries[key]
	if !ok {
		entry = make(Texts, len(t.languages))
		t.entries[key] = entry
	}
	return entry
}
