// Package summary renders the one-line captions shown for list items, e.g.
// `{{___index}} {{id}}--{{name}}`. Output is an HTML fragment: substituted
// values are sanitised, the template text itself is trusted.
package summary

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/traverse"
)

// ConfigKey is the item-schema config entry holding the summary template.
const ConfigKey = "summary"

// Reserved placeholders.
const (
	PlaceholderKey     = "___key"
	PlaceholderIndex   = "___index"
	PlaceholderValue   = "___value"
	PlaceholderNewline = "___newline"
)

// Translations resolves i18n keys found in item values.
type Translations interface {
	Has(key string) bool
	Tr(key, lang string) string
}

// Context describes the item being summarised.
type Context struct {
	// Key is the label of the list the item belongs to.
	Key string
	// Index is zero-based; it renders one-based as `#n`.
	Index        int
	Value        any
	Translations Translations
	Lang         string
}

var (
	placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_.\[\]]+)\}\}`)

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Render expands template for ctx. Unknown paths render empty.
func Render(template string, ctx Context) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		word := placeholderPattern.FindStringSubmatch(match)[1]
		switch word {
		case PlaceholderKey:
			return clean(ctx.Key)
		case PlaceholderIndex:
			return "#" + strconv.Itoa(ctx.Index+1)
		case PlaceholderValue:
			return clean(text(ctx.Value))
		case PlaceholderNewline:
			return "<br />"
		}

		value, ok := traverse.Get(ctx.Value, word)
		if !ok || value == nil {
			return ""
		}
		if key, isString := value.(string); isString && key != "" && ctx.Translations != nil && ctx.Translations.Has(key) {
			return clean(ctx.Translations.Tr(key, ctx.Lang))
		}
		return clean(text(value))
	})
}

// ForItem renders the summary configured on an array's item schema. It
// reports false when the array has no summary template.
func ForItem(array *model.Node, ctx Context) (string, bool) {
	item := array.Item()
	if item == nil {
		return "", false
	}
	raw, _ := item.ConfigValue(ConfigKey)
	template, ok := raw.(string)
	if !ok || template == "" {
		return "", false
	}
	return Render(template, ctx), true
}

func clean(s string) string {
	return sanitizer().Sanitize(s)
}

func text(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case map[string]any, []any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return fmt.Sprint(typed)
	}
}
