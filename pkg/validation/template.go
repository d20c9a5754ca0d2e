package validation

import (
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w*)\}\}`)

// Placeholders lists the distinct `{{name}}` names of tpl in order of first
// appearance. Empty placeholders are ignored.
func Placeholders(tpl string) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, match := range placeholderPattern.FindAllStringSubmatch(tpl, -1) {
		name := match[1]
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// ExpandTemplate builds the {value, fields} pair of a code string: fields
// carries one entry per placeholder, taken from the incoming value's fields
// when present and null otherwise; value is tpl with every placeholder
// replaced by its field rendered as text (null renders empty).
func ExpandTemplate(tpl string, value any) map[string]any {
	return expandTemplate(tpl, value)
}

func expandTemplate(tpl string, value any) map[string]any {
	var incoming map[string]any
	if values, ok := value.(map[string]any); ok {
		incoming, _ = values["fields"].(map[string]any)
	}

	fields := make(map[string]any)
	for _, name := range Placeholders(tpl) {
		fields[name] = nil
		if v, ok := incoming[name]; ok {
			fields[name] = v
		}
	}

	expanded := placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}")
		if name == "" {
			return match
		}
		return renderText(fields[name])
	})
	return map[string]any{"value": expanded, "fields": fields}
}

func renderText(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		raw, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
