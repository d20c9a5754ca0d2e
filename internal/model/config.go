package model

import "fmt"

// Config holds the named options of a node. Values follow the JSON value
// model: nil, bool, float64, string, []any and map[string]any.
type Config map[string]any

// Recognised config keys.
const (
	KeyColSpan        = "colSpan"
	KeyDefaultValue   = "defaultValue"
	KeyDefaultValueFn = "defaultValueFn"
	KeyEnableWhen     = "enableWhen"
	KeyFieldID        = "fieldId"
	KeyRequired       = "required"
	KeyType           = "type"
	KeyTemplate       = "template"
	KeyMinLen         = "minLen"
	KeyMaxLen         = "maxLen"
	KeyNeedI18n       = "needI18n"
	KeyAutoFocus      = "autoFocus"
	KeyCodeLang       = "codeLang"
	KeyOptions        = "options"
	KeyDynamicOptions = "dynamicOptions"
	KeyExtends        = "extends"
	KeyTargetProp     = "targetProp"
	KeyInitialExpand  = "initialExpand"
)

// String node sub-types.
const (
	StringTypeSingleline = "singleline"
	StringTypeMultiline  = "multiline"
	StringTypeCode       = "code"
)

// MaxSafeInteger is the upper bound used for unbounded maxLen.
const MaxSafeInteger = 9007199254740991

const fullRow = 12

// String returns the string stored under key, or "" when it is missing or
// not a string.
func (c Config) String(key string) string {
	value, _ := c[key].(string)
	return value
}

// Bool returns the boolean stored under key.
func (c Config) Bool(key string) bool {
	value, _ := c[key].(bool)
	return value
}

// Number returns the numeric value stored under key.
func (c Config) Number(key string) (float64, bool) {
	return AsNumber(c[key])
}

func defaultConfig(kind Kind) Config {
	switch kind {
	case KindObject:
		return Config{
			KeyColSpan:       float64(fullRow),
			KeyEnableWhen:    nil,
			KeyInitialExpand: true,
		}
	case KindArray:
		return Config{
			KeyColSpan:      float64(fullRow),
			KeyDefaultValue: []any{},
			KeyEnableWhen:   nil,
			KeyRequired:     false,
		}
	case KindString:
		return Config{
			KeyColSpan:      float64(3),
			KeyDefaultValue: "",
			KeyEnableWhen:   nil,
			KeyRequired:     false,
			KeyType:         StringTypeSingleline,
			KeyTemplate:     nil,
			KeyMinLen:       float64(0),
			KeyMaxLen:       float64(MaxSafeInteger),
			KeyNeedI18n:     false,
			KeyAutoFocus:    false,
			KeyCodeLang:     "",
		}
	case KindNumber:
		return Config{
			KeyColSpan:      float64(3),
			KeyDefaultValue: float64(0),
			KeyEnableWhen:   nil,
			KeyRequired:     false,
			KeyMinLen:       float64(0),
			KeyMaxLen:       float64(MaxSafeInteger),
			KeyCodeLang:     "",
		}
	case KindBoolean:
		return Config{
			KeyColSpan:      float64(3),
			KeyDefaultValue: false,
			KeyEnableWhen:   nil,
			KeyRequired:     false,
		}
	case KindSelect:
		return Config{
			KeyColSpan:      float64(4),
			KeyDefaultValue: "",
			KeyOptions:      []any{},
			KeyEnableWhen:   nil,
			KeyRequired:     false,
		}
	case KindFile:
		return Config{
			KeyColSpan:      float64(3),
			KeyDefaultValue: "",
			KeyType:         "img",
			KeyEnableWhen:   nil,
			KeyRequired:     false,
		}
	case KindActorSelect:
		return Config{
			KeyColSpan:      float64(fullRow),
			KeyDefaultValue: map[string]any{"id": nil, "portrait": nil},
			KeyEnableWhen:   nil,
			KeyRequired:     false,
		}
	case KindStringSpeed:
		return Config{
			KeyColSpan:      float64(1),
			KeyDefaultValue: "",
			KeyEnableWhen:   nil,
			KeyRequired:     false,
			KeyTargetProp:   "content",
		}
	default:
		return Config{}
	}
}

// Option is one select choice. Groups carry their choices in Children; only
// two levels are meaningful.
type Option struct {
	Label    string   `json:"label" yaml:"label"`
	Value    any      `json:"value" yaml:"value"`
	Children []Option `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsGroup reports whether the option only groups other options.
func (o Option) IsGroup() bool {
	return len(o.Children) > 0
}

// ParseOptions reads an options list in its document form: a sequence of
// {label, value, children?} maps. Bare scalars are accepted as their own label.
func ParseOptions(raw any) []Option {
	items, ok := raw.([]any)
	if !ok {
		if typed, ok := raw.([]Option); ok {
			return append([]Option(nil), typed...)
		}
		return nil
	}
	out := make([]Option, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case map[string]any:
			opt := Option{Value: CloneValue(typed["value"])}
			if label, ok := typed["label"].(string); ok {
				opt.Label = label
			} else if typed["value"] != nil {
				opt.Label = fmt.Sprint(typed["value"])
			}
			opt.Children = ParseOptions(typed["children"])
			out = append(out, opt)
		case nil:
			continue
		default:
			out = append(out, Option{Label: fmt.Sprint(typed), Value: typed})
		}
	}
	return out
}

// FlattenOptions returns the selectable options, expanding groups.
func FlattenOptions(options []Option) []Option {
	var out []Option
	for _, opt := range options {
		if opt.IsGroup() {
			out = append(out, FlattenOptions(opt.Children)...)
			continue
		}
		out = append(out, opt)
	}
	return out
}
