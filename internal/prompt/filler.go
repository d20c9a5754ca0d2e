// Package prompt fills schema-shaped values interactively. Every enabled
// leaf is asked for in pre-order; translatable strings are asked for as
// literal text and stored in a translation table under a fresh key.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/translation"
	"github.com/goliatone/go-fieldschema/pkg/validation"
)

// Option configures a Filler.
type Option func(*Filler)

// WithIDSource sets the generator used for i18n keys.
func WithIDSource(ids ident.Source) Option {
	return func(f *Filler) {
		if ids != nil {
			f.ids = ids
		}
	}
}

// WithTranslations stores translatable answers in table under lang.
func WithTranslations(table *translation.Table, lang string) Option {
	return func(f *Filler) {
		f.table = table
		f.lang = lang
	}
}

// WithExtras supplies host data that enableWhen rules read through the
// `extras.` prefix.
func WithExtras(extras map[string]any) Option {
	return func(f *Filler) {
		f.extras = maps.Clone(extras)
	}
}

// WithLogger routes filler events to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Filler) {
		f.logger = logger
	}
}

// Filler walks a schema and asks the driver for each value.
type Filler struct {
	driver PromptDriver
	ids    ident.Source
	table  *translation.Table
	lang   string
	extras map[string]any
	logger zerolog.Logger
}

// NewFiller constructs a Filler over driver.
func NewFiller(driver PromptDriver, options ...Option) *Filler {
	f := &Filler{driver: driver, ids: ident.UUID(), logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.table == nil {
		f.table = translation.New("en")
	}
	if f.lang == "" {
		f.lang = f.table.DefaultLanguage()
	}
	return f
}

// Translations returns the table translatable answers were written to.
func (f *Filler) Translations() *translation.Table {
	return f.table
}

// Fill prompts for a complete value of node. The answers are normalized
// before returning, so the result always has the schema's shape.
func (f *Filler) Fill(ctx context.Context, node *model.Node) (any, error) {
	if f.driver == nil {
		return nil, errors.New("prompt: driver is nil")
	}
	if node == nil {
		return nil, errors.New("prompt: schema is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var value any
	if node.Kind() == model.KindObject {
		target := map[string]any{}
		if err := f.fillObject(ctx, node, target, target, ""); err != nil {
			return nil, err
		}
		value = target
	} else {
		v, err := f.fillValue(ctx, node, nil, "", "Value")
		if err != nil {
			return nil, err
		}
		value = v
	}

	out, diags := validation.New(
		validation.WithIDSource(f.ids),
		validation.WithExtras(f.extras),
		validation.WithLogger(f.logger),
	).Normalize(value, node)
	for _, diag := range diags {
		f.logger.Debug().Str("path", diag.Path).Str("code", diag.Code).Msg(diag.Message)
	}
	return out, nil
}

// fillObject writes answers into target as they arrive so later enableWhen
// predicates see earlier answers through root. Fields of a nested object are
// evaluated against that object, as normalization does.
func (f *Filler) fillObject(ctx context.Context, node *model.Node, target map[string]any, root any, path string) error {
	for _, field := range node.Fields() {
		fieldPath := joinPath(path, field.ID)
		enabled, err := field.Node.EnabledWith(root, f.extras)
		if err != nil {
			f.logger.Debug().Err(err).Str("path", fieldPath).Msg("enableWhen failed; prompting anyway")
		} else if !enabled {
			continue
		}

		if field.Node.Kind() == model.KindObject {
			child := map[string]any{}
			target[field.ID] = child
			if err := f.fillObject(ctx, field.Node, child, child, fieldPath); err != nil {
				return err
			}
			continue
		}
		value, err := f.fillValue(ctx, field.Node, root, fieldPath, labelFor(field))
		if err != nil {
			return err
		}
		target[field.ID] = value
	}
	return nil
}

func (f *Filler) fillValue(ctx context.Context, node *model.Node, root any, path, label string) (any, error) {
	switch node.Kind() {
	case model.KindObject:
		target := map[string]any{}
		if err := f.fillObject(ctx, node, target, target, path); err != nil {
			return nil, err
		}
		return target, nil
	case model.KindArray:
		return f.fillArray(ctx, node, path, label)
	case model.KindString:
		return f.fillString(ctx, node, label)
	case model.KindNumber:
		return f.fillNumber(ctx, node, label)
	case model.KindBoolean:
		def, _ := node.DefaultValue().(bool)
		return f.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def})
	case model.KindSelect:
		return f.fillSelect(ctx, node, root, label)
	case model.KindActorSelect:
		id, err := f.driver.Input(ctx, InputConfig{Message: label, Help: "actor id"})
		if err != nil {
			return nil, err
		}
		if id = strings.TrimSpace(id); id == "" {
			return node.DefaultValue(), nil
		}
		return map[string]any{"id": id, "portrait": nil}, nil
	default:
		def, _ := node.DefaultValue().(string)
		return f.driver.Input(ctx, InputConfig{Message: label, Default: def})
	}
}

func (f *Filler) fillArray(ctx context.Context, node *model.Node, path, label string) (any, error) {
	items := []any{}
	for {
		more, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add item #%d to %s?", len(items)+1, label),
		})
		if err != nil {
			return nil, err
		}
		if !more {
			return items, nil
		}
		itemPath := path + "." + strconv.Itoa(len(items))
		// Array items are their own enableWhen root.
		item, err := f.fillValue(ctx, node.Item(), nil, itemPath, label)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (f *Filler) fillString(ctx context.Context, node *model.Node, label string) (any, error) {
	if node.StringType() == model.StringTypeCode {
		return f.fillCode(ctx, node, label)
	}

	def, _ := node.DefaultValue().(string)
	if node.NeedI18n() {
		def = ""
	}
	var (
		text string
		err  error
	)
	if node.StringType() == model.StringTypeMultiline {
		text, err = f.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: def})
	} else {
		text, err = f.driver.Input(ctx, InputConfig{Message: label, Default: def, Validator: lengthValidator(node)})
	}
	if err != nil {
		return nil, err
	}
	if !node.NeedI18n() {
		return text, nil
	}

	key := model.NewI18nKey(f.ids)
	f.table.Set(key, f.lang, text)
	f.logger.Debug().Str("key", key).Str("lang", f.lang).Msg("translation stored")
	return key, nil
}

func (f *Filler) fillCode(ctx context.Context, node *model.Node, label string) (any, error) {
	tpl, ok := node.Template()
	if !ok {
		text, err := f.driver.TextArea(ctx, TextAreaConfig{Message: label})
		if err != nil {
			return nil, err
		}
		return map[string]any{"value": text, "fields": map[string]any{}}, nil
	}

	fields := map[string]any{}
	for _, name := range validation.Placeholders(tpl) {
		answer, err := f.driver.Input(ctx, InputConfig{Message: label + " " + name})
		if err != nil {
			return nil, err
		}
		fields[name] = answer
	}
	return validation.ExpandTemplate(tpl, map[string]any{"fields": fields}), nil
}

func (f *Filler) fillNumber(ctx context.Context, node *model.Node, label string) (any, error) {
	def, _ := model.AsNumber(node.DefaultValue())
	cfg := node.Config()
	lo, hasLo := cfg.Number(model.KeyMinLen)
	hi, hasHi := cfg.Number(model.KeyMaxLen)

	answer, err := f.driver.Input(ctx, InputConfig{
		Message: label,
		Default: strconv.FormatFloat(def, 'f', -1, 64),
		Validator: func(s string) error {
			n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return fmt.Errorf("%q is not a number", s)
			}
			if hasLo && n < lo {
				return fmt.Errorf("must be at least %v", lo)
			}
			if hasHi && n > hi {
				return fmt.Errorf("must be at most %v", hi)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil {
		return def, nil
	}
	return n, nil
}

func (f *Filler) fillSelect(ctx context.Context, node *model.Node, root any, label string) (any, error) {
	options, err := node.Options(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("prompt: options for %s: %w", label, err)
	}
	choices := model.FlattenOptions(options)
	if len(choices) == 0 {
		if err := f.driver.Info(ctx, label+": no options available"); err != nil {
			return nil, err
		}
		return node.DefaultValue(), nil
	}

	labels := make([]string, len(choices))
	defIndex := 0
	def := node.DefaultValue()
	for i, choice := range choices {
		labels[i] = choice.Label
		if sameScalar(choice.Value, def) {
			defIndex = i
		}
	}
	idx, err := f.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: defIndex})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(choices) {
		return def, nil
	}
	return model.CloneValue(choices[idx].Value), nil
}

func sameScalar(a, b any) bool {
	switch a.(type) {
	case string, float64, bool:
		return a == b
	default:
		return false
	}
}

func lengthValidator(node *model.Node) func(string) error {
	cfg := node.Config()
	lo, hasLo := cfg.Number(model.KeyMinLen)
	hi, hasHi := cfg.Number(model.KeyMaxLen)
	if !hasLo && !hasHi {
		return nil
	}
	return func(s string) error {
		n := float64(len([]rune(s)))
		if hasLo && n < lo {
			return fmt.Errorf("must be at least %v characters", lo)
		}
		if hasHi && n > hi {
			return fmt.Errorf("must be at most %v characters", hi)
		}
		return nil
	}
}

func labelFor(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

func joinPath(path, id string) string {
	if path == "" {
		return id
	}
	return path + "." + id
}
