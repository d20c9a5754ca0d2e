package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldschema/pkg/ident"
	"github.com/goliatone/go-fieldschema/pkg/model"
	"github.com/goliatone/go-fieldschema/pkg/schema"
	"github.com/goliatone/go-fieldschema/pkg/translation"
)

type stubDriver struct {
	inputs     []string
	selectIdx  []int
	confirm    []bool
	textAreas  []string
	infos      []string
	messages   []string
	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no text area scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

const lineSchema = `{
  "type": "object",
  "fields": {
    "speaker": {"type": "string", "name": "Speaker"},
    "content": {"type": "string", "name": "Content", "config": {"needI18n": true}},
    "mood": {"type": "select", "name": "Mood", "config": {"options": [
      {"label": "Calm", "value": "calm"},
      {"label": "Angry", "value": "angry"}
    ]}},
    "loud": {"type": "boolean", "name": "Loud", "config": {"enableWhen": "mood == \"angry\""}},
    "delay": {"type": "number", "name": "Delay", "config": {"maxLen": 10}},
    "lines": {"type": "array", "name": "Lines", "fieldSchema": {"type": "string"}}
  }
}`

func buildNode(t *testing.T, raw string) *model.Node {
	t.Helper()

	def, err := schema.DecodeDefinition([]byte(raw), schema.FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	node, err := model.NewBuilder(model.WithIDSource(ident.NewSequence("b"))).Build(def)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return node
}

func TestFillWalksEnabledFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		inputs:    []string{"Ada", "Hello", "2.5", "first"},
		selectIdx: []int{1},
		confirm:   []bool{true, true, false},
	}
	table := translation.New("en", "fr")
	filler := NewFiller(driver, WithIDSource(ident.NewSequence("p")), WithTranslations(table, "fr"))

	got, err := filler.Fill(context.Background(), buildNode(t, lineSchema))
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := map[string]any{
		"speaker": "Ada",
		"content": "string_field_p-1",
		"mood":    "angry",
		"loud":    true,
		"delay":   2.5,
		"lines":   []any{"first"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	if table.Tr("string_field_p-1", "fr") != "Hello" {
		t.Fatalf("expected translation to be stored under the minted key")
	}
	wantMessages := []string{"Speaker", "Content", "Mood", "Loud", "Delay", "Add item #1 to Lines?", "Lines", "Add item #2 to Lines?"}
	if diff := cmp.Diff(wantMessages, driver.messages); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestFillSkipsDisabledFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		inputs:    []string{"Ada", "Hi", "0"},
		selectIdx: []int{0},
		confirm:   []bool{false},
	}
	got, err := NewFiller(driver, WithIDSource(ident.NewSequence("p"))).Fill(context.Background(), buildNode(t, lineSchema))
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if _, ok := got.(map[string]any)["loud"]; ok {
		t.Fatalf("expected loud to be skipped, got %v", got)
	}
}

func TestFillRejectsOutOfRangeNumbers(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		inputs:    []string{"Ada", "Hi", "11"},
		selectIdx: []int{0},
	}
	_, err := NewFiller(driver).Fill(context.Background(), buildNode(t, lineSchema))
	if err == nil {
		t.Fatalf("expected validator error for 11 > maxLen")
	}
}

func TestFillCodeTemplate(t *testing.T) {
	t.Parallel()

	node := buildNode(t, `{"type": "string", "config": {"type": "code", "template": "goto({{scene}}, {{line}})"}}`)
	driver := &stubDriver{inputs: []string{"intro", "3"}}

	got, err := NewFiller(driver).Fill(context.Background(), node)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := map[string]any{
		"value":  "goto(intro, 3)",
		"fields": map[string]any{"scene": "intro", "line": "3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("code value mismatch (-want +got):\n%s", diff)
	}
}

func TestFillPropagatesAbort(t *testing.T) {
	t.Parallel()

	_, err := NewFiller(abortingDriver{&stubDriver{}}).Fill(context.Background(), buildNode(t, lineSchema))
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

type abortingDriver struct{ *stubDriver }

func (abortingDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestFillNestedObjectEvaluatesAgainstItself(t *testing.T) {
	t.Parallel()

	node := buildNode(t, `{
	  "type": "object",
	  "fields": {
	    "jump": {
	      "type": "object",
	      "fields": {
	        "mode": {"type": "select", "config": {"options": ["stay", "jump"]}},
	        "target": {"type": "string", "config": {"enableWhen": "mode == 'jump'"}}
	      }
	    }
	  }
	}`)
	driver := &stubDriver{selectIdx: []int{1}, inputs: []string{"intro"}}

	got, err := NewFiller(driver, WithIDSource(ident.NewSequence("n"))).Fill(context.Background(), node)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := map[string]any{"jump": map[string]any{"mode": "jump", "target": "intro"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Mode", "Target"}, driver.messages); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestFillPassesExtrasToRules(t *testing.T) {
	t.Parallel()

	node := buildNode(t, `{
	  "type": "object",
	  "fields": {
	    "speaker": {"type": "string"},
	    "note": {"type": "string", "config": {"enableWhen": "extras.debug"}}
	  }
	}`)
	driver := &stubDriver{inputs: []string{"Ada", "check pacing"}}
	filler := NewFiller(driver, WithIDSource(ident.NewSequence("x")), WithExtras(map[string]any{"debug": true}))

	got, err := filler.Fill(context.Background(), node)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"speaker": "Ada", "note": "check pacing"}, got); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}
