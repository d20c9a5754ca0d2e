package translation

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Load replaces the table contents with a document shaped like
// {key: {lang: text}}. YAML is a superset of JSON so both formats decode.
func (t *Table) Load(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("translation: read: %w", err)
	}
	var all map[string]Texts
	if err := yaml.Unmarshal(raw, &all); err != nil {
		return fmt.Errorf("translation: decode: %w", err)
	}
	t.Replace(all)
	return nil
}

// WriteJSON writes the table as indented JSON.
func (t *Table) WriteJSON(w io.Writer) error {
	raw, err := json.MarshalIndent(t.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("translation: encode: %w", err)
	}
	_, err = w.Write(append(raw, '\n'))
	return err
}
