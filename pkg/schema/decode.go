package schema

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names the encodings accepted for schema documents.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromLocation infers the document format from a file extension.
func FormatFromLocation(location string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// ParseDefinition decodes the document payload into a Definition. The format
// is taken from the source location when it carries a known extension;
// otherwise JSON is tried for payloads starting with '{', then TOML, then YAML.
func ParseDefinition(doc Document) (Definition, error) {
	raw := doc.raw
	if len(bytes.TrimSpace(raw)) == 0 {
		return Definition{}, fmt.Errorf("schema: document %s is empty", doc.Location())
	}

	if format, ok := FormatFromLocation(doc.Location()); ok {
		def, err := DecodeDefinition(raw, format)
		if err != nil {
			return Definition{}, fmt.Errorf("schema: parse %s: %w", doc.Location(), err)
		}
		return def, nil
	}

	candidates := []Format{FormatTOML, FormatYAML}
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		candidates = []Format{FormatJSON}
	}
	var lastErr error
	for _, format := range candidates {
		def, err := DecodeDefinition(raw, format)
		if err == nil {
			return def, nil
		}
		lastErr = err
	}
	return Definition{}, fmt.Errorf("schema: parse %s: %w", doc.Location(), lastErr)
}

// DecodeDefinition decodes raw in the given format. Config values are
// normalised to JSON-like shapes (float64 numbers, []any, map[string]any) so
// the engine sees the same values regardless of the authoring format.
func DecodeDefinition(raw []byte, format Format) (Definition, error) {
	var def Definition
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(raw, &def); err != nil {
			return Definition{}, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &def); err != nil {
			return Definition{}, err
		}
	case FormatTOML:
		decoded, err := decodeTOML(raw)
		if err != nil {
			return Definition{}, err
		}
		def = decoded
	default:
		return Definition{}, fmt.Errorf("unsupported format %q", format)
	}
	if strings.TrimSpace(def.Type) == "" {
		return Definition{}, fmt.Errorf("document has no type")
	}
	normalizeDefinition(&def)
	return def, nil
}

func decodeTOML(raw []byte) (Definition, error) {
	var payload map[string]any
	meta, err := toml.Decode(string(raw), &payload)
	if err != nil {
		return Definition{}, err
	}

	position := make(map[string]int)
	for idx, key := range meta.Keys() {
		joined := strings.Join(key, "\x00")
		if _, ok := position[joined]; !ok {
			position[joined] = idx
		}
	}
	order := func(path []string, keys []string) []string {
		out := append([]string(nil), keys...)
		prefix := strings.Join(path, "\x00")
		rank := func(key string) int {
			if idx, ok := position[prefix+"\x00"+key]; ok {
				return idx
			}
			return math.MaxInt
		}
		sort.SliceStable(out, func(i, j int) bool {
			ri, rj := rank(out[i]), rank(out[j])
			if ri == rj {
				return out[i] < out[j]
			}
			return ri < rj
		})
		return out
	}
	return DefinitionFromMap(payload, order)
}

// EncodeDefinition renders def in the requested format.
func EncodeDefinition(def Definition, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		raw, err := json.Marshal(def)
		if err != nil {
			return nil, err
		}
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(def)
	default:
		return nil, fmt.Errorf("schema: encoding %q is not supported", format)
	}
}

func normalizeDefinition(def *Definition) {
	if def == nil {
		return
	}
	def.Type = strings.TrimSpace(def.Type)
	if def.Config != nil {
		def.Config, _ = NormalizeValue(def.Config).(map[string]any)
	}
	for i := range def.Fields {
		normalizeDefinition(&def.Fields[i].Definition)
	}
	normalizeDefinition(def.FieldSchema)
}

// NormalizeValue converts decoder-specific shapes into the JSON-like value
// model used throughout the engine: integers become float64, typed slices and
// maps become []any and map[string]any.
func NormalizeValue(value any) any {
	switch typed := value.(type) {
	case nil, bool, string, float64:
		return typed
	case int:
		return float64(typed)
	case int8:
		return float64(typed)
	case int16:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint:
		return float64(typed)
	case uint8:
		return float64(typed)
	case uint16:
		return float64(typed)
	case uint32:
		return float64(typed)
	case uint64:
		return float64(typed)
	case float32:
		return float64(typed)
	case json.Number:
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = NormalizeValue(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = NormalizeValue(v)
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = NormalizeValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = NormalizeValue(v)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out
	default:
		return typed
	}
}
