package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Encoding names a snapshot file encoding.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

// EncodingFor picks the encoding from a file extension. JSONC and
// anything unknown read as JSON.
func EncodingFor(path string) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML
	default:
		return EncodingJSON
	}
}

// LoadFile reads and validates a snapshot file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(filepath.Base(path), data, EncodingFor(path))
}

// Parse decodes data, checks it against the snapshot schema and the
// semantic rules, and returns the file. Any problem yields an
// *ImportError listing all of them.
func Parse(source string, data []byte, enc Encoding) (*File, error) {
	raw, err := toJSON(data, enc)
	if err != nil {
		return nil, &ImportError{Source: source, Problems: []Problem{{Message: err.Error()}}}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ImportError{Source: source, Problems: []Problem{{Message: "invalid JSON: " + err.Error()}}}
	}
	if probs := validateStructure(doc); len(probs) > 0 {
		return nil, &ImportError{Source: source, Problems: probs}
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &ImportError{Source: source, Problems: []Problem{{Message: err.Error()}}}
	}
	if probs := ValidateFile(&f); len(probs) > 0 {
		return nil, &ImportError{Source: source, Problems: probs}
	}
	return &f, nil
}

// toJSON normalizes any accepted encoding to strict JSON.
func toJSON(data []byte, enc Encoding) ([]byte, error) {
	if enc != EncodingYAML {
		return jsonc.ToJSON(data), nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if v == nil {
		v = map[string]any{}
	}
	out, err := json.Marshal(stringKeys(v))
	if err != nil {
		return nil, fmt.Errorf("converting YAML: %w", err)
	}
	return out, nil
}

// stringKeys rewrites YAML maps with non-string keys (regularDaysOffSetting
// ids written as bare numbers) so they encode as JSON objects.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	default:
		return v
	}
}
