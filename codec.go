package geminischema

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"google.golang.org/genai"
	"gopkg.in/yaml.v3"
)

// Format is a document serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a schema document in the given format.
func Decode(data []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatYAML:
		return DecodeYAML(data)
	case FormatJSON, "":
		return DecodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// DecodeJSON parses a JSON schema document.
func DecodeJSON(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON schema: %w", err)
	}
	return doc, nil
}

// DecodeYAML parses a YAML schema document. Non-string mapping keys are
// stringified.
func DecodeYAML(data []byte) (map[string]any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode YAML schema: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	doc, ok := yamlValue(raw).(map[string]any)
	if !ok {
		return nil, errors.New("YAML schema document must be a mapping")
	}
	return doc, nil
}

// Encode serializes a document. JSON output is indented.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return out, nil
	case FormatJSON, "":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// AsDocument converts the loosely typed schema values found in the wild
// (genai's ParametersJsonSchema, raw JSON, SDK structs) into a document.
func AsDocument(v any) (map[string]any, error) {
	switch d := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return d, nil
	case []byte:
		return DecodeJSON(d)
	case string:
		return DecodeJSON([]byte(d))
	case *genai.Schema:
		return FromGenai(d)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %T schema: %w", v, err)
		}
		return DecodeJSON(data)
	}
}

func yamlValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = yamlValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = yamlValue(t[i])
		}
		return out
	default:
		return v
	}
}
