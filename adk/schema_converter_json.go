package adk

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/robbyt/geminischema"
)

// JSONSchemaConverter implements SchemaConverter by converting the tree to a
// genai.Schema and round-tripping it through JSON. It follows genai.Schema
// changes without code updates but is slower than ManualSchemaConverter.
type JSONSchemaConverter struct{}

// NewJSONSchemaConverter creates a JSON round-trip schema converter.
func NewJSONSchemaConverter() SchemaConverter {
	return &JSONSchemaConverter{}
}

// Convert implements SchemaConverter.
func (c *JSONSchemaConverter) Convert(node geminischema.Node) (map[string]any, error) {
	if node == nil {
		return nil, nil
	}

	schema := geminischema.ToGenai(node)
	slog.Default().Debug("JSON schema conversion", "schema_type", schema.Type)

	jsonBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	if err := eachSchema(result, func(s map[string]any) error {
		lowercaseTypeField(s)
		normalizeSchemaArrays(s)
		return normalizeCountFields(s)
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// eachSchema calls fn on schema and every nested schema below it.
func eachSchema(schema map[string]any, fn func(map[string]any) error) error {
	if err := fn(schema); err != nil {
		return err
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		for _, prop := range props {
			if propSchema, ok := prop.(map[string]any); ok {
				if err := eachSchema(propSchema, fn); err != nil {
					return err
				}
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		if err := eachSchema(items, fn); err != nil {
			return err
		}
	}

	if anyOf, ok := schema["anyOf"].([]any); ok {
		for _, item := range anyOf {
			if subSchema, ok := item.(map[string]any); ok {
				if err := eachSchema(subSchema, fn); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// lowercaseTypeField turns genai's "OBJECT" into JSON Schema's "object".
func lowercaseTypeField(schema map[string]any) {
	if typeStr, ok := schema["type"].(string); ok {
		schema["type"] = strings.ToLower(typeStr)
	}
}

// normalizeSchemaArrays restores []string for the list fields that JSON
// decoding turns into []any. Strict MCP servers reject []any here.
func normalizeSchemaArrays(schema map[string]any) {
	for _, key := range []string{"required", "enum", "propertyOrdering"} {
		list, ok := schema[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, len(list))
		for i, v := range list {
			if s, ok := v.(string); ok {
				out[i] = s
				continue
			}
			out[i] = fmt.Sprint(v)
		}
		schema[key] = out
	}
}

var countFields = []string{"minLength", "maxLength", "minItems", "maxItems", "minProperties", "maxProperties"}

// normalizeCountFields turns the int64 fields back into int64. genai encodes
// them as decimal strings and JSON numbers decode as float64.
func normalizeCountFields(schema map[string]any) error {
	for _, key := range countFields {
		switch v := schema[key].(type) {
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			schema[key] = n
		case float64:
			schema[key] = int64(v)
		}
	}
	return nil
}
