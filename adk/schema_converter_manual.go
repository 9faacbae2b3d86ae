package adk

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/robbyt/geminischema"
)

// ManualSchemaConverter implements SchemaConverter by walking the tree
// field by field.
type ManualSchemaConverter struct{}

// NewManualSchemaConverter creates the default schema converter.
func NewManualSchemaConverter() SchemaConverter {
	return &ManualSchemaConverter{}
}

// Convert implements SchemaConverter.
func (c *ManualSchemaConverter) Convert(node geminischema.Node) (map[string]any, error) {
	if node == nil {
		return nil, nil
	}

	result := make(map[string]any)
	switch n := node.(type) {
	case *geminischema.TypedNode:
		slog.Default().Debug("Manual schema conversion", "schema_type", n.Type)
		result["type"] = string(n.Type)

		if len(n.Properties) > 0 {
			props := make(map[string]any, len(n.Properties))
			for key, val := range n.Properties {
				propMap, err := c.Convert(val)
				if err != nil {
					return nil, fmt.Errorf("failed to convert property %q: %w", key, err)
				}
				props[key] = propMap
			}
			result["properties"] = props
		}

		if n.Items != nil {
			items, err := c.Convert(n.Items)
			if err != nil {
				return nil, fmt.Errorf("failed to convert items: %w", err)
			}
			result["items"] = items
		}
	case *geminischema.UnionNode:
		slog.Default().Debug("Manual schema conversion", "alternatives", len(n.AnyOf))
		anyOf := make([]any, len(n.AnyOf))
		for i, alt := range n.AnyOf {
			altMap, err := c.Convert(alt)
			if err != nil {
				return nil, fmt.Errorf("failed to convert anyOf[%d]: %w", i, err)
			}
			anyOf[i] = altMap
		}
		result["anyOf"] = anyOf
	default:
		return nil, fmt.Errorf("unsupported schema node %T", node)
	}

	if node.IsNullable() {
		result["nullable"] = true
	}
	copyAnnotations(result, node.Meta())
	return result, nil
}

func copyAnnotations(result map[string]any, a *geminischema.Annotations) {
	if a.Title != "" {
		result["title"] = a.Title
	}
	if a.Description != "" {
		result["description"] = a.Description
	}
	if a.Format != "" {
		result["format"] = a.Format
	}
	if a.Pattern != "" {
		result["pattern"] = a.Pattern
	}
	if a.Minimum != nil {
		result["minimum"] = *a.Minimum
	}
	if a.Maximum != nil {
		result["maximum"] = *a.Maximum
	}

	counts := []struct {
		key string
		val *int64
	}{
		{"minLength", a.MinLength},
		{"maxLength", a.MaxLength},
		{"minItems", a.MinItems},
		{"maxItems", a.MaxItems},
		{"minProperties", a.MinProperties},
		{"maxProperties", a.MaxProperties},
	}
	for _, c := range counts {
		if c.val != nil {
			result[c.key] = *c.val
		}
	}

	if len(a.Enum) > 0 {
		enum := make([]string, len(a.Enum))
		for i, v := range a.Enum {
			enum[i] = fmt.Sprint(v)
		}
		result["enum"] = enum
	}
	if len(a.Required) > 0 {
		result["required"] = slices.Clone(a.Required)
	}
	if len(a.PropertyOrdering) > 0 {
		result["propertyOrdering"] = slices.Clone(a.PropertyOrdering)
	}
	if a.Default != nil {
		result["default"] = a.Default
	}
	if a.Example != nil {
		result["example"] = a.Example
	}
}
