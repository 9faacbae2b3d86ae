package adk

import (
	"testing"

	"github.com/robbyt/geminischema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualSchemaConverter_NilNode(t *testing.T) {
	converter := NewManualSchemaConverter()
	result, err := converter.Convert(nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestManualSchemaConverter_BasicTypes(t *testing.T) {
	tests := []struct {
		name     string
		doc      map[string]any
		expected map[string]any
	}{
		{
			name:     "string type",
			doc:      map[string]any{"type": "STRING", "description": "A string value"},
			expected: map[string]any{"type": "string", "description": "A string value"},
		},
		{
			name:     "number type with format",
			doc:      map[string]any{"type": "number", "format": "float"},
			expected: map[string]any{"type": "number", "format": "float"},
		},
		{
			name:     "boolean type",
			doc:      map[string]any{"type": "boolean"},
			expected: map[string]any{"type": "boolean"},
		},
		{
			name:     "integer with min/max",
			doc:      map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
			expected: map[string]any{"type": "integer", "minimum": 1.0, "maximum": 100.0},
		},
		{
			name:     "string with length bounds",
			doc:      map[string]any{"type": "string", "minLength": 1, "max_length": 5},
			expected: map[string]any{"type": "string", "minLength": int64(1), "maxLength": int64(5)},
		},
		{
			name: "nullable union collapses",
			doc: map[string]any{
				"anyOf":       []any{map[string]any{"type": "integer"}, map[string]any{"type": "null"}},
				"description": "Person's age",
			},
			expected: map[string]any{"type": "integer", "nullable": true, "description": "Person's age"},
		},
	}

	converter := NewManualSchemaConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := converter.Convert(mustNormalize(t, tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestManualSchemaConverter_ObjectWithProperties(t *testing.T) {
	schema := objectSchema().
		withDescription("A person object").
		withStringProp("name", "Person's name").
		withNullableIntegerProp("age", "Person's age").
		withRequired("name").
		build()

	doc, err := geminischema.FromGenai(schema)
	require.NoError(t, err)

	converter := NewManualSchemaConverter()
	result, err := converter.Convert(mustNormalize(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "object", result["type"])
	assert.Equal(t, "A person object", result["description"])
	assert.Equal(t, []string{"name"}, result["required"])

	props, ok := result["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "string", "description": "Person's name"}, props["name"])
	assert.Equal(t, map[string]any{"type": "integer", "nullable": true, "description": "Person's age"}, props["age"])
}

func TestManualSchemaConverter_ArrayWithItems(t *testing.T) {
	node := mustNormalize(t, map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "description": "String item"},
	})

	converter := NewManualSchemaConverter()
	result, err := converter.Convert(node)
	require.NoError(t, err)
	assert.Equal(t, "array", result["type"])

	items, ok := result["items"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", items["type"])
	assert.Equal(t, "String item", items["description"])
}

func TestManualSchemaConverter_Union(t *testing.T) {
	node := mustNormalize(t, map[string]any{
		"type":        []any{"string", "integer", "null"},
		"description": "An id",
	})

	converter := NewManualSchemaConverter()
	result, err := converter.Convert(node)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "integer"},
		},
		"nullable":    true,
		"description": "An id",
	}, result)
}

func TestManualSchemaConverter_WithEnum(t *testing.T) {
	node := mustNormalize(t, map[string]any{
		"type": "string",
		"enum": []any{"red", "green", "blue"},
	})

	converter := NewManualSchemaConverter()
	result, err := converter.Convert(node)
	require.NoError(t, err)
	assert.Equal(t, "string", result["type"])
	assert.Equal(t, []string{"red", "green", "blue"}, result["enum"])
}

func TestManualSchemaConverter_DoesNotShareLists(t *testing.T) {
	node := mustNormalize(t, map[string]any{
		"type":              "object",
		"properties":        map[string]any{"a": map[string]any{}, "b": map[string]any{}},
		"required":          []any{"a", "b"},
		"property_ordering": []any{"a", "b"},
	})

	result, err := NewManualSchemaConverter().Convert(node)
	require.NoError(t, err)
	result["required"].([]string)[0] = "changed"
	result["propertyOrdering"].([]string)[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, node.Meta().Required)
	assert.Equal(t, []string{"a", "b"}, node.Meta().PropertyOrdering)
}

func BenchmarkManualSchemaConverter(b *testing.B) {
	node := getBenchmarkSchema(b)
	converter := NewManualSchemaConverter()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := converter.Convert(node)
		if err != nil {
			b.Fatal(err)
		}
	}
}
