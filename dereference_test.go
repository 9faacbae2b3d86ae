package geminischema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDereference_LocalDefinitions(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{
		"$defs": {
			"Address": {
				"type": "object",
				"properties": {"city": {"type": "string"}},
				"required": ["city"]
			}
		},
		"definitions": {"Tag": {"type": "string"}},
		"type": "object",
		"properties": {
			"home": {"$ref": "#/$defs/Address"},
			"work": {"anyOf": [{"$ref": "#/$defs/Address"}, {"type": "null"}]},
			"tags": {"type": "array", "items": {"$ref": "#/definitions/Tag"}}
		}
	}`))
	require.NoError(t, err)

	out, err := Dereference(doc)
	require.NoError(t, err)
	assert.NotContains(t, out, "$defs")
	assert.NotContains(t, out, "definitions")

	got := normalizeDoc(t, out)
	props := got["properties"].(map[string]any)
	assert.Equal(t, map[string]any{
		"type":       "object",
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
		"required":   []string{"city"},
	}, props["home"])
	assert.Equal(t, map[string]any{
		"type":       "object",
		"nullable":   true,
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
		"required":   []string{"city"},
	}, props["work"])
	assert.Equal(t, map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}, props["tags"])
}

func TestDereference_SiblingsOverride(t *testing.T) {
	doc := map[string]any{
		"$defs": map[string]any{
			"Name": map[string]any{"type": "string", "description": "generic"},
		},
		"type": "object",
		"properties": map[string]any{
			"first": map[string]any{"$ref": "#/$defs/Name", "description": "first name"},
			"last":  map[string]any{"$ref": "#/$defs/Name"},
		},
	}

	out, err := Dereference(doc)
	require.NoError(t, err)

	props := out["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "description": "first name"}, props["first"])
	assert.Equal(t, map[string]any{"type": "string", "description": "generic"}, props["last"])

	// The shared definition is untouched by the override.
	assert.Equal(t, "generic", doc["$defs"].(map[string]any)["Name"].(map[string]any)["description"])
}

func TestDereference_RootRef(t *testing.T) {
	doc := map[string]any{
		"$ref":  "#/$defs/Item",
		"title": "Root",
		"$defs": map[string]any{
			"Item": map[string]any{"type": "integer", "title": "Item"},
		},
	}

	out, err := Dereference(doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "integer", "title": "Root"}, out)
}

func TestDereference_RecursiveDefinitionIsRejected(t *testing.T) {
	doc := map[string]any{
		"$defs": map[string]any{
			"Node": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"next": map[string]any{"$ref": "#/$defs/Node"},
				},
			},
		},
		"$ref": "#/$defs/Node",
	}

	out, err := Dereference(doc)
	require.NoError(t, err)

	_, err = Normalize(out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedSchema))
	assert.ErrorContains(t, err, "cycle")
}

func TestDereference_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		path string
	}{
		{
			name: "unresolved",
			doc: map[string]any{
				"properties": map[string]any{"a": map[string]any{"$ref": "#/$defs/Missing"}},
			},
			path: "/properties/a",
		},
		{
			name: "non-string ref",
			doc: map[string]any{
				"properties": map[string]any{"a": map[string]any{"$ref": 3.0}},
			},
			path: "/properties/a/$ref",
		},
		{
			name: "definition not an object",
			doc: map[string]any{
				"$defs": map[string]any{"Bad": "string"},
				"items": map[string]any{"$ref": "#/$defs/Bad"},
			},
			path: "/items",
		},
		{
			name: "table not an object",
			doc:  map[string]any{"$defs": []any{}},
			path: "/$defs",
		},
		{
			name: "self alias",
			doc: map[string]any{
				"$ref":  "#/$defs/A",
				"$defs": map[string]any{"A": map[string]any{"$ref": "#/$defs/A"}},
			},
			path: "/$defs/A",
		},
		{
			name: "mutual alias",
			doc: map[string]any{
				"properties": map[string]any{"x": map[string]any{"$ref": "#/$defs/A"}},
				"$defs": map[string]any{
					"A": map[string]any{"$ref": "#/$defs/B"},
					"B": map[string]any{"$ref": "#/$defs/A", "description": "loops back"},
				},
			},
			path: "/$defs/B",
		},
		{
			name: "error inside definition",
			doc: map[string]any{
				"$defs": map[string]any{
					"Outer": map[string]any{"items": map[string]any{"$ref": "#/$defs/Gone"}},
				},
				"items": map[string]any{"$ref": "#/$defs/Outer"},
			},
			path: "/$defs/Outer/items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dereference(tt.doc)
			requireMalformed(t, err, tt.path)
		})
	}
}

func TestDereference_AliasChain(t *testing.T) {
	doc := map[string]any{
		"$defs": map[string]any{
			"A": map[string]any{"$ref": "#/$defs/B"},
			"B": map[string]any{"type": "string"},
		},
		"items": map[string]any{"$ref": "#/$defs/A"},
	}

	out, err := Dereference(doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "string"}, out["items"])
}

func TestDereference_Nil(t *testing.T) {
	out, err := Dereference(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}
