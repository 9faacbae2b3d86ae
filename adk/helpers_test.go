package adk

import (
	"context"
	"iter"
	"maps"
	"testing"

	"github.com/robbyt/geminischema"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLM) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	args := m.Called(ctx, req, stream)
	return args.Get(0).(iter.Seq2[*model.LLMResponse, error])
}

func responses(resps ...*model.LLMResponse) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		for _, r := range resps {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func collectResponses(t *testing.T, seq iter.Seq2[*model.LLMResponse, error]) ([]*model.LLMResponse, error) {
	t.Helper()
	var out []*model.LLMResponse
	for resp, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// personJSONSchema is a Pydantic model with a nested definition and a
// nullable field, as it arrives in ParametersJsonSchema.
func personJSONSchema() map[string]any {
	return map[string]any{
		"$defs": map[string]any{
			"Address": map[string]any{
				"type":       "object",
				"title":      "Address",
				"properties": map[string]any{"city": map[string]any{"type": "string", "title": "City"}},
				"required":   []any{"city"},
			},
		},
		"type":  "object",
		"title": "Person",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "description": "Person's name"},
			"age": map[string]any{
				"anyOf":       []any{map[string]any{"type": "integer", "minimum": 0}, map[string]any{"type": "null"}},
				"description": "Person's age",
			},
			"address": map[string]any{
				"anyOf": []any{map[string]any{"$ref": "#/$defs/Address"}, map[string]any{"type": "null"}},
			},
		},
		"required": []any{"name", "age"},
	}
}

func mustNormalize(t testing.TB, doc map[string]any) geminischema.Node {
	t.Helper()
	node, err := geminischema.Normalize(doc)
	require.NoError(t, err)
	return node
}

// Schema builder helper

type schemaBuilder struct {
	schema *genai.Schema
}

func objectSchema() *schemaBuilder {
	return &schemaBuilder{
		schema: &genai.Schema{
			Type:       "OBJECT",
			Properties: make(map[string]*genai.Schema),
		},
	}
}

func (sb *schemaBuilder) withStringProp(name, desc string) *schemaBuilder {
	sb.schema.Properties[name] = &genai.Schema{Type: "STRING", Description: desc}
	return sb
}

func (sb *schemaBuilder) withNullableIntegerProp(name, desc string) *schemaBuilder {
	sb.schema.Properties[name] = &genai.Schema{
		AnyOf:       []*genai.Schema{{Type: "INTEGER"}, {Type: "NULL"}},
		Description: desc,
	}
	return sb
}

func (sb *schemaBuilder) withDescription(desc string) *schemaBuilder {
	sb.schema.Description = desc
	return sb
}

func (sb *schemaBuilder) withRequired(fields ...string) *schemaBuilder {
	sb.schema.Required = fields
	return sb
}

func (sb *schemaBuilder) build() *genai.Schema {
	return sb.schema
}

func getBenchmarkSchema(b *testing.B) geminischema.Node {
	b.Helper()
	props := make(map[string]any)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		props[name] = map[string]any{
			"anyOf":       []any{map[string]any{"type": "string", "enum": []any{"x", "y"}}, map[string]any{"type": "null"}},
			"description": "field " + name,
		}
	}
	itemProps := maps.Clone(props)
	props["list"] = map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "object", "properties": itemProps},
	}
	return mustNormalize(b, map[string]any{"type": "object", "properties": props})
}
