package geminischema

import (
	"fmt"
	"slices"

	"github.com/goccy/go-json"
	"google.golang.org/genai"
)

// ToGenai converts a normalized tree into the genai SDK schema type.
// Enum values become strings since genai.Schema only carries string enums.
func ToGenai(n Node) *genai.Schema {
	if n == nil {
		return nil
	}

	s := &genai.Schema{}
	switch v := n.(type) {
	case *TypedNode:
		s.Type = v.Type.Genai()
		if len(v.Properties) > 0 {
			s.Properties = make(map[string]*genai.Schema, len(v.Properties))
			for name, child := range v.Properties {
				s.Properties[name] = ToGenai(child)
			}
		}
		if v.Items != nil {
			s.Items = ToGenai(v.Items)
		}
	case *UnionNode:
		s.AnyOf = make([]*genai.Schema, len(v.AnyOf))
		for i, alt := range v.AnyOf {
			s.AnyOf[i] = ToGenai(alt)
		}
	}

	if n.IsNullable() {
		s.Nullable = genai.Ptr(true)
	}

	a := n.Meta()
	s.Title = a.Title
	s.Description = a.Description
	s.Format = a.Format
	s.Pattern = a.Pattern
	s.Minimum = clonePtr(a.Minimum)
	s.Maximum = clonePtr(a.Maximum)
	s.MinLength = clonePtr(a.MinLength)
	s.MaxLength = clonePtr(a.MaxLength)
	s.MinItems = clonePtr(a.MinItems)
	s.MaxItems = clonePtr(a.MaxItems)
	s.MinProperties = clonePtr(a.MinProperties)
	s.MaxProperties = clonePtr(a.MaxProperties)
	s.Enum = enumStrings(a.Enum)
	s.Required = slices.Clone(a.Required)
	s.PropertyOrdering = slices.Clone(a.PropertyOrdering)
	s.Default = a.Default
	s.Example = a.Example

	return s
}

// FromGenai turns a genai schema back into an input document so it can be
// normalized. Upper-case genai type names are accepted by Normalize.
func FromGenai(s *genai.Schema) (map[string]any, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal genai schema: %w", err)
	}
	return DecodeJSON(data)
}

func enumStrings(values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[i] = s
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
