package geminischema

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Kind is a primitive type tag.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindNull    Kind = "null"
)

// ParseKind matches a type tag case-insensitively, so both JSON Schema
// ("integer") and genai ("INTEGER") spellings are accepted.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindString, KindInteger, KindNumber, KindBoolean, KindObject, KindArray, KindNull:
		return k, nil
	default:
		return "", fmt.Errorf("unknown type %q", s)
	}
}

// Genai returns the genai.Type for k. KindNull has no genai counterpart and
// maps to TypeUnspecified.
func (k Kind) Genai() genai.Type {
	switch k {
	case KindString:
		return genai.TypeString
	case KindInteger:
		return genai.TypeInteger
	case KindNumber:
		return genai.TypeNumber
	case KindBoolean:
		return genai.TypeBoolean
	case KindObject:
		return genai.TypeObject
	case KindArray:
		return genai.TypeArray
	default:
		return genai.TypeUnspecified
	}
}
