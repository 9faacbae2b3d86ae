package geminischema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Annotations is metadata attached to a node that does not change which
// values it matches. Only the keys in the allow-list below survive
// normalization.
type Annotations struct {
	Title       string
	Description string
	Format      string
	Pattern     string

	Minimum *float64
	Maximum *float64

	MinLength     *int64
	MaxLength     *int64
	MinItems      *int64
	MaxItems      *int64
	MinProperties *int64
	MaxProperties *int64

	Enum             []any
	Required         []string
	PropertyOrdering []string

	Default any
	Example any
}

type annotationKey uint8

const (
	keyTitle annotationKey = iota
	keyDescription
	keyFormat
	keyPattern
	keyMinimum
	keyMaximum
	keyMinLength
	keyMaxLength
	keyMinItems
	keyMaxItems
	keyMinProperties
	keyMaxProperties
	keyEnum
	keyRequired
	keyPropertyOrdering
	keyDefault
	keyExample
	numAnnotationKeys
)

// annotationNames holds the document (snake_case) and provider (camelCase)
// spelling of every supported key, in output order.
var annotationNames = [numAnnotationKeys]struct{ snake, camel string }{
	keyTitle:            {"title", "title"},
	keyDescription:      {"description", "description"},
	keyFormat:           {"format", "format"},
	keyPattern:          {"pattern", "pattern"},
	keyMinimum:          {"minimum", "minimum"},
	keyMaximum:          {"maximum", "maximum"},
	keyMinLength:        {"min_length", "minLength"},
	keyMaxLength:        {"max_length", "maxLength"},
	keyMinItems:         {"min_items", "minItems"},
	keyMaxItems:         {"max_items", "maxItems"},
	keyMinProperties:    {"min_properties", "minProperties"},
	keyMaxProperties:    {"max_properties", "maxProperties"},
	keyEnum:             {"enum", "enum"},
	keyRequired:         {"required", "required"},
	keyPropertyOrdering: {"property_ordering", "propertyOrdering"},
	keyDefault:          {"default", "default"},
	keyExample:          {"example", "example"},
}

var annotationKeys = func() map[string]annotationKey {
	m := make(map[string]annotationKey, numAnnotationKeys)
	for k, names := range annotationNames {
		m[names.snake] = annotationKey(k)
	}
	return m
}()

func lookupAnnotation(snake string) (annotationKey, bool) {
	k, ok := annotationKeys[snake]
	return k, ok
}

// set decodes a raw document value into the field identified by key.
func (a *Annotations) set(key annotationKey, v any) error {
	var err error
	switch key {
	case keyTitle:
		a.Title, err = asString(v)
	case keyDescription:
		a.Description, err = asString(v)
	case keyFormat:
		a.Format, err = asString(v)
	case keyPattern:
		a.Pattern, err = asString(v)
	case keyMinimum:
		a.Minimum, err = asFloat(v)
	case keyMaximum:
		a.Maximum, err = asFloat(v)
	case keyMinLength:
		a.MinLength, err = asInt(v)
	case keyMaxLength:
		a.MaxLength, err = asInt(v)
	case keyMinItems:
		a.MinItems, err = asInt(v)
	case keyMaxItems:
		a.MaxItems, err = asInt(v)
	case keyMinProperties:
		a.MinProperties, err = asInt(v)
	case keyMaxProperties:
		a.MaxProperties, err = asInt(v)
	case keyEnum:
		a.Enum, err = asList(v)
	case keyRequired:
		a.Required, err = asStrings(v)
	case keyPropertyOrdering:
		a.PropertyOrdering, err = asStrings(v)
	case keyDefault:
		a.Default = v
	case keyExample:
		a.Example = v
	}
	if err != nil {
		return fmt.Errorf("%s: %w", annotationNames[key].snake, err)
	}
	return nil
}

// get returns the value stored for key and whether it is set.
func (a *Annotations) get(key annotationKey) (any, bool) {
	switch key {
	case keyTitle:
		return a.Title, a.Title != ""
	case keyDescription:
		return a.Description, a.Description != ""
	case keyFormat:
		return a.Format, a.Format != ""
	case keyPattern:
		return a.Pattern, a.Pattern != ""
	case keyMinimum:
		return derefFloat(a.Minimum)
	case keyMaximum:
		return derefFloat(a.Maximum)
	case keyMinLength:
		return derefInt(a.MinLength)
	case keyMaxLength:
		return derefInt(a.MaxLength)
	case keyMinItems:
		return derefInt(a.MinItems)
	case keyMaxItems:
		return derefInt(a.MaxItems)
	case keyMinProperties:
		return derefInt(a.MinProperties)
	case keyMaxProperties:
		return derefInt(a.MaxProperties)
	case keyEnum:
		return a.Enum, len(a.Enum) > 0
	case keyRequired:
		return a.Required, len(a.Required) > 0
	case keyPropertyOrdering:
		return a.PropertyOrdering, len(a.PropertyOrdering) > 0
	case keyDefault:
		return a.Default, a.Default != nil
	case keyExample:
		return a.Example, a.Example != nil
	}
	return nil, false
}

// each calls fn for every populated annotation in allow-list order.
func (a *Annotations) each(fn func(key annotationKey, v any)) {
	for k := annotationKey(0); k < numAnnotationKeys; k++ {
		if v, ok := a.get(k); ok {
			fn(k, v)
		}
	}
}

// overlay copies every populated field of top onto a. Fields top leaves
// unset keep their current value.
func (a *Annotations) overlay(top *Annotations) {
	top.each(func(k annotationKey, v any) {
		// Values already passed validation once; set cannot fail here.
		_ = a.set(k, v)
	})
}

// toSnakeCase converts a schema keyword such as "minLength" or "anyOf" into
// its document spelling. Keywords without upper-case letters pass through.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asFloat(v any) (*float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case interface{ String() string }:
		parsed, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", n.String())
		}
		f = parsed
	default:
		return nil, fmt.Errorf("expected number, got %T", v)
	}
	return &f, nil
}

func asInt(v any) (*int64, error) {
	f, err := asFloat(v)
	if err != nil {
		// genai marshals int64 bounds as strings.
		s, ok := v.(string)
		if !ok {
			return nil, err
		}
		i, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return nil, fmt.Errorf("expected integer, got %q", s)
		}
		return &i, nil
	}
	if *f != math.Trunc(*f) {
		return nil, fmt.Errorf("expected integer, got %v", *f)
	}
	i := int64(*f)
	return &i, nil
}

func asList(v any) ([]any, error) {
	switch l := v.(type) {
	case []any:
		return append([]any(nil), l...), nil
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", v)
	}
}

func asStrings(v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return append([]string(nil), l...), nil
	case []any:
		out := make([]string, len(l))
		for i, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of strings, item %d is %T", i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", v)
	}
}

func derefFloat(p *float64) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func derefInt(p *int64) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}
