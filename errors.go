package geminischema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSchema matches every *MalformedSchemaError via errors.Is.
var ErrMalformedSchema = errors.New("malformed schema")

// MalformedSchemaError reports an input node that cannot be normalized.
// Path is a JSON Pointer into the input document.
type MalformedSchemaError struct {
	Path   string
	Reason string
}

func (e *MalformedSchemaError) Error() string {
	return fmt.Sprintf("malformed schema at %s: %s", e.Path, e.Reason)
}

func (e *MalformedSchemaError) Is(target error) bool {
	return target == ErrMalformedSchema
}

// pointer is a JSON Pointer built up while walking the input.
type pointer []string

func (p pointer) add(tokens ...string) pointer {
	next := make(pointer, len(p), len(p)+len(tokens))
	copy(next, p)
	return append(next, tokens...)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func (p pointer) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, tok := range p {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(tok))
	}
	return b.String()
}

func malformed(p pointer, format string, args ...any) error {
	return &MalformedSchemaError{Path: p.String(), Reason: fmt.Sprintf(format, args...)}
}
