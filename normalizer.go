// Package geminischema converts JSON-Schema-like documents, such as the
// parameter schemas Pydantic-style validators emit, into the stricter schema
// accepted by Gemini.
//
// The main job is collapsing nullable unions. Both
//
//	{"anyOf": [{"type": "integer"}, {"type": "null"}], "description": "Age"}
//	{"type": ["integer", "null"], "description": "Age"}
//
// normalize to
//
//	{"type": "integer", "nullable": true, "description": "Age"}
//
// because the Gemini validator rejects nodes that carry any_of next to other
// type-constraining fields.
//
// # Rules
//
//   - A union whose alternatives include the bare null type drops those
//     alternatives and becomes nullable. A single remaining alternative
//     replaces the union, taking the union's annotations (the union's value
//     wins where both set the same key).
//   - A list type with one non-null tag becomes that tag. Two or more non-null
//     tags fan out into one typed alternative per tag under any_of.
//   - A node with neither type nor any_of is an object (an array when it only
//     has items).
//   - Schema keywords are renamed to snake_case. Keywords outside the
//     annotation allow-list are dropped.
//
// Malformed input fails the whole call with a *MalformedSchemaError; no
// partial tree is returned.
package geminischema

import (
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
)

// DefaultMaxDepth bounds schema nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 64

// Options configures a Normalizer.
type Options struct {
	// MaxDepth is the deepest nesting accepted before the input is rejected.
	MaxDepth int

	// StrictFormats keeps "format" only where Gemini understands it:
	// int32/int64 on integer and number, date-time/enum on string.
	StrictFormats bool

	// Logger receives debug events. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the package-level Normalize.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

// Normalizer converts input schema documents into normalized Node trees.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a Normalizer. A non-positive MaxDepth falls back to
// DefaultMaxDepth.
func NewNormalizer(opts Options) *Normalizer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Normalizer{opts: opts}
}

var defaultNormalizer = NewNormalizer(DefaultOptions())

// Normalize normalizes doc with DefaultOptions.
func Normalize(doc map[string]any) (Node, error) {
	return defaultNormalizer.Normalize(doc)
}

// Normalize converts doc into a normalized tree. doc must already be
// dereferenced; a leftover "$ref" is dropped like any unsupported keyword.
func (n *Normalizer) Normalize(doc map[string]any) (Node, error) {
	w := &walker{
		opts:      n.opts,
		logger:    n.logger(),
		ancestors: make(map[uintptr]struct{}),
	}

	node, err := w.walk(doc, nil, 0)
	if err != nil {
		w.logger.Debug("schema normalization failed", "error", err)
		return nil, err
	}
	return node, nil
}

// NormalizeDocument normalizes doc and encodes the result with Document.
func (n *Normalizer) NormalizeDocument(doc map[string]any) (map[string]any, error) {
	node, err := n.Normalize(doc)
	if err != nil {
		return nil, err
	}
	return Document(node), nil
}

func (n *Normalizer) logger() *slog.Logger {
	if n.opts.Logger != nil {
		return n.opts.Logger
	}
	return slog.Default()
}

// walker carries the state of a single Normalize call.
type walker struct {
	opts   Options
	logger *slog.Logger

	// ancestors holds the identity of every map on the current path.
	ancestors map[uintptr]struct{}
}

// rawSchema is one input node after keyword renaming and allow-list filtering.
type rawSchema struct {
	kinds    []Kind
	hasType  bool
	nullable bool

	properties    map[string]any
	propertiesKey string
	hasProperties bool

	items    any
	itemsKey string
	hasItems bool

	anyOf    []any
	anyOfKey string
	hasAnyOf bool

	annotations Annotations
}

func (w *walker) walk(v any, p pointer, depth int) (Node, error) {
	if depth > w.opts.MaxDepth {
		return nil, malformed(p, "maximum depth %d exceeded", w.opts.MaxDepth)
	}

	m, err := schemaMap(v, p)
	if err != nil {
		return nil, err
	}

	if len(m) > 0 {
		id := reflect.ValueOf(m).Pointer()
		if _, seen := w.ancestors[id]; seen {
			return nil, malformed(p, "cycle detected: node references one of its ancestors")
		}
		w.ancestors[id] = struct{}{}
		defer delete(w.ancestors, id)
	}

	raw, err := w.scan(m, p)
	if err != nil {
		return nil, err
	}

	if raw.hasAnyOf {
		return w.union(raw, p, depth)
	}
	return w.typed(raw, p, depth)
}

func (w *walker) scan(m map[string]any, p pointer) (rawSchema, error) {
	var raw rawSchema

	for _, key := range slices.Sorted(maps.Keys(m)) {
		v := m[key]
		switch name := toSnakeCase(key); name {
		case "type":
			kinds, err := parseTypes(v)
			if err != nil {
				return raw, malformed(p.add(key), "%v", err)
			}
			raw.kinds = kinds
			raw.hasType = len(kinds) > 0

		case "nullable":
			if v == nil {
				continue
			}
			b, ok := v.(bool)
			if !ok {
				return raw, malformed(p.add(key), "nullable must be a boolean, got %T", v)
			}
			raw.nullable = raw.nullable || b

		case "properties":
			if v == nil {
				continue
			}
			props, ok := v.(map[string]any)
			if !ok {
				return raw, malformed(p.add(key), "properties must be an object, got %T", v)
			}
			raw.properties, raw.propertiesKey, raw.hasProperties = props, key, true

		case "items":
			if v == nil {
				continue
			}
			raw.items, raw.itemsKey, raw.hasItems = v, key, true

		case "any_of", "alternatives":
			if v == nil {
				continue
			}
			if raw.hasAnyOf {
				return raw, malformed(p, "both %q and %q are set", raw.anyOfKey, key)
			}
			alts, ok := schemaList(v)
			if !ok {
				return raw, malformed(p.add(key), "%s must be a list, got %T", key, v)
			}
			if len(alts) == 0 {
				return raw, malformed(p.add(key), "%s must not be empty", key)
			}
			raw.anyOf, raw.anyOfKey, raw.hasAnyOf = alts, key, true

		default:
			k, ok := lookupAnnotation(name)
			if !ok {
				w.logger.Debug("dropping unsupported schema keyword", "path", p.String(), "keyword", key)
				continue
			}
			if v == nil {
				continue
			}
			if err := raw.annotations.set(k, v); err != nil {
				return raw, malformed(p.add(key), "%v", err)
			}
		}
	}

	return raw, nil
}

func (w *walker) union(raw rawSchema, p pointer, depth int) (Node, error) {
	if raw.hasType {
		return nil, malformed(p, "type cannot be combined with %s", raw.anyOfKey)
	}
	if raw.hasProperties || raw.hasItems {
		return nil, malformed(p, "%s cannot be combined with properties or items", raw.anyOfKey)
	}

	nullable := raw.nullable
	kept := make([]int, 0, len(raw.anyOf))
	for i, alt := range raw.anyOf {
		if isBareNull(alt) {
			nullable = true
			continue
		}
		kept = append(kept, i)
	}

	switch len(kept) {
	case 0:
		n := &TypedNode{Type: KindObject, Nullable: true, Annotations: raw.annotations}
		w.filterFormat(n, p)
		return n, nil

	case 1:
		i := kept[0]
		n, err := w.walk(raw.anyOf[i], p.add(raw.anyOfKey, strconv.Itoa(i)), depth+1)
		if err != nil {
			return nil, err
		}
		if nullable {
			markNullable(n)
		}
		n.Meta().overlay(&raw.annotations)
		w.filterFormat(n, p)
		w.logger.Debug("collapsed union", "path", p.String(), "nullable", nullable)
		return n, nil
	}

	alts := make([]Node, 0, len(kept))
	for _, i := range kept {
		n, err := w.walk(raw.anyOf[i], p.add(raw.anyOfKey, strconv.Itoa(i)), depth+1)
		if err != nil {
			return nil, err
		}
		alts = append(alts, n)
	}

	u := &UnionNode{AnyOf: alts, Nullable: nullable, Annotations: raw.annotations}
	w.filterFormat(u, p)
	return u, nil
}

func (w *walker) typed(raw rawSchema, p pointer, depth int) (Node, error) {
	nullable := raw.nullable
	kinds := make([]Kind, 0, len(raw.kinds))
	for _, k := range raw.kinds {
		if k == KindNull {
			nullable = true
			continue
		}
		kinds = append(kinds, k)
	}

	if len(kinds) == 0 {
		if raw.hasItems && !raw.hasProperties {
			kinds = append(kinds, KindArray)
		} else {
			kinds = append(kinds, KindObject)
		}
	}

	if len(kinds) > 1 {
		return w.fanOut(kinds, nullable, raw, p, depth)
	}

	n := &TypedNode{Type: kinds[0], Nullable: nullable, Annotations: raw.annotations}
	if err := w.fill(n, raw, p, depth); err != nil {
		return nil, err
	}
	w.filterFormat(n, p)
	return n, nil
}

// fanOut turns a multi-tag list type into a union with one typed alternative
// per tag. Properties go to the object alternative and items to the array
// alternative; annotations stay on the union.
func (w *walker) fanOut(kinds []Kind, nullable bool, raw rawSchema, p pointer, depth int) (Node, error) {
	alts := make([]Node, 0, len(kinds))
	placedProperties, placedItems := false, false

	for _, k := range kinds {
		alt := &TypedNode{Type: k}
		var sub rawSchema
		if k == KindObject && raw.hasProperties {
			sub.properties, sub.propertiesKey, sub.hasProperties = raw.properties, raw.propertiesKey, true
			placedProperties = true
		}
		if k == KindArray && raw.hasItems {
			sub.items, sub.itemsKey, sub.hasItems = raw.items, raw.itemsKey, true
			placedItems = true
		}
		if err := w.fill(alt, sub, p, depth); err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}

	if raw.hasProperties && !placedProperties {
		return nil, malformed(p, "properties require type object, got %v", kinds)
	}
	if raw.hasItems && !placedItems {
		return nil, malformed(p, "items require type array, got %v", kinds)
	}

	u := &UnionNode{AnyOf: alts, Nullable: nullable, Annotations: raw.annotations}
	w.filterFormat(u, p)
	return u, nil
}

// fill attaches properties and items, checking they fit the node's type.
func (w *walker) fill(n *TypedNode, raw rawSchema, p pointer, depth int) error {
	if raw.hasProperties {
		if n.Type != KindObject {
			return malformed(p, "properties require type object, got %s", n.Type)
		}
		props := make(map[string]Node, len(raw.properties))
		for _, name := range slices.Sorted(maps.Keys(raw.properties)) {
			child, err := w.walk(raw.properties[name], p.add(raw.propertiesKey, name), depth+1)
			if err != nil {
				return err
			}
			props[name] = child
		}
		n.Properties = props
	}

	if raw.hasItems {
		if n.Type != KindArray {
			return malformed(p, "items require type array, got %s", n.Type)
		}
		child, err := w.walk(raw.items, p.add(raw.itemsKey), depth+1)
		if err != nil {
			return err
		}
		n.Items = child
	}

	return nil
}

func (w *walker) filterFormat(n Node, p pointer) {
	meta := n.Meta()
	if !w.opts.StrictFormats || meta.Format == "" {
		return
	}
	var kind Kind
	if t, ok := n.(*TypedNode); ok {
		kind = t.Type
	}
	if !supportedFormat(kind, meta.Format) {
		w.logger.Debug("dropping unsupported format", "path", p.String(), "type", kind, "format", meta.Format)
		meta.Format = ""
	}
}

func supportedFormat(k Kind, format string) bool {
	switch k {
	case KindInteger, KindNumber:
		return format == "int32" || format == "int64"
	case KindString:
		return format == "date-time" || format == "enum"
	default:
		return false
	}
}

// schemaMap returns the keyword map of a schema value. The boolean schema
// true accepts anything and reads as an empty schema.
func schemaMap(v any, p pointer) (map[string]any, error) {
	switch s := v.(type) {
	case map[string]any:
		return s, nil
	case nil:
		return nil, nil
	case bool:
		if s {
			return nil, nil
		}
		return nil, malformed(p, "false schema matches nothing")
	default:
		return nil, malformed(p, "schema must be an object, got %T", v)
	}
}

func schemaList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// parseTypes reads a type keyword: a single tag, a list of tags, or nothing.
// Duplicate tags are removed, order is kept.
func parseTypes(v any) ([]Kind, error) {
	var tags []any
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		tags = []any{t}
	case []string:
		for _, s := range t {
			tags = append(tags, s)
		}
	case []any:
		tags = t
	default:
		return nil, &typeShapeError{got: v}
	}

	kinds := make([]Kind, 0, len(tags))
	for _, tag := range tags {
		s, ok := tag.(string)
		if !ok {
			return nil, &typeShapeError{got: v}
		}
		k, err := ParseKind(s)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

type typeShapeError struct {
	got any
}

func (e *typeShapeError) Error() string {
	return "type must be a string or a list of strings, got " + reflect.TypeOf(e.got).String()
}

// isBareNull reports whether v is exactly the null type: {"type": "null"}
// with no structural keywords.
func isBareNull(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	sawNull := false
	for key, val := range m {
		switch toSnakeCase(key) {
		case "type":
			kinds, err := parseTypes(val)
			if err != nil || len(kinds) != 1 || kinds[0] != KindNull {
				return false
			}
			sawNull = true
		case "properties", "items", "any_of", "alternatives":
			if val != nil {
				return false
			}
		}
	}
	return sawNull
}
