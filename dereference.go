package geminischema

import (
	"maps"
	"slices"
	"strconv"
)

var definitionTables = []string{"$defs", "definitions"}

// Dereference returns a copy of doc with local references such as
// "#/$defs/Address" replaced by the referenced schema, and the definition
// tables removed. Keys next to a "$ref" override the referenced schema.
//
// Every reference to the same definition shares one map, so a recursive
// definition yields a cyclic document; Normalize rejects it. doc is not
// modified.
func Dereference(doc map[string]any) (map[string]any, error) {
	if doc == nil {
		return nil, nil
	}

	d := &dereferencer{
		defs:     make(map[string]any),
		paths:    make(map[string]pointer),
		resolved: make(map[string]map[string]any),
		pending:  make(map[string]bool),
	}
	for _, table := range definitionTables {
		raw, ok := doc[table]
		if !ok || raw == nil {
			continue
		}
		defs, ok := raw.(map[string]any)
		if !ok {
			return nil, malformed(pointer{table}, "%s must be an object, got %T", table, raw)
		}
		for name, def := range defs {
			ref := definitionRef(table, name)
			d.defs[ref] = def
			d.paths[ref] = pointer{table, name}
		}
	}

	root := make(map[string]any, len(doc))
	for _, key := range slices.Sorted(maps.Keys(doc)) {
		if slices.Contains(definitionTables, key) {
			continue
		}
		v, err := d.value(doc[key], pointer{key})
		if err != nil {
			return nil, err
		}
		root[key] = v
	}

	if ref, ok := root["$ref"]; ok {
		// A root that is itself a reference resolves like any other node.
		resolved, err := d.object(map[string]any{"$ref": ref}, nil)
		if err != nil {
			return nil, err
		}
		delete(root, "$ref")
		merged := maps.Clone(resolved)
		maps.Copy(merged, root)
		return merged, nil
	}
	return root, nil
}

type dereferencer struct {
	defs     map[string]any
	paths    map[string]pointer
	resolved map[string]map[string]any
	pending  map[string]bool
}

func definitionRef(table, name string) string {
	return "#/" + table + "/" + pointerEscaper.Replace(name)
}

func (d *dereferencer) value(v any, p pointer) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		return d.object(t, p)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			cv, err := d.value(t[i], p.add(strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	default:
		return v, nil
	}
}

func (d *dereferencer) object(m map[string]any, p pointer) (map[string]any, error) {
	rawRef, isRef := m["$ref"]
	if !isRef {
		out := make(map[string]any, len(m))
		for _, key := range slices.Sorted(maps.Keys(m)) {
			cv, err := d.value(m[key], p.add(key))
			if err != nil {
				return nil, err
			}
			out[key] = cv
		}
		return out, nil
	}

	ref, ok := rawRef.(string)
	if !ok {
		return nil, malformed(p.add("$ref"), "$ref must be a string, got %T", rawRef)
	}
	target, err := d.resolve(ref, p)
	if err != nil {
		return nil, err
	}
	// A target still under construction is part of a cycle; the siblings
	// cannot be merged into it, and the cycle is rejected later anyway.
	if len(m) == 1 || d.pending[ref] {
		return target, nil
	}

	merged := maps.Clone(target)
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if key == "$ref" {
			continue
		}
		cv, err := d.value(m[key], p.add(key))
		if err != nil {
			return nil, err
		}
		merged[key] = cv
	}
	return merged, nil
}

func (d *dereferencer) resolve(ref string, p pointer) (map[string]any, error) {
	if out, ok := d.resolved[ref]; ok {
		return out, nil
	}
	def, ok := d.defs[ref]
	if !ok {
		return nil, malformed(p, "unresolved reference %q", ref)
	}
	defMap, ok := def.(map[string]any)
	if !ok {
		return nil, malformed(p, "definition %q must be an object, got %T", ref, def)
	}
	// An alias of a definition still being built is a cycle with no
	// content to share.
	if target, ok := defMap["$ref"].(string); ok && (target == ref || d.pending[target]) {
		return nil, malformed(d.paths[ref], "reference cycle through %q", target)
	}

	out := make(map[string]any, len(defMap))
	d.resolved[ref] = out
	d.pending[ref] = true
	built, err := d.object(defMap, d.paths[ref])
	delete(d.pending, ref)
	if err != nil {
		return nil, err
	}
	maps.Copy(out, built)
	return out, nil
}
