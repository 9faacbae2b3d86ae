package geminischema

// Document encodes n as a vendor schema document: snake_case keys, a single
// "type" tag or an "any_of" list, "nullable" when set, and the allow-listed
// annotations. Feeding the result back into Normalize yields the same tree.
func Document(n Node) map[string]any {
	if n == nil {
		return nil
	}

	out := make(map[string]any)
	switch v := n.(type) {
	case *TypedNode:
		out["type"] = string(v.Type)
		if len(v.Properties) > 0 {
			props := make(map[string]any, len(v.Properties))
			for name, child := range v.Properties {
				props[name] = Document(child)
			}
			out["properties"] = props
		}
		if v.Items != nil {
			out["items"] = Document(v.Items)
		}
	case *UnionNode:
		anyOf := make([]any, len(v.AnyOf))
		for i, alt := range v.AnyOf {
			anyOf[i] = Document(alt)
		}
		out["any_of"] = anyOf
	}

	if n.IsNullable() {
		out["nullable"] = true
	}
	n.Meta().each(func(k annotationKey, v any) {
		out[annotationNames[k].snake] = v
	})
	return out
}
