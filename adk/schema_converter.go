package adk

import "github.com/robbyt/geminischema"

// SchemaConverter renders a normalized schema tree as the map[string]any that
// fantasy providers expect in FunctionTool.InputSchema. Keys are camelCase,
// type tags lowercase, and string lists ([]string) for required, enum and
// propertyOrdering.
//
// Both implementations produce the same map:
//   - ManualSchemaConverter: walks the tree directly (default)
//   - JSONSchemaConverter: converts to genai.Schema and round-trips it through JSON
type SchemaConverter interface {
	Convert(node geminischema.Node) (map[string]any, error)
}
