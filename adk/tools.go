package adk

import (
	"errors"
	"fmt"

	"charm.land/fantasy"
	"github.com/robbyt/geminischema"
	"google.golang.org/genai"
)

// ErrMixedRetrievalTools is returned when a request combines a retrieval tool
// with function declarations. Gemini rejects that mix.
var ErrMixedRetrievalTools = errors.New("retrieval tools cannot be combined with function declarations")

// ValidateToolMix reports ErrMixedRetrievalTools when tools carry both a
// retrieval tool and at least one function declaration.
func ValidateToolMix(tools []*genai.Tool) error {
	var retrieval, functions []int
	for i, tool := range tools {
		if tool == nil {
			continue
		}
		if isRetrievalTool(tool) {
			retrieval = append(retrieval, i)
		}
		if len(tool.FunctionDeclarations) > 0 {
			functions = append(functions, i)
		}
	}
	if len(retrieval) > 0 && len(functions) > 0 {
		return fmt.Errorf("%w: retrieval tools %v, function tools %v", ErrMixedRetrievalTools, retrieval, functions)
	}
	return nil
}

func isRetrievalTool(tool *genai.Tool) bool {
	return tool.Retrieval != nil || tool.GoogleSearchRetrieval != nil
}

// ToolsToFantasy converts genai function declarations into fantasy function
// tools whose input schemas have been normalized. Parameters is used when
// set, ParametersJsonSchema otherwise. A nil normalizer uses the default
// options and a nil converter uses ManualSchemaConverter.
//
// Retrieval and code execution tools have no fantasy equivalent and are
// reported as errors. Errors for individual declarations are joined; the
// declarations that converted are still returned.
func ToolsToFantasy(tools []*genai.Tool, n *geminischema.Normalizer, conv SchemaConverter) ([]fantasy.Tool, error) {
	n = normalizerOrDefault(n)
	if conv == nil {
		conv = NewManualSchemaConverter()
	}

	var fantasyTools []fantasy.Tool
	var errs []error

	for _, tool := range tools {
		if tool == nil {
			continue
		}
		for _, fn := range tool.FunctionDeclarations {
			if fn == nil {
				continue
			}
			params, err := inputSchema(fn, n, conv)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to convert schema for function %q: %w", fn.Name, err))
				continue
			}
			fantasyTools = append(fantasyTools, fantasy.FunctionTool{
				Name:        fn.Name,
				Description: fn.Description,
				InputSchema: params,
			})
		}

		if isRetrievalTool(tool) {
			errs = append(errs, errors.New("retrieval tools not supported"))
		}
		if tool.CodeExecution != nil {
			errs = append(errs, errors.New("code execution not supported"))
		}
	}

	return fantasyTools, errors.Join(errs...)
}

func inputSchema(fn *genai.FunctionDeclaration, n *geminischema.Normalizer, conv SchemaConverter) (map[string]any, error) {
	if fn.Parameters == nil && fn.ParametersJsonSchema == nil {
		return map[string]any{}, nil
	}
	node, err := normalizeSchema(fn.Parameters, fn.ParametersJsonSchema, n)
	if err != nil {
		return nil, err
	}
	return conv.Convert(node)
}

// normalizeSchema normalizes a genai schema, or the raw JSON schema when the
// genai one is nil. Local references are inlined first.
func normalizeSchema(schema *genai.Schema, raw any, n *geminischema.Normalizer) (geminischema.Node, error) {
	var doc map[string]any
	var err error
	if schema != nil {
		doc, err = geminischema.FromGenai(schema)
	} else {
		doc, err = geminischema.AsDocument(raw)
	}
	if err != nil {
		return nil, err
	}

	doc, err = geminischema.Dereference(doc)
	if err != nil {
		return nil, err
	}
	return n.Normalize(doc)
}

func normalizerOrDefault(n *geminischema.Normalizer) *geminischema.Normalizer {
	if n != nil {
		return n
	}
	return geminischema.NewNormalizer(geminischema.DefaultOptions())
}
