package adk

import (
	"errors"
	"fmt"

	"github.com/robbyt/geminischema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// SanitizeRequest returns a copy of req whose schemas Gemini will accept.
//
// Rewritten:
//   - FunctionDeclaration.Parameters / ParametersJsonSchema -> Parameters
//   - FunctionDeclaration.Response / ResponseJsonSchema -> Response
//   - Config.ResponseSchema / ResponseJsonSchema -> ResponseSchema
//
// The JSON schema variant is cleared once it has been converted. req itself
// is never modified: the config, tools and declarations that change are
// copied, everything else is shared. Errors from all schemas are joined and
// no request is returned.
func SanitizeRequest(req *model.LLMRequest, n *geminischema.Normalizer) (*model.LLMRequest, error) {
	if req == nil || req.Config == nil {
		return req, nil
	}
	n = normalizerOrDefault(n)

	cfg := *req.Config
	var errs []error

	if len(cfg.Tools) > 0 {
		tools := make([]*genai.Tool, len(cfg.Tools))
		for i, tool := range cfg.Tools {
			clean, err := sanitizeTool(tool, n)
			if err != nil {
				errs = append(errs, err)
			}
			tools[i] = clean
		}
		cfg.Tools = tools
	}

	if cfg.ResponseSchema != nil || cfg.ResponseJsonSchema != nil {
		schema, err := sanitizeSchema(cfg.ResponseSchema, cfg.ResponseJsonSchema, n)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to sanitize response schema: %w", err))
		}
		cfg.ResponseSchema = schema
		cfg.ResponseJsonSchema = nil
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	out := *req
	out.Config = &cfg
	return &out, nil
}

func sanitizeTool(tool *genai.Tool, n *geminischema.Normalizer) (*genai.Tool, error) {
	if tool == nil || len(tool.FunctionDeclarations) == 0 {
		return tool, nil
	}

	clean := *tool
	clean.FunctionDeclarations = make([]*genai.FunctionDeclaration, len(tool.FunctionDeclarations))
	var errs []error

	for i, fn := range tool.FunctionDeclarations {
		if fn == nil {
			continue
		}
		decl := *fn
		if fn.Parameters != nil || fn.ParametersJsonSchema != nil {
			params, err := sanitizeSchema(fn.Parameters, fn.ParametersJsonSchema, n)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to sanitize parameters for function %q: %w", fn.Name, err))
			}
			decl.Parameters = params
			decl.ParametersJsonSchema = nil
		}
		if fn.Response != nil || fn.ResponseJsonSchema != nil {
			resp, err := sanitizeSchema(fn.Response, fn.ResponseJsonSchema, n)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to sanitize response for function %q: %w", fn.Name, err))
			}
			decl.Response = resp
			decl.ResponseJsonSchema = nil
		}
		clean.FunctionDeclarations[i] = &decl
	}

	return &clean, errors.Join(errs...)
}

func sanitizeSchema(schema *genai.Schema, raw any, n *geminischema.Normalizer) (*genai.Schema, error) {
	node, err := normalizeSchema(schema, raw, n)
	if err != nil {
		return nil, err
	}
	return geminischema.ToGenai(node), nil
}
