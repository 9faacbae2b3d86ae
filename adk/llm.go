// Package adk connects the schema normalizer to Google ADK and fantasy.
//
// ADK agents build genai requests whose tool schemas usually come from
// Pydantic-style JSON Schema. Gemini rejects several of their constructs,
// most notably nullable unions. The helpers here rewrite those schemas:
//
//   - SanitizeRequest rewrites every schema in a model.LLMRequest
//   - NewSchemaSanitizer wraps a model.LLM so every request is sanitized first
//   - ToolsToFantasy converts genai tools to fantasy.FunctionTool
//   - ValidateToolMix rejects retrieval tools next to function declarations
package adk

import (
	"context"
	"iter"
	"log/slog"

	"github.com/robbyt/geminischema"
	"google.golang.org/adk/model"
)

// SchemaSanitizer wraps a model.LLM and sanitizes every request before
// delegating to it.
type SchemaSanitizer struct {
	llm        model.LLM
	normalizer *geminischema.Normalizer
}

// NewSchemaSanitizer wraps llm. A nil normalizer uses the default options.
func NewSchemaSanitizer(llm model.LLM, n *geminischema.Normalizer) model.LLM {
	return &SchemaSanitizer{llm: llm, normalizer: normalizerOrDefault(n)}
}

// Name implements model.LLM.
func (s *SchemaSanitizer) Name() string {
	return s.llm.Name()
}

// GenerateContent implements model.LLM. A request that cannot be sanitized
// yields a single error and never reaches the wrapped model.
func (s *SchemaSanitizer) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	if req != nil && req.Config != nil {
		if err := ValidateToolMix(req.Config.Tools); err != nil {
			return yieldError(err)
		}
	}

	clean, err := SanitizeRequest(req, s.normalizer)
	if err != nil {
		slog.Default().Debug("Request schema sanitization failed", "model", s.llm.Name(), "error", err)
		return yieldError(err)
	}
	return s.llm.GenerateContent(ctx, clean, stream)
}

func yieldError(err error) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(nil, err)
	}
}
