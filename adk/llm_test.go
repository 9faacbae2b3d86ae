package adk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestSchemaSanitizer_Name(t *testing.T) {
	inner := &MockLLM{}
	inner.On("Name").Return("gemini-2.5-flash")

	llm := NewSchemaSanitizer(inner, nil)
	assert.Equal(t, "gemini-2.5-flash", llm.Name())
	inner.AssertExpectations(t)
}

func TestSchemaSanitizer_GenerateContent(t *testing.T) {
	want := &model.LLMResponse{
		Content:      &genai.Content{Role: "model", Parts: []*genai.Part{{Text: "ok"}}},
		TurnComplete: true,
	}

	inner := &MockLLM{}
	inner.On("GenerateContent", mock.Anything, mock.MatchedBy(func(req *model.LLMRequest) bool {
		decl := req.Config.Tools[0].FunctionDeclarations[0]
		return decl.ParametersJsonSchema == nil && decl.Parameters != nil &&
			decl.Parameters.Properties["age"].Nullable != nil
	}), true).Return(responses(want))

	req := newToolRequest(&genai.FunctionDeclaration{Name: "save_person", ParametersJsonSchema: personJSONSchema()})
	llm := NewSchemaSanitizer(inner, nil)

	got, err := collectResponses(t, llm.GenerateContent(context.Background(), req, true))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, want, got[0])
	inner.AssertExpectations(t)

	// The caller's request still carries the raw schema.
	assert.NotNil(t, req.Config.Tools[0].FunctionDeclarations[0].ParametersJsonSchema)
}

func TestSchemaSanitizer_RejectsBeforeDelegating(t *testing.T) {
	tests := []struct {
		name    string
		req     *model.LLMRequest
		wantErr string
	}{
		{
			name:    "malformed schema",
			req:     newToolRequest(&genai.FunctionDeclaration{Name: "bad", ParametersJsonSchema: map[string]any{"type": "date"}}),
			wantErr: `function "bad"`,
		},
		{
			name: "retrieval mixed with functions",
			req: &model.LLMRequest{Config: &genai.GenerateContentConfig{Tools: []*genai.Tool{
				{Retrieval: &genai.Retrieval{}},
				{FunctionDeclarations: []*genai.FunctionDeclaration{{Name: "lookup"}}},
			}}},
			wantErr: ErrMixedRetrievalTools.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &MockLLM{}
			inner.On("Name").Return("gemini-test").Maybe()

			llm := NewSchemaSanitizer(inner, nil)
			got, err := collectResponses(t, llm.GenerateContent(context.Background(), tt.req, false))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Empty(t, got)
			inner.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
