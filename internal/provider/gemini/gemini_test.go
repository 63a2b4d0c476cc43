package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// --- HAPPY PATH TESTS ---

func TestGenerate_PassesModelSystemAndTools(t *testing.T) {
	var gotModel string
	var gotConfig *genai.GenerateContentConfig
	var gotContents []*genai.Content
	mockClient := &MockGeminiClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel, gotContents, gotConfig = model, contents, config
			return candidateResponse(genai.FinishReasonStop, &genai.Part{Text: "done"}), nil
		},
	}
	p := New(mockClient, "gemini-mock", 1024)

	resp, err := p.Generate(context.Background(), provider.Request{
		System:   "system prompt",
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "hi"}},
		Tools:    []tool.Declaration{{Name: "fetch_kyc_profile", Description: "d", Parameters: tool.ObjectSchema(nil)}},
	})

	require.NoError(t, err)
	assert.Equal(t, provider.KindFinalText, resp.Kind)
	assert.Equal(t, "gemini-mock", gotModel)
	require.Len(t, gotContents, 1)
	assert.Equal(t, "system prompt", gotConfig.SystemInstruction.Parts[0].Text)
	require.Len(t, gotConfig.Tools, 1)
	assert.Equal(t, "fetch_kyc_profile", gotConfig.Tools[0].FunctionDeclarations[0].Name)
	assert.Equal(t, "gemini", p.Name())
}

func TestGenerate_SynthesisedIDsUniqueAcrossTurns(t *testing.T) {
	mockClient := &MockGeminiClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return candidateResponse(genai.FinishReasonStop, &genai.Part{FunctionCall: &genai.FunctionCall{Name: "a"}}), nil
		},
	}
	p := New(mockClient, "m", 0)

	first, err := p.Generate(context.Background(), provider.Request{})
	require.NoError(t, err)
	second, err := p.Generate(context.Background(), provider.Request{})
	require.NoError(t, err)

	assert.NotEqual(t, first.ToolCalls[0].ID, second.ToolCalls[0].ID)
}

// --- ERROR PATH TESTS ---

func TestGenerate_APIError_Mapped(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"value 429", genai.APIError{Code: 429, Message: "quota"}, provider.ErrRateLimit},
		{"pointer 401", &genai.APIError{Code: 401}, provider.ErrAuthentication},
		{"wrapped 503", fmt.Errorf("call: %w", genai.APIError{Code: 503}), provider.ErrServiceUnavailable},
		{"deadline", context.DeadlineExceeded, provider.ErrTimeout},
		{"other", errors.New("connection reset"), provider.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &MockGeminiClient{
				GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return nil, tt.err
				},
			}

			resp, err := New(mockClient, "m", 0).Generate(context.Background(), provider.Request{})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerate_Cancelled_KeepsContextError(t *testing.T) {
	mockClient := &MockGeminiClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, context.Canceled
		},
	}

	_, err := New(mockClient, "m", 0).Generate(context.Background(), provider.Request{})

	assert.ErrorIs(t, err, context.Canceled)
}
