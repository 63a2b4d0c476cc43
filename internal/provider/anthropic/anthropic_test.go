package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMessagesClient struct {
	NewFunc func(ctx context.Context, body anthropic.MessageNewParams) (*anthropic.Message, error)
}

func (m *mockMessagesClient) New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	if m.NewFunc != nil {
		return m.NewFunc(ctx, body)
	}
	return nil, errors.New("NewFunc not set")
}

func reply(stop anthropic.StopReason, blocks ...anthropic.ContentBlockUnion) *anthropic.Message {
	return &anthropic.Message{Content: blocks, StopReason: stop}
}

func apiError(status int) *anthropic.Error {
	return &anthropic.Error{
		StatusCode: status,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil),
		Response:   &http.Response{StatusCode: status},
	}
}

// --- HAPPY PATH TESTS ---

func TestGenerate_BuildsParams(t *testing.T) {
	var got anthropic.MessageNewParams
	client := &mockMessagesClient{NewFunc: func(ctx context.Context, body anthropic.MessageNewParams) (*anthropic.Message, error) {
		got = body
		return reply(anthropic.StopReasonEndTurn, anthropic.ContentBlockUnion{Type: "text", Text: "done"}), nil
	}}
	p := New(client, "claude-test", 2048)

	resp, err := p.Generate(context.Background(), provider.Request{
		System: "sys",
		Messages: []provider.Message{
			{Role: provider.RoleUser, Content: "investigate"},
			{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{{ID: "toolu_1", Name: "fetch_kyc_profile", Args: map[string]any{"user_id": "U1"}}}},
			{Role: provider.RoleTool, ToolResults: []provider.ToolResult{
				{CallID: "toolu_1", Name: "fetch_kyc_profile", Content: `{"found":false}`},
				{CallID: "toolu_2", Name: "query_siem_events", Error: "boom"},
			}},
		},
		Tools: []tool.Declaration{{
			Name:        "fetch_kyc_profile",
			Description: "lookup",
			Parameters:  tool.ObjectSchema(map[string]*tool.Schema{"user_id": {Type: tool.TypeString}}, "user_id"),
		}},
	})

	require.NoError(t, err)
	assert.Equal(t, provider.KindFinalText, resp.Kind)
	assert.Equal(t, anthropic.Model("claude-test"), got.Model)
	assert.Equal(t, int64(2048), got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, "sys", got.System[0].Text)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, got.Messages[1].Role)
	assert.Equal(t, "toolu_1", got.Messages[1].Content[0].OfToolUse.ID)

	results := got.Messages[2].Content
	assert.Equal(t, anthropic.MessageParamRoleUser, got.Messages[2].Role)
	require.Len(t, results, 2)
	assert.Equal(t, "toolu_1", results[0].OfToolResult.ToolUseID)
	assert.Equal(t, "toolu_2", results[1].OfToolResult.ToolUseID)
	assert.True(t, results[1].OfToolResult.IsError.Value)

	require.Len(t, got.Tools, 1)
	assert.Equal(t, "fetch_kyc_profile", got.Tools[0].OfTool.Name)
	assert.Equal(t, "lookup", got.Tools[0].OfTool.Description.Value)
	assert.Equal(t, []string{"user_id"}, got.Tools[0].OfTool.InputSchema.Required)
	assert.Equal(t, "anthropic", p.Name())
}

func TestGenerate_ToolUse_IsBatch(t *testing.T) {
	client := &mockMessagesClient{NewFunc: func(ctx context.Context, body anthropic.MessageNewParams) (*anthropic.Message, error) {
		return reply(anthropic.StopReasonToolUse,
			anthropic.ContentBlockUnion{Type: "text", Text: "Checking the profile."},
			anthropic.ContentBlockUnion{Type: "tool_use", ID: "toolu_9", Name: "fetch_kyc_profile", Input: json.RawMessage(`{"user_id":"U1"}`)},
		), nil
	}}

	resp, err := New(client, "m", 0).Generate(context.Background(), provider.Request{})

	require.NoError(t, err)
	require.Equal(t, provider.KindToolCallBatch, resp.Kind)
	assert.Equal(t, "Checking the profile.", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_9", resp.ToolCalls[0].ID)
	assert.Equal(t, map[string]any{"user_id": "U1"}, resp.ToolCalls[0].Args)
}

// --- ERROR PATH TESTS ---

func TestGenerate_MaxTokens_IsUnrecognized(t *testing.T) {
	client := &mockMessagesClient{NewFunc: func(ctx context.Context, body anthropic.MessageNewParams) (*anthropic.Message, error) {
		return reply(anthropic.StopReasonMaxTokens, anthropic.ContentBlockUnion{Type: "text", Text: "trunc"}), nil
	}}

	resp, err := New(client, "m", 0).Generate(context.Background(), provider.Request{})

	require.NoError(t, err)
	assert.Equal(t, provider.KindUnrecognized, resp.Kind)
	assert.Equal(t, "trunc", resp.Text)
}

func TestGenerate_MalformedToolInput_IsUnrecognized(t *testing.T) {
	client := &mockMessagesClient{NewFunc: func(ctx context.Context, body anthropic.MessageNewParams) (*anthropic.Message, error) {
		return reply(anthropic.StopReasonToolUse,
			anthropic.ContentBlockUnion{Type: "tool_use", ID: "t", Name: "x", Input: json.RawMessage(`[1,2]`)},
		), nil
	}}

	resp, err := New(client, "m", 0).Generate(context.Background(), provider.Request{})

	require.NoError(t, err)
	assert.Equal(t, provider.KindUnrecognized, resp.Kind)
}

func TestGenerate_APIError_Mapped(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, provider.ErrAuthentication},
		{429, provider.ErrRateLimit},
		{400, provider.ErrInvalidRequest},
		{529, provider.ErrServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := &mockMessagesClient{NewFunc: func(ctx context.Context, body anthropic.MessageNewParams) (*anthropic.Message, error) {
				return nil, apiError(tt.status)
			}}

			_, err := New(client, "m", 0).Generate(context.Background(), provider.Request{})

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerate_Deadline_IsTimeout(t *testing.T) {
	client := &mockMessagesClient{NewFunc: func(ctx context.Context, body anthropic.MessageNewParams) (*anthropic.Message, error) {
		return nil, context.DeadlineExceeded
	}}

	_, err := New(client, "m", 0).Generate(context.Background(), provider.Request{})

	assert.ErrorIs(t, err, provider.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
