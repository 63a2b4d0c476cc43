// Package openai adapts OpenAI-compatible chat completion APIs to the provider interface.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

const (
	finishToolCalls    = "tool_calls"
	finishStop         = "stop"
	finishFunctionCall = "function_call"
)

type OpenAIProvider struct {
	client    ChatCompletionsClient
	model     string
	maxTokens int64
}

func New(client ChatCompletionsClient, model string, maxTokens int) *OpenAIProvider {
	return &OpenAIProvider{client: client, model: model, maxTokens: int64(maxTokens)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: toMessages(req.System, req.Messages),
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(p.maxTokens)
	}
	if len(req.Tools) > 0 {
		tools, err := toTools(req.Tools)
		if err != nil {
			return nil, &provider.ProviderError{Code: provider.ErrorCodeInvalidRequest, Message: "encode tool schema", Underlying: err}
		}
		params.Tools = tools
	}

	completion, err := p.client.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return fromCompletion(completion), nil
}

func toMessages(system string, messages []provider.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		switch msg.Role {
		case provider.RoleAssistant:
			assistant := &openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				args, err := json.Marshal(tc.Args)
				if err != nil || tc.Args == nil {
					args = []byte("{}")
				}
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
		case provider.RoleTool:
			// The chat API wants one tool message per call id.
			for _, r := range msg.ToolResults {
				out = append(out, openai.ToolMessage(toolContent(r), r.CallID))
			}
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func toolContent(r provider.ToolResult) string {
	if !r.IsError() {
		return r.Content
	}
	data, err := json.Marshal(map[string]string{"error": r.Error})
	if err != nil {
		return r.Error
	}
	return string(data)
}

func toTools(decls []tool.Declaration) ([]openai.ChatCompletionToolParam, error) {
	tools := make([]openai.ChatCompletionToolParam, 0, len(decls))
	for _, d := range decls {
		fn := shared.FunctionDefinitionParam{Name: d.Name}
		if d.Description != "" {
			fn.Description = openai.String(d.Description)
		}
		if d.Parameters != nil {
			data, err := json.Marshal(d.Parameters)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", d.Name, err)
			}
			var params shared.FunctionParameters
			if err := json.Unmarshal(data, &params); err != nil {
				return nil, fmt.Errorf("%s: %w", d.Name, err)
			}
			fn.Parameters = params
		}
		tools = append(tools, openai.ChatCompletionToolParam{Function: fn})
	}
	return tools, nil
}

func fromCompletion(completion *openai.ChatCompletion) *provider.Response {
	if completion == nil || len(completion.Choices) == 0 {
		return provider.NewUnrecognized("no choices in completion", "")
	}
	choice := completion.Choices[0]
	text := choice.Message.Content

	if choice.Message.Refusal != "" {
		return provider.NewUnrecognized("model refused: "+choice.Message.Refusal, text)
	}

	calls := make([]provider.ToolCall, 0, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if strings.TrimSpace(tc.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return provider.NewUnrecognized(fmt.Sprintf("malformed arguments for %s: %v", tc.Function.Name, err), text)
			}
		}
		calls = append(calls, provider.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: args})
	}

	switch choice.FinishReason {
	case finishToolCalls, finishFunctionCall:
		if len(calls) == 0 {
			return provider.NewUnrecognized("tool_calls finish without tool calls", text)
		}
		return provider.NewToolCallBatch(text, calls)
	case finishStop:
		if len(calls) > 0 {
			return provider.NewToolCallBatch(text, calls)
		}
		if strings.TrimSpace(text) == "" {
			return provider.NewUnrecognized("empty response", "")
		}
		return provider.NewFinalText(text)
	default:
		return provider.NewUnrecognized("finish reason "+choice.FinishReason, text)
	}
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return provider.HTTPStatusError(apiErr.StatusCode, msg, err).WithRetryAfter(apiErr.Response, time.Now())
	}
	return provider.TransportError(err)
}
