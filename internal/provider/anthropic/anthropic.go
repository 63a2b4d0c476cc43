// Package anthropic adapts the Anthropic Messages API to the provider interface.
package anthropic

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
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

type AnthropicProvider struct {
	client    MessagesClient
	model     string
	maxTokens int64
}

func New(client MessagesClient, model string, maxTokens int) *AnthropicProvider {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicProvider{client: client, model: model, maxTokens: int64(maxTokens)}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  toMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toTools(req.Tools)
	}

	msg, err := p.client.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return fromMessage(msg)
}

func toMessages(messages []provider.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case provider.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				args := tc.Args
				if args == nil {
					args = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, args, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case provider.RoleTool:
			// All results of one round travel in a single user turn.
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, r := range msg.ToolResults {
				if r.IsError() {
					blocks = append(blocks, anthropic.NewToolResultBlock(r.CallID, r.Error, true))
				} else {
					blocks = append(blocks, anthropic.NewToolResultBlock(r.CallID, r.Content, false))
				}
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		default:
			if msg.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		}
	}
	return out
}

func toTools(decls []tool.Declaration) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, d := range decls {
		schema := anthropic.ToolInputSchemaParam{}
		if d.Parameters != nil {
			if len(d.Parameters.Properties) > 0 {
				schema.Properties = d.Parameters.Properties
			}
			schema.Required = d.Parameters.Required
		}
		tp := anthropic.ToolUnionParamOfTool(schema, d.Name)
		if d.Description != "" {
			tp.OfTool.Description = param.NewOpt(d.Description)
		}
		tools = append(tools, tp)
	}
	return tools
}

func fromMessage(msg *anthropic.Message) (*provider.Response, error) {
	if msg == nil {
		return provider.NewUnrecognized("empty message", ""), nil
	}

	var text strings.Builder
	var calls []provider.ToolCall
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return provider.NewUnrecognized(fmt.Sprintf("malformed tool input for %s: %v", block.Name, err), text.String()), nil
				}
			}
			calls = append(calls, provider.ToolCall{ID: block.ID, Name: block.Name, Args: args})
		}
	}

	switch msg.StopReason {
	case anthropic.StopReasonToolUse:
		if len(calls) == 0 {
			return provider.NewUnrecognized("tool_use stop without tool calls", text.String()), nil
		}
		return provider.NewToolCallBatch(text.String(), calls), nil
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		if len(calls) > 0 {
			return provider.NewToolCallBatch(text.String(), calls), nil
		}
		if strings.TrimSpace(text.String()) == "" {
			return provider.NewUnrecognized("empty response", ""), nil
		}
		return provider.NewFinalText(text.String()), nil
	default:
		return provider.NewUnrecognized(fmt.Sprintf("stop reason %s", msg.StopReason), text.String()), nil
	}
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return provider.HTTPStatusError(apiErr.StatusCode, http.StatusText(apiErr.StatusCode), err).
			WithRetryAfter(apiErr.Response, time.Now())
	}
	return provider.TransportError(err)
}
