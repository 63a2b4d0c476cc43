package provider

import (
	"context"

	"github.com/Cyclone1070/fraudinv/internal/tool"
)

// Role tags a message in the running conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one role-tagged turn of an investigation conversation.
// Assistant turns may carry ToolCalls; tool turns carry the ToolResults of one round.
type Message struct {
	Role        Role
	Content     string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolCall is a single invocation requested by the model.
// ID is opaque and must be echoed back verbatim in the matching ToolResult.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the outcome of executing a ToolCall.
// Exactly one of Content or Error is set.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
	Error   string
}

// IsError reports whether the result carries an error instead of a payload.
func (r ToolResult) IsError() bool {
	return r.Error != ""
}

// Request is everything a provider needs for one generation.
type Request struct {
	System   string
	Messages []Message
	Tools    []tool.Declaration
}

// ResponseKind indicates what the model produced.
type ResponseKind string

const (
	KindToolCallBatch ResponseKind = "tool_call_batch"
	KindFinalText     ResponseKind = "final_text"
	KindUnrecognized  ResponseKind = "unrecognized"
)

// Response is a union over the three outcomes of a generation.
type Response struct {
	Kind ResponseKind

	// For KindToolCallBatch. Text may hold reasoning emitted alongside the calls.
	ToolCalls []ToolCall

	// For KindFinalText, and optionally KindToolCallBatch
	Text string

	// For KindUnrecognized (truncation, safety stop, unknown finish reason)
	Reason string
}

// NewToolCallBatch builds a tool-call response.
func NewToolCallBatch(text string, calls []ToolCall) *Response {
	return &Response{Kind: KindToolCallBatch, Text: text, ToolCalls: calls}
}

// NewFinalText builds a final-answer response.
func NewFinalText(text string) *Response {
	return &Response{Kind: KindFinalText, Text: text}
}

// NewUnrecognized builds a response the loop cannot act on.
func NewUnrecognized(reason, partialText string) *Response {
	return &Response{Kind: KindUnrecognized, Reason: reason, Text: partialText}
}

// Provider sends a conversation to a model and classifies its reply.
type Provider interface {
	// Generate returns exactly one of a response or an error.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name identifies the backend, e.g. "gemini".
	Name() string
}
