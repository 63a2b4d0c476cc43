package loop

import (
	"context"

	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"github.com/Cyclone1070/fraudinv/internal/workflow"
)

// llmProvider communicates with an LLM.
type llmProvider interface {
	// Generate sends the conversation and returns the classified reply.
	Generate(ctx context.Context, req provider.Request) (*provider.Response, error)
}

// toolManager resolves and runs tool calls.
type toolManager interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// Execute runs a tool call. Failures come back as error results, never as Go errors.
	// It emits ToolStartEvent and ToolEndEvent to the events channel.
	Execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) provider.ToolResult
}
