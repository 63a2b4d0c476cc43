package workflow

import "time"

// Event is the interface for all workflow events.
// Consumers handle events via type switch.
type Event interface {
	isEvent()
}

// TurnStartEvent is emitted before each provider call.
type TurnStartEvent struct {
	Turn     int
	MaxTurns int
}

func (TurnStartEvent) isEvent() {}

// TextEvent is emitted when the LLM produces text output.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	ToolName string
	CallID   string
	Args     map[string]any
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool call has produced its result.
type ToolEndEvent struct {
	ToolName string
	CallID   string
	Error    string // empty on success
	Duration time.Duration
}

func (ToolEndEvent) isEvent() {}

// DoneEvent is emitted when the workflow loop reaches a terminal state.
type DoneEvent struct {
	Status string
}

func (DoneEvent) isEvent() {}
