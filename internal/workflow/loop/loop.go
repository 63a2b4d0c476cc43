// Package loop drives one investigation conversation: it alternates provider calls with
// tool execution until the model answers, the turn budget runs out, or something fails.
package loop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/logging"
	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/workflow"
)

// DefaultMaxTurns applies when neither the loop nor the request sets a budget.
const DefaultMaxTurns = 10

// Status is the terminal state of a run.
type Status string

const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
	StatusError      Status = "error"
)

type Config struct {
	MaxTurns    int
	TurnTimeout time.Duration // per provider call; 0 disables
	Logger      *slog.Logger
}

// Request seeds a run. MaxTurns overrides the loop default when positive.
type Request struct {
	System   string
	Prompt   string
	MaxTurns int
}

// ToolCallEntry is one executed tool call in the investigation log.
type ToolCallEntry struct {
	Turn       int             `json:"turn"`
	Tool       string          `json:"tool"`
	CallID     string          `json:"call_id"`
	Input      map[string]any  `json:"input"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMs int64           `json:"duration_ms"`
}

// Outcome is returned for every run, whatever the terminal state.
type Outcome struct {
	Status    Status
	FinalText string
	Log       []ToolCallEntry
	Turns     int
	Messages  []provider.Message
	Err       error
}

type Loop struct {
	provider    llmProvider
	tools       toolManager
	events      chan<- workflow.Event
	maxTurns    int
	turnTimeout time.Duration
	logger      *slog.Logger
}

func NewLoop(provider llmProvider, tools toolManager, events chan<- workflow.Event, cfg Config) *Loop {
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Loop{
		provider:    provider,
		tools:       tools,
		events:      events,
		maxTurns:    maxTurns,
		turnTimeout: cfg.TurnTimeout,
		logger:      logging.OrDiscard(cfg.Logger),
	}
}

// Run executes the conversation to a terminal state. It holds no state between calls,
// so one Loop may serve concurrent investigations.
func (l *Loop) Run(ctx context.Context, req Request) Outcome {
	maxTurns := l.maxTurns
	if req.MaxTurns > 0 {
		maxTurns = req.MaxTurns
	}

	out := Outcome{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: req.Prompt}},
	}
	decls := l.tools.Declarations()

	for turn := 1; turn <= maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return l.finish(out, StatusIncomplete, fmt.Errorf("%w before turn %d: %v", ErrCancelled, turn, err))
		}

		out.Turns = turn
		l.emit(workflow.TurnStartEvent{Turn: turn, MaxTurns: maxTurns})
		l.logger.Debug("awaiting model", "turn", turn, "max_turns", maxTurns, "messages", len(out.Messages))

		resp, err := l.generate(ctx, provider.Request{
			System:   req.System,
			Messages: out.Messages,
			Tools:    decls,
		})
		if err != nil {
			if ctx.Err() != nil {
				return l.finish(out, StatusIncomplete, fmt.Errorf("%w during turn %d: %v", ErrCancelled, turn, err))
			}
			attrs := []any{"turn", turn, "retryable", provider.IsRetryable(err)}
			if d := provider.GetRetryAfter(err); d != nil {
				attrs = append(attrs, "retry_after", *d)
			}
			l.logger.Warn("provider call failed", attrs...)
			return l.finish(out, StatusError, &ProviderCallError{Turn: turn, Cause: err})
		}

		switch resp.Kind {
		case provider.KindToolCallBatch:
			if resp.Text != "" {
				l.emit(workflow.TextEvent{Text: resp.Text})
			}
			out.Messages = append(out.Messages, provider.Message{
				Role:      provider.RoleAssistant,
				Content:   resp.Text,
				ToolCalls: resp.ToolCalls,
			})
			results := make([]provider.ToolResult, 0, len(resp.ToolCalls))
			for _, tc := range resp.ToolCalls {
				res, entry := l.execute(ctx, turn, tc)
				results = append(results, res)
				out.Log = append(out.Log, entry)
			}
			// The whole round goes back as one turn before the next request.
			out.Messages = append(out.Messages, provider.Message{
				Role:        provider.RoleTool,
				ToolResults: results,
			})

		case provider.KindFinalText:
			l.emit(workflow.TextEvent{Text: resp.Text})
			out.Messages = append(out.Messages, provider.Message{Role: provider.RoleAssistant, Content: resp.Text})
			out.FinalText = resp.Text
			return l.finish(out, StatusComplete, nil)

		default:
			return l.finish(out, StatusError, &UnrecognizedResponseError{Turn: turn, Reason: resp.Reason})
		}
	}

	return l.finish(out, StatusIncomplete, &BudgetExceededError{MaxTurns: maxTurns})
}

func (l *Loop) generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	callCtx := ctx
	if l.turnTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.turnTimeout)
		defer cancel()
	}

	resp, err := l.provider.Generate(callCtx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return provider.NewUnrecognized("provider returned no response", ""), nil
	}
	return resp, nil
}

func (l *Loop) execute(ctx context.Context, turn int, tc provider.ToolCall) (provider.ToolResult, ToolCallEntry) {
	start := time.Now()
	res := l.tools.Execute(ctx, tc, l.events)
	elapsed := time.Since(start)

	entry := ToolCallEntry{
		Turn:       turn,
		Tool:       tc.Name,
		CallID:     tc.ID,
		Input:      tc.Args,
		Error:      res.Error,
		DurationMs: elapsed.Milliseconds(),
	}
	if !res.IsError() {
		entry.Result = rawResult(res.Content)
	}

	if res.IsError() {
		l.logger.Warn("tool call failed", "turn", turn, "tool", tc.Name, "call_id", tc.ID, "duration", elapsed, "error", res.Error)
	} else {
		l.logger.Info("tool call", "turn", turn, "tool", tc.Name, "call_id", tc.ID, "duration", elapsed)
	}
	return res, entry
}

func rawResult(content string) json.RawMessage {
	if json.Valid([]byte(content)) {
		return json.RawMessage(content)
	}
	quoted, _ := json.Marshal(content)
	return quoted
}

func (l *Loop) finish(out Outcome, status Status, err error) Outcome {
	out.Status = status
	out.Err = err

	attrs := []any{"status", status, "turns", out.Turns, "tool_calls", len(out.Log)}
	switch {
	case status == StatusError:
		l.logger.Error("investigation ended", append(attrs, "error", err)...)
	case status == StatusIncomplete:
		l.logger.Warn("investigation ended", append(attrs, "error", err)...)
	default:
		l.logger.Info("investigation ended", attrs...)
	}

	l.emit(workflow.DoneEvent{Status: string(status)})
	return out
}

func (l *Loop) emit(ev workflow.Event) {
	if l.events != nil {
		l.events <- ev
	}
}
