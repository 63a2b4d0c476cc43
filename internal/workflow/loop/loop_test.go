package loop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"github.com/Cyclone1070/fraudinv/internal/workflow"
	"github.com/Cyclone1070/fraudinv/internal/workflow/toolmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	calls        atomic.Int32
	generateFunc func(ctx context.Context, req provider.Request) (*provider.Response, error)
}

func (m *mockProvider) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	m.calls.Add(1)
	return m.generateFunc(ctx, req)
}

type mockToolManager struct {
	declarations []tool.Declaration
	executeFunc  func(ctx context.Context, tc provider.ToolCall) provider.ToolResult
}

func (m *mockToolManager) Declarations() []tool.Declaration {
	return m.declarations
}

func (m *mockToolManager) Execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) provider.ToolResult {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, tc)
	}
	return provider.ToolResult{CallID: tc.ID, Name: tc.Name, Content: `{"ok":true}`}
}

// scripted returns the responses in order, then repeats the last one.
func scripted(responses ...*provider.Response) *mockProvider {
	var i atomic.Int32
	return &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		n := int(i.Add(1)) - 1
		if n >= len(responses) {
			n = len(responses) - 1
		}
		return responses[n], nil
	}}
}

func batch(calls ...provider.ToolCall) *provider.Response {
	return provider.NewToolCallBatch("", calls)
}

func call(id, name string) provider.ToolCall {
	return provider.ToolCall{ID: id, Name: name, Args: map[string]any{"user_id": "U1"}}
}

// --- HAPPY PATH TESTS ---

func TestRun_FinalText_Complete(t *testing.T) {
	mp := scripted(provider.NewFinalText("RECOMMENDATION: DISMISS"))
	l := NewLoop(mp, &mockToolManager{}, nil, Config{})

	out := l.Run(context.Background(), Request{System: "sys", Prompt: "alert"})

	assert.Equal(t, StatusComplete, out.Status)
	assert.NoError(t, out.Err)
	assert.Equal(t, "RECOMMENDATION: DISMISS", out.FinalText)
	assert.Equal(t, 1, out.Turns)
	assert.Empty(t, out.Log)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, provider.RoleUser, out.Messages[0].Role)
	assert.Equal(t, "alert", out.Messages[0].Content)
}

func TestRun_PassesSystemAndDeclarations(t *testing.T) {
	decls := []tool.Declaration{{Name: "fetch_kyc_profile"}}
	var got provider.Request
	mp := &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		got = req
		return provider.NewFinalText("done"), nil
	}}
	l := NewLoop(mp, &mockToolManager{declarations: decls}, nil, Config{})

	l.Run(context.Background(), Request{System: "sys", Prompt: "alert"})

	assert.Equal(t, "sys", got.System)
	assert.Equal(t, decls, got.Tools)
}

func TestRun_ToolRound_BundlesResultsInOneTurn(t *testing.T) {
	var seen [][]provider.Message
	responses := []*provider.Response{
		batch(call("a", "fetch_kyc_profile"), call("b", "query_siem_events")),
		provider.NewFinalText("brief"),
	}
	mp := &mockProvider{}
	mp.generateFunc = func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		seen = append(seen, append([]provider.Message(nil), req.Messages...))
		return responses[len(seen)-1], nil
	}
	l := NewLoop(mp, &mockToolManager{}, nil, Config{})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	require.Equal(t, StatusComplete, out.Status)
	require.Len(t, seen, 2)
	second := seen[1]
	require.Len(t, second, 3)
	assert.Equal(t, provider.RoleAssistant, second[1].Role)
	assert.Len(t, second[1].ToolCalls, 2)
	assert.Equal(t, provider.RoleTool, second[2].Role)
	require.Len(t, second[2].ToolResults, 2)
	assert.Equal(t, "a", second[2].ToolResults[0].CallID)
	assert.Equal(t, "b", second[2].ToolResults[1].CallID)

	require.Len(t, out.Log, 2)
	assert.Equal(t, 1, out.Log[0].Turn)
	assert.Equal(t, "fetch_kyc_profile", out.Log[0].Tool)
	assert.Equal(t, map[string]any{"user_id": "U1"}, out.Log[0].Input)
	assert.JSONEq(t, `{"ok":true}`, string(out.Log[0].Result))
}

func TestRun_CallIDsRoundTrip_EveryRound(t *testing.T) {
	var round atomic.Int32
	mp := &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		last := req.Messages[len(req.Messages)-1]
		if last.Role == provider.RoleTool {
			prev := req.Messages[len(req.Messages)-2]
			for i, r := range last.ToolResults {
				if r.CallID != prev.ToolCalls[i].ID {
					return nil, fmt.Errorf("call id mismatch: %s != %s", r.CallID, prev.ToolCalls[i].ID)
				}
			}
		}
		n := round.Add(1)
		if n > 3 {
			return provider.NewFinalText("done"), nil
		}
		return batch(call(fmt.Sprintf("r%d-1", n), "x"), call(fmt.Sprintf("r%d-2", n), "y")), nil
	}}
	l := NewLoop(mp, &mockToolManager{}, nil, Config{})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	assert.Equal(t, StatusComplete, out.Status)
	assert.Len(t, out.Log, 6)
	for _, e := range out.Log {
		assert.Contains(t, e.CallID, fmt.Sprintf("r%d-", e.Turn))
	}
}

func TestRun_UnknownTool_ContinuesWithErrorResult(t *testing.T) {
	tm, err := toolmanager.NewToolManager()
	require.NoError(t, err)
	var results []provider.ToolResult
	mp := &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		last := req.Messages[len(req.Messages)-1]
		if last.Role == provider.RoleTool {
			results = last.ToolResults
			return provider.NewFinalText("done"), nil
		}
		return batch(provider.ToolCall{ID: "tc-9", Name: "renamed_tool"}), nil
	}}
	l := NewLoop(mp, tm, nil, Config{})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	assert.Equal(t, StatusComplete, out.Status)
	require.Len(t, results, 1)
	assert.Equal(t, "tc-9", results[0].CallID)
	assert.True(t, results[0].IsError())
	require.Len(t, out.Log, 1)
	assert.NotEmpty(t, out.Log[0].Error)
	assert.Nil(t, out.Log[0].Result)
}

func TestRun_ToolFailure_DoesNotAbort(t *testing.T) {
	mp := scripted(batch(call("a", "query_siem_events")), provider.NewFinalText("done"))
	tm := &mockToolManager{executeFunc: func(ctx context.Context, tc provider.ToolCall) provider.ToolResult {
		return provider.ToolResult{CallID: tc.ID, Name: tc.Name, Error: "store unavailable"}
	}}
	l := NewLoop(mp, tm, nil, Config{})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	assert.Equal(t, StatusComplete, out.Status)
	require.Len(t, out.Log, 1)
	assert.Equal(t, "store unavailable", out.Log[0].Error)
}

func TestRun_RequestMaxTurns_OverridesDefault(t *testing.T) {
	mp := scripted(batch(call("a", "x")))
	l := NewLoop(mp, &mockToolManager{}, nil, Config{MaxTurns: 10})

	out := l.Run(context.Background(), Request{Prompt: "alert", MaxTurns: 3})

	assert.Equal(t, StatusIncomplete, out.Status)
	assert.Equal(t, int32(3), mp.calls.Load())
	assert.Equal(t, 3, out.Turns)
}

func TestRun_EmitsEventsInOrder(t *testing.T) {
	events := make(chan workflow.Event, 16)
	mp := scripted(provider.NewToolCallBatch("checking", []provider.ToolCall{call("a", "x")}), provider.NewFinalText("done"))
	tm, err := toolmanager.NewToolManager()
	require.NoError(t, err)
	l := NewLoop(mp, tm, events, Config{})

	l.Run(context.Background(), Request{Prompt: "alert"})
	close(events)

	var got []workflow.Event
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 7)
	assert.Equal(t, workflow.TurnStartEvent{Turn: 1, MaxTurns: DefaultMaxTurns}, got[0])
	assert.Equal(t, workflow.TextEvent{Text: "checking"}, got[1])
	assert.IsType(t, workflow.ToolStartEvent{}, got[2])
	assert.IsType(t, workflow.ToolEndEvent{}, got[3])
	assert.Equal(t, workflow.TurnStartEvent{Turn: 2, MaxTurns: DefaultMaxTurns}, got[4])
	assert.Equal(t, workflow.TextEvent{Text: "done"}, got[5])
	assert.Equal(t, workflow.DoneEvent{Status: "complete"}, got[6])
}

// --- ERROR PATH TESTS ---

func TestRun_BudgetExhausted_NoExtraProviderCall(t *testing.T) {
	var n atomic.Int32
	mp := &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		i := n.Add(1)
		return batch(call(fmt.Sprintf("c%d", i), "fetch_kyc_profile")), nil
	}}
	l := NewLoop(mp, &mockToolManager{}, nil, Config{MaxTurns: 10})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	assert.Equal(t, StatusIncomplete, out.Status)
	assert.ErrorIs(t, out.Err, ErrTurnBudgetExceeded)
	assert.Equal(t, int32(10), mp.calls.Load())
	require.Len(t, out.Log, 10)
	assert.Equal(t, 10, out.Log[9].Turn)
}

func TestRun_ProviderError_KeepsPartialLog(t *testing.T) {
	var n atomic.Int32
	boom := errors.New("connection reset")
	mp := &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		if n.Add(1) == 1 {
			return batch(call("a", "x")), nil
		}
		return nil, boom
	}}
	l := NewLoop(mp, &mockToolManager{}, nil, Config{})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	assert.Equal(t, StatusError, out.Status)
	assert.ErrorIs(t, out.Err, boom)
	var callErr *ProviderCallError
	require.ErrorAs(t, out.Err, &callErr)
	assert.Equal(t, 2, callErr.Turn)
	assert.Len(t, out.Log, 1)
}

func TestRun_TurnTimeout_IsError(t *testing.T) {
	mp := &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		<-ctx.Done()
		return nil, provider.TransportError(ctx.Err())
	}}
	l := NewLoop(mp, &mockToolManager{}, nil, Config{TurnTimeout: 20 * time.Millisecond})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	assert.Equal(t, StatusError, out.Status)
	assert.ErrorIs(t, out.Err, provider.ErrTimeout)
}

func TestRun_CancelledDuringCall_IsIncomplete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mp := &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		cancel()
		<-ctx.Done()
		return nil, provider.TransportError(ctx.Err())
	}}
	l := NewLoop(mp, &mockToolManager{}, nil, Config{})

	out := l.Run(ctx, Request{Prompt: "alert"})

	assert.Equal(t, StatusIncomplete, out.Status)
	assert.ErrorIs(t, out.Err, ErrCancelled)
}

func TestRun_CancelledBetweenTurns_StopsCallingProvider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mp := scripted(batch(call("a", "x")))
	tm := &mockToolManager{executeFunc: func(_ context.Context, tc provider.ToolCall) provider.ToolResult {
		cancel()
		return provider.ToolResult{CallID: tc.ID, Name: tc.Name, Content: `{}`}
	}}
	l := NewLoop(mp, tm, nil, Config{})

	out := l.Run(ctx, Request{Prompt: "alert"})

	assert.Equal(t, StatusIncomplete, out.Status)
	assert.Equal(t, int32(1), mp.calls.Load())
	assert.Len(t, out.Log, 1)
}

func TestRun_Unrecognized_IsError(t *testing.T) {
	mp := scripted(batch(call("a", "x")), provider.NewUnrecognized("finish reason SAFETY", "partial"))
	l := NewLoop(mp, &mockToolManager{}, nil, Config{})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	assert.Equal(t, StatusError, out.Status)
	assert.ErrorIs(t, out.Err, ErrUnrecognized)
	assert.Contains(t, out.Err.Error(), "SAFETY")
	assert.Len(t, out.Log, 1)
}

func TestRun_NilResponse_IsError(t *testing.T) {
	mp := &mockProvider{generateFunc: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
		return nil, nil
	}}
	l := NewLoop(mp, &mockToolManager{}, nil, Config{})

	out := l.Run(context.Background(), Request{Prompt: "alert"})

	assert.Equal(t, StatusError, out.Status)
	assert.ErrorIs(t, out.Err, ErrUnrecognized)
}
