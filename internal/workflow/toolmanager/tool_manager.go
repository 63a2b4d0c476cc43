package toolmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"github.com/Cyclone1070/fraudinv/internal/workflow"
	"github.com/mitchellh/mapstructure"
)

// ToolManager is the registry of tools available to an investigation.
// Tools are registered at construction; lookups are safe for concurrent use.
type ToolManager struct {
	mu       sync.RWMutex
	registry map[string]toolImpl
}

// NewToolManager creates a manager holding the given tools.
func NewToolManager(tools ...toolImpl) (*ToolManager, error) {
	tm := &ToolManager{
		registry: make(map[string]toolImpl),
	}
	for _, t := range tools {
		if err := tm.Register(t); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// Register adds a tool. Names are unique within a manager.
func (m *ToolManager) Register(t toolImpl) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := t.Name()
	if _, exists := m.registry[name]; exists {
		return &DuplicateNameError{Name: name}
	}
	m.registry[name] = t
	return nil
}

// Declarations returns every tool schema, sorted by name.
func (m *ToolManager) Declarations() []tool.Declaration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	decls := make([]tool.Declaration, 0, len(m.registry))
	for _, t := range m.registry {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

// Names returns the registered tool names, sorted.
func (m *ToolManager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.registry))
	for name := range m.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the tool registered under name, or a *NotFoundError.
func (m *ToolManager) Resolve(name string) (toolImpl, error) {
	m.mu.RLock()
	t, ok := m.registry[name]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Name: name, Available: m.Names()}
	}
	return t, nil
}

// Execute runs a tool call and returns its result. It never returns a Go error:
// unknown tools, bad arguments, handler failures and panics all become error results
// correlated to the call by ID so the model can decide how to proceed.
func (m *ToolManager) Execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) provider.ToolResult {
	start := time.Now()
	if events != nil {
		events <- workflow.ToolStartEvent{ToolName: tc.Name, CallID: tc.ID, Args: tc.Args}
	}

	result := m.execute(ctx, tc)

	if events != nil {
		events <- workflow.ToolEndEvent{
			ToolName: tc.Name,
			CallID:   tc.ID,
			Error:    result.Error,
			Duration: time.Since(start),
		}
	}
	return result
}

func (m *ToolManager) execute(ctx context.Context, tc provider.ToolCall) provider.ToolResult {
	t, err := m.Resolve(tc.Name)
	if err != nil {
		nf := err.(*NotFoundError)
		return errorResult(tc, fmt.Sprintf("%v. Available tools: %s", nf, strings.Join(nf.Available, ", ")))
	}

	input, err := decodeArguments(t, tc.Args)
	if err != nil {
		return errorResult(tc, err.Error())
	}

	payload, err := runSafely(ctx, t, input)
	if err != nil {
		return errorResult(tc, err.Error())
	}

	content, err := json.Marshal(payload)
	if err != nil {
		return errorResult(tc, fmt.Sprintf("failed to encode result of %q: %v", tc.Name, err))
	}

	return provider.ToolResult{
		CallID:  tc.ID,
		Name:    tc.Name,
		Content: string(content),
	}
}

// decodeArguments fills schema defaults, checks required parameters and decodes
// the raw model arguments into the tool's request type.
func decodeArguments(t toolImpl, raw map[string]any) (any, error) {
	decl := t.Declaration()
	args := make(map[string]any, len(raw))
	for k, v := range raw {
		if v != nil {
			args[k] = v
		}
	}

	if params := decl.Parameters; params != nil {
		for name, prop := range params.Properties {
			if _, ok := args[name]; !ok && prop != nil && prop.Default != nil {
				args[name] = prop.Default
			}
		}
		for _, name := range params.Required {
			v, ok := args[name]
			if !ok {
				return nil, &InvalidArgumentsError{Tool: decl.Name, Cause: fmt.Errorf("missing required argument %q", name)}
			}
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				return nil, &InvalidArgumentsError{Tool: decl.Name, Cause: fmt.Errorf("argument %q must not be empty", name)}
			}
		}
	}

	input := t.Input()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder for %q: %w", decl.Name, err)
	}
	if err := decoder.Decode(args); err != nil {
		return nil, &InvalidArgumentsError{Tool: decl.Name, Cause: err}
	}

	if v, ok := input.(tool.Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, &InvalidArgumentsError{Tool: decl.Name, Cause: err}
		}
	}
	return input, nil
}

func runSafely(ctx context.Context, t toolImpl, input any) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %q panicked: %v", t.Name(), r)
		}
	}()
	return t.Execute(ctx, input)
}

func errorResult(tc provider.ToolCall, msg string) provider.ToolResult {
	return provider.ToolResult{
		CallID: tc.ID,
		Name:   tc.Name,
		Error:  msg,
	}
}
