package toolmanager

import (
	"context"

	"github.com/Cyclone1070/fraudinv/internal/tool"
)

// toolImpl defines the interface for individual tools.
type toolImpl interface {
	// Name returns the tool's identifier.
	Name() string

	// Declaration returns the tool's schema for the LLM.
	Declaration() tool.Declaration

	// Input returns a pointer to the input struct (e.g., &FetchProfileRequest{}).
	Input() any

	// Execute runs the tool with typed input and returns a JSON-serialisable payload.
	Execute(ctx context.Context, input any) (any, error)
}
