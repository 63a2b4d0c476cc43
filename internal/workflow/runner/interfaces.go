package runner

import (
	"context"

	"github.com/Cyclone1070/fraudinv/internal/investigation"
	"github.com/Cyclone1070/fraudinv/internal/workflow/loop"
)

// investigationLoop runs one conversation to a terminal state.
type investigationLoop interface {
	Run(ctx context.Context, req loop.Request) loop.Outcome
}

// recordArchive persists completed records.
type recordArchive interface {
	Save(rec *investigation.Record) (string, error)
}
