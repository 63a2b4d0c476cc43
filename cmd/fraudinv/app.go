package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/archive"
	"github.com/Cyclone1070/fraudinv/internal/config"
	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"github.com/Cyclone1070/fraudinv/internal/investigation"
	"github.com/Cyclone1070/fraudinv/internal/logging"
	"github.com/Cyclone1070/fraudinv/internal/tool/catalog"
	"github.com/Cyclone1070/fraudinv/internal/vectorindex"
	"github.com/Cyclone1070/fraudinv/internal/workflow"
	"github.com/Cyclone1070/fraudinv/internal/workflow/loop"
	"github.com/Cyclone1070/fraudinv/internal/workflow/runner"
)

// app is the fully wired investigation stack for one command invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *datastore.Store
	runner *runner.Runner

	events chan workflow.Event
	wg     sync.WaitGroup
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	})
}

func newEmbedder(cfg config.EmbeddingConfig, getenv func(string) string) (vectorindex.Embedder, error) {
	var key string
	if cfg.APIKeyEnv != "" {
		key = getenv(cfg.APIKeyEnv)
	}
	return vectorindex.NewEmbedder(cfg, key)
}

// buildApp opens the data sources, registers the tools and connects the provider.
// Any missing data source fails startup.
func buildApp(ctx context.Context, cfg *config.Config, deps Dependencies, verbose bool) (*app, error) {
	logger := newLogger(cfg, deps.Stderr)

	embedder, err := newEmbedder(cfg.Data.Embedding, deps.Getenv)
	if err != nil {
		return nil, err
	}
	store, err := datastore.Open(cfg.Data.DatabasePath)
	if err != nil {
		return nil, err
	}
	index, err := vectorindex.OpenIndex(store, embedder)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	tools, err := catalog.NewRegistry(ctx, catalog.Deps{
		Store:  store,
		Index:  index,
		Now:    deps.Now,
		Limits: cfg.Data,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize tools: %w", err)
	}
	llm, err := deps.ProviderFactory(ctx, cfg.Provider, deps.Getenv)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, store: store}
	if verbose {
		a.events = make(chan workflow.Event, 64)
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			printEvents(deps.Stderr, a.events)
		}()
	}

	l := loop.NewLoop(llm, tools, a.events, loop.Config{
		MaxTurns:    cfg.Investigation.MaxTurns,
		TurnTimeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		Logger:      logger.With("component", "loop"),
	})
	a.runner = runner.New(l, archive.NewFileArchive(cfg.Data.OutputDir, deps.Now), runner.Config{
		SystemPrompt: cfg.Investigation.SystemPrompt,
		MaxTurns:     cfg.Investigation.MaxTurns,
		Workers:      cfg.Runner.Workers,
		Thresholds:   investigation.ThresholdsFromConfig(cfg.Investigation.Thresholds),
		Clock:        deps.Now,
		Logger:       logger.With("component", "runner"),
	})
	logger.Debug("application ready",
		"provider", llm.Name(),
		"model", cfg.Provider.Model,
		"tools", len(tools.Declarations()),
		"database", cfg.Data.DatabasePath)
	return a, nil
}

// Close stops event output and releases the database. Call it after every run finished.
func (a *app) Close() error {
	if a.events != nil {
		close(a.events)
		a.wg.Wait()
	}
	return a.store.Close()
}

func printEvents(w io.Writer, events <-chan workflow.Event) {
	for ev := range events {
		switch e := ev.(type) {
		case workflow.TurnStartEvent:
			fmt.Fprintf(w, "-- turn %d/%d\n", e.Turn, e.MaxTurns)
		case workflow.ToolStartEvent:
			fmt.Fprintf(w, "   > %s %v\n", e.ToolName, e.Args)
		case workflow.ToolEndEvent:
			if e.Error != "" {
				fmt.Fprintf(w, "   x %s failed after %s: %s\n", e.ToolName, e.Duration.Round(time.Millisecond), e.Error)
			} else {
				fmt.Fprintf(w, "   < %s (%s)\n", e.ToolName, e.Duration.Round(time.Millisecond))
			}
		case workflow.TextEvent:
			fmt.Fprintf(w, "   %d chars of model text\n", len(e.Text))
		case workflow.DoneEvent:
			fmt.Fprintf(w, "-- done: %s\n", e.Status)
		}
	}
}
