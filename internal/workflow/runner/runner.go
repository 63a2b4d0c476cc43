// Package runner turns alerts into investigation records: it drives the loop, parses the
// brief, persists completed records and summarises batches.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/brief"
	"github.com/Cyclone1070/fraudinv/internal/investigation"
	"github.com/Cyclone1070/fraudinv/internal/logging"
	"github.com/Cyclone1070/fraudinv/internal/workflow/loop"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	SystemPrompt string
	MaxTurns     int // used when an alert sets none
	Workers      int // <= 1 runs batches sequentially
	Thresholds   investigation.Thresholds
	Clock        func() time.Time
	Logger       *slog.Logger
}

type Runner struct {
	loop       investigationLoop
	archive    recordArchive
	system     string
	maxTurns   int
	workers    int
	thresholds investigation.Thresholds
	clock      func() time.Time
	logger     *slog.Logger
}

// New builds a runner. A nil archive disables persistence.
func New(l investigationLoop, archive recordArchive, cfg Config) *Runner {
	system := cfg.SystemPrompt
	if system == "" {
		system = investigation.DefaultSystemPrompt
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Runner{
		loop:       l,
		archive:    archive,
		system:     system,
		maxTurns:   cfg.MaxTurns,
		workers:    cfg.Workers,
		thresholds: cfg.Thresholds,
		clock:      clock,
		logger:     logging.OrDiscard(cfg.Logger),
	}
}

// Investigate runs one alert to a terminal state. The error is non-nil only for an
// invalid alert; every other outcome, including provider failure, is a record whose
// Status says what happened. Only complete records are persisted.
func (r *Runner) Investigate(ctx context.Context, alert investigation.Alert) (*investigation.Record, error) {
	if err := alert.Validate(); err != nil {
		return nil, err
	}

	maxTurns := alert.MaxTurns
	if maxTurns <= 0 {
		maxTurns = r.maxTurns
	}
	started := r.clock()
	logger := r.logger.With("case_id", alert.TransactionID)
	logger.Info("investigation started", "risk_score", alert.RiskScore, "max_turns", maxTurns)

	out := r.loop.Run(ctx, loop.Request{
		System:   r.system,
		Prompt:   investigation.BuildPrompt(alert, started),
		MaxTurns: maxTurns,
	})

	rec := newRecord(alert, started)
	rec.Status = investigation.Status(out.Status)
	rec.Turns = out.Turns
	rec.Log = convertLog(out.Log)
	rec.ToolsUsed = investigation.CountTools(rec.Log)
	rec.TotalToolCalls = len(rec.Log)
	rec.Brief = out.FinalText
	if out.Err != nil {
		rec.Error = out.Err.Error()
	}

	if rec.Status == investigation.StatusComplete {
		parsed := brief.Parse(out.FinalText)
		rec.Recommendation = parsed.Recommendation
		rec.ConfidenceScore = parsed.Confidence
		rec.Ambiguous = parsed.Ambiguous
		rec.ThresholdRecommendation = r.thresholds.Recommend(parsed.Confidence)
		if parsed.Ambiguous {
			logger.Warn("brief parsed with defaults",
				"confidence_source", parsed.ConfidenceSource,
				"recommendation_source", parsed.RecommendationSource)
		}
		r.persist(logger, rec)
	}

	logger.Info("investigation finished",
		"status", rec.Status,
		"recommendation", rec.Recommendation,
		"confidence", rec.ConfidenceScore,
		"tool_calls", rec.TotalToolCalls,
		"turns", rec.Turns)
	return rec, nil
}

func (r *Runner) persist(logger *slog.Logger, rec *investigation.Record) {
	if r.archive == nil {
		return
	}
	path, err := r.archive.Save(rec)
	if err != nil {
		logger.Error("failed to save investigation", "error", err)
		return
	}
	logger.Info("investigation saved", "path", path)
}

func newRecord(alert investigation.Alert, started time.Time) *investigation.Record {
	return &investigation.Record{
		CaseID:            alert.TransactionID,
		InvestigationID:   uuid.NewString(),
		InvestigationDate: started,
		ToolsUsed:         map[string]int{},
		Log:               []investigation.LogEntry{},
		InitialRiskScore:  alert.RiskScore,
		AlertDescription:  alert.Description,
	}
}

func convertLog(entries []loop.ToolCallEntry) []investigation.LogEntry {
	out := make([]investigation.LogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, investigation.LogEntry{
			Turn:       e.Turn,
			Tool:       e.Tool,
			CallID:     e.CallID,
			Input:      e.Input,
			Result:     e.Result,
			Error:      e.Error,
			DurationMs: e.DurationMs,
		})
	}
	return out
}

// BatchResult holds one record per input alert, in input order.
type BatchResult struct {
	RunID   string                  `json:"run_id"`
	Records []*investigation.Record `json:"records"`
	Summary Summary                 `json:"summary"`
}

// RunBatch investigates every alert. Invalid alerts become error records rather than
// aborting the batch.
func (r *Runner) RunBatch(ctx context.Context, alerts []investigation.Alert) *BatchResult {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	logger.Info("batch started", "alerts", len(alerts), "workers", max(r.workers, 1))

	records := make([]*investigation.Record, len(alerts))
	investigate := func(i int) {
		rec, err := r.Investigate(ctx, alerts[i])
		if err != nil {
			logger.Warn("alert rejected", "index", i, "error", err)
			rec = newRecord(alerts[i], r.clock())
			rec.Status = investigation.StatusError
			rec.Error = err.Error()
		}
		records[i] = rec
	}

	if r.workers <= 1 {
		for i := range alerts {
			investigate(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.workers)
		for i := range alerts {
			g.Go(func() error {
				investigate(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	summary := Summarize(records)
	logger.Info("batch finished",
		"total", summary.Total,
		"mean_confidence", summary.MeanConfidence,
		"mean_tool_calls", summary.MeanToolCalls)
	return &BatchResult{RunID: runID, Records: records, Summary: summary}
}
