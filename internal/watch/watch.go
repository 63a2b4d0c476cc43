// Package watch periodically drains an inbox directory of alert files into batch runs.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/investigation"
	"github.com/Cyclone1070/fraudinv/internal/logging"
	"github.com/Cyclone1070/fraudinv/internal/workflow/runner"
	rcron "github.com/robfig/cron/v3"
)

const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

var ErrScanInProgress = errors.New("inbox scan already in progress")

type batchRunner interface {
	RunBatch(ctx context.Context, alerts []investigation.Alert) *runner.BatchResult
}

type Config struct {
	InboxDir string
	Schedule string // standard cron spec or descriptor such as "@every 1m"
	Clock    func() time.Time
	Logger   *slog.Logger
	// OnBatch, when set, receives every finished batch.
	OnBatch func(*runner.BatchResult)
}

type Watcher struct {
	inbox    string
	schedule rcron.Schedule
	spec     string
	runner   batchRunner
	clock    func() time.Time
	logger   *slog.Logger
	onBatch  func(*runner.BatchResult)

	scanning atomic.Bool
	mu       sync.Mutex
	cron     *rcron.Cron
}

// New validates the schedule up front so a bad spec fails before anything starts.
func New(cfg Config, r batchRunner) (*Watcher, error) {
	if strings.TrimSpace(cfg.InboxDir) == "" {
		return nil, errors.New("watch: inbox directory not set")
	}
	sched, err := rcron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("watch: invalid schedule %q: %w", cfg.Schedule, err)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Watcher{
		inbox:    cfg.InboxDir,
		schedule: sched,
		spec:     cfg.Schedule,
		runner:   r,
		clock:    clock,
		logger:   logging.OrDiscard(cfg.Logger),
		onBatch:  cfg.OnBatch,
	}, nil
}

// Start schedules scans until ctx is cancelled or Stop is called. A tick that fires
// while the previous scan is still running is skipped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return errors.New("watch: already started")
	}
	for _, dir := range []string{w.inbox, filepath.Join(w.inbox, ProcessedDir), filepath.Join(w.inbox, FailedDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
	}

	cl := cronLogger{w.logger}
	w.cron = rcron.New(rcron.WithLogger(cl), rcron.WithChain(rcron.Recover(cl), rcron.SkipIfStillRunning(cl)))
	w.cron.Schedule(w.schedule, rcron.FuncJob(func() {
		if _, err := w.Scan(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
			w.logger.Error("inbox scan failed", "error", err)
		}
	}))
	w.cron.Start()
	w.logger.Info("watching inbox", "dir", w.inbox, "schedule", w.spec)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Stop halts scheduling and waits for a running scan to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	w.logger.Info("inbox watcher stopped")
}

// Scan runs one pass: every alert file in the inbox is loaded and the alerts run as one
// batch. A file moves to processed/ once each of its alerts ended complete or error; a file
// with an incomplete alert stays in the inbox for the next scan. Unreadable files move to
// failed/. It returns nil when the inbox held no alerts.
func (w *Watcher) Scan(ctx context.Context) (*runner.BatchResult, error) {
	if !w.scanning.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer w.scanning.Store(false)

	files, err := w.pending()
	if err != nil {
		return nil, err
	}

	var alerts []investigation.Alert
	var loaded []string
	var sizes []int
	for _, path := range files {
		batch, err := investigation.LoadAlerts(path)
		if err != nil {
			w.logger.Warn("rejecting alert file", "file", filepath.Base(path), "error", err)
			w.move(path, FailedDir)
			continue
		}
		alerts = append(alerts, batch...)
		loaded = append(loaded, path)
		sizes = append(sizes, len(batch))
	}
	if len(alerts) == 0 {
		for _, path := range loaded {
			w.move(path, ProcessedDir)
		}
		return nil, nil
	}

	w.logger.Info("processing inbox", "files", len(loaded), "alerts", len(alerts))
	res := w.runner.RunBatch(ctx, alerts)
	offset := 0
	for i, path := range loaded {
		if settled(res, offset, sizes[i]) {
			w.move(path, ProcessedDir)
		} else {
			w.logger.Warn("alert file left in inbox", "file", filepath.Base(path), "reason", "unfinished investigations")
		}
		offset += sizes[i]
	}
	if w.onBatch != nil {
		w.onBatch(res)
	}
	return res, nil
}

// settled reports whether records [offset, offset+n) all reached a terminal status.
func settled(res *runner.BatchResult, offset, n int) bool {
	if res == nil || offset+n > len(res.Records) {
		return false
	}
	for _, rec := range res.Records[offset : offset+n] {
		if rec == nil {
			return false
		}
		switch rec.Status {
		case investigation.StatusComplete, investigation.StatusError:
		default:
			return false
		}
	}
	return true
}

func (w *Watcher) pending() ([]string, error) {
	entries, err := os.ReadDir(w.inbox)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(w.inbox, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (w *Watcher) move(path, sub string) {
	dir := filepath.Join(w.inbox, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.logger.Error("cannot create directory", "dir", dir, "error", err)
		return
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		dest = filepath.Join(dir, w.clock().Format("20060102_150405_")+filepath.Base(path))
	}
	if err := os.Rename(path, dest); err != nil {
		w.logger.Error("cannot move alert file", "file", path, "error", err)
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
