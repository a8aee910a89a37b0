package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
)

// DefaultDebounceWindow drops repeated saves of the same chapter inside
// this window.
const DefaultDebounceWindow = 3 * time.Second

// DefaultReportTTL bounds how long a cached mini-report stays valid.
const DefaultReportTTL = 10 * time.Minute

// Trigger reacts to chapter-saved events: debounced per chapter, it runs
// only the error-level rule tier asynchronously and caches the resulting
// mini-report keyed by chapter id.
type Trigger struct {
	orch    *review.Orchestrator
	pool    *Pool
	window  time.Duration
	lastRun sync.Map // chapter id -> time.Time of the last accepted save
	reports *Cache[string, *review.Report]
	logger  *slog.Logger
}

// TriggerOption customizes a Trigger.
type TriggerOption func(*Trigger)

// WithDebounceWindow overrides the 3s default.
func WithDebounceWindow(window time.Duration) TriggerOption {
	return func(t *Trigger) {
		t.window = window
	}
}

// WithReportTTL overrides the cached report lifetime.
func WithReportTTL(ttl time.Duration) TriggerOption {
	return func(t *Trigger) {
		t.reports.Close()
		t.reports = NewCache[string, *review.Report](ttl)
	}
}

// WithTriggerLogger configures a custom logger.
func WithTriggerLogger(logger *slog.Logger) TriggerOption {
	return func(t *Trigger) {
		t.logger = logger
	}
}

// NewTrigger wires the trigger to an orchestrator and a worker pool.
func NewTrigger(orch *review.Orchestrator, pool *Pool, options ...TriggerOption) *Trigger {
	t := &Trigger{
		orch:    orch,
		pool:    pool,
		window:  DefaultDebounceWindow,
		reports: NewCache[string, *review.Report](DefaultReportTTL),
		logger:  slog.Default().With("component", "realtime_trigger"),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// ChapterSaved handles one save event. Saves inside the debounce window are
// dropped; otherwise the error-level review is scheduled asynchronously and
// its report cached on completion. Returns whether a run was scheduled.
func (t *Trigger) ChapterSaved(bookID, chapterID string) bool {
	now := time.Now()

	for {
		prev, loaded := t.lastRun.LoadOrStore(chapterID, now)
		if !loaded {
			break
		}
		last := prev.(time.Time)
		if now.Sub(last) < t.window {
			t.logger.Debug("chapter save debounced",
				"chapter_id", chapterID,
				"since_last_ms", now.Sub(last).Milliseconds())
			return false
		}
		if t.lastRun.CompareAndSwap(chapterID, prev, now) {
			break
		}
		// Lost the race to another save; re-read and re-decide.
	}

	t.pool.Submit("realtime:"+chapterID, func(ctx context.Context) error {
		report, err := t.orch.ReviewChapter(ctx, bookID, chapterID, review.LevelError)
		if err != nil {
			return err
		}
		t.reports.Set(chapterID, report)
		t.logger.Debug("real-time report cached",
			"chapter_id", chapterID,
			"issues", report.Total)
		return nil
	})
	return true
}

// Report returns the cached mini-report for a chapter, if any.
func (t *Trigger) Report(chapterID string) (*review.Report, bool) {
	return t.reports.Get(chapterID)
}

// Clear drops both the cached report and the debounce timestamp for a
// chapter, so the next save runs immediately.
func (t *Trigger) Clear(chapterID string) {
	t.reports.Delete(chapterID)
	t.lastRun.Delete(chapterID)
}

// Close releases the trigger's cache resources.
func (t *Trigger) Close() {
	t.reports.Close()
}
