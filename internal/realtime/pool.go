package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
)

// Pool runs review jobs on a bounded set of workers. Real-time triggers and
// batch jobs share one pool so background work cannot starve the process.
type Pool struct {
	group  *errgroup.Group
	ctx    context.Context
	logger *slog.Logger
}

// NewPool creates a pool bounded to workers concurrent jobs.
func NewPool(ctx context.Context, workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	logger.Debug("review worker pool started", "workers", workers)

	return &Pool{
		group:  group,
		ctx:    groupCtx,
		logger: logger,
	}
}

// Submit schedules a job. The job's error is logged, not propagated:
// background review failures never take down sibling jobs.
func (p *Pool) Submit(name string, job func(ctx context.Context) error) {
	p.group.Go(func() error {
		start := time.Now()
		if err := job(p.ctx); err != nil {
			p.logger.Warn("background review job failed",
				"job", name,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err)
			return nil
		}
		p.logger.Debug("background review job finished",
			"job", name,
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	})
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	_ = p.group.Wait()
}

// ReviewBooks runs a full review of each book through the pool's
// orchestrator, bounded by the worker count, and returns the reports in
// input order. A failing book leaves a nil slot and does not stop the rest.
func ReviewBooks(ctx context.Context, orch *review.Orchestrator, bookIDs []string, workers int, levels ...review.Level) []*review.Report {
	if workers <= 0 {
		workers = 4
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	reports := make([]*review.Report, len(bookIDs))
	var mu sync.Mutex

	for i, bookID := range bookIDs {
		i, bookID := i, bookID
		group.Go(func() error {
			report, err := orch.ReviewBook(groupCtx, bookID, levels...)
			if err != nil {
				slog.Warn("batch book review failed",
					"book_id", bookID,
					"error", err)
				return nil
			}
			mu.Lock()
			reports[i] = report
			mu.Unlock()
			return nil
		})
	}

	_ = group.Wait()
	return reports
}
