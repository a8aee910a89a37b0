package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// IssueStore is the durable home of issues. The orchestrator deletes the
// scope's prior issues and reinserts the freshly computed set on every run;
// it never merges. Writes are not transactional across a run; rerunning is
// the recovery path after a partial failure.
type IssueStore interface {
	DeleteByChapter(ctx context.Context, chapterID string) error
	DeleteByBook(ctx context.Context, bookID string) error
	Insert(ctx context.Context, issue *Issue) error
}

// Orchestrator drives a review run: build snapshot, select rules, execute
// them in priority order, persist issues and assemble the report.
type Orchestrator struct {
	reader   story.Reader
	issues   IssueStore
	registry *Registry
	logger   *slog.Logger
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger configures a custom logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(reader story.Reader, issues IssueStore, registry *Registry, options ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		reader:   reader,
		issues:   issues,
		registry: registry,
		logger:   slog.Default().With("component", "review_orchestrator"),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// Registry exposes the rule registry for listing and toggling.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// ReviewChapter reviews a single chapter. Prior issues for the chapter are
// deleted first; the selected (or all) enabled rules then run in priority
// order and their findings are persisted and aggregated. levels may be
// empty to run every level.
func (o *Orchestrator) ReviewChapter(ctx context.Context, bookID, chapterID string, levels ...Level) (*Report, error) {
	start := time.Now()

	snap, err := BuildSnapshot(ctx, o.reader, bookID, chapterID, o.logger)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}

	if err := o.issues.DeleteByChapter(ctx, chapterID); err != nil {
		return nil, fmt.Errorf("clearing prior issues for chapter %s: %w", chapterID, err)
	}

	report := o.newReport(bookID, ScopeSingle, start)
	report.ChapterIDs = []string{chapterID}

	rules := o.registry.ByLevels(levels...)
	report.RulesExecuted = o.runRules(ctx, rules, snap, report)
	report.finish()

	o.logger.Info("chapter review complete",
		"run_id", report.RunID,
		"book_id", bookID,
		"chapter_id", chapterID,
		"rules_executed", report.RulesExecuted,
		"issues", report.Total,
		"duration_ms", report.Duration.Milliseconds())

	return report, nil
}

// ReviewBook reviews every chapter of a book in ascending order. Prior
// issues for the whole book are deleted first; each selected rule then runs
// once per chapter against a snapshot repointed at that chapter.
func (o *Orchestrator) ReviewBook(ctx context.Context, bookID string, levels ...Level) (*Report, error) {
	start := time.Now()

	snap, err := BuildSnapshot(ctx, o.reader, bookID, "", o.logger)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}

	if err := o.issues.DeleteByBook(ctx, bookID); err != nil {
		return nil, fmt.Errorf("clearing prior issues for book %s: %w", bookID, err)
	}

	report := o.newReport(bookID, ScopeFull, start)
	rules := o.registry.ByLevels(levels...)

	executed := 0
	for _, chapter := range snap.Chapters {
		report.ChapterIDs = append(report.ChapterIDs, chapter.ID)
		chapterSnap := snap.WithCurrent(chapter)
		executed = o.runRules(ctx, rules, chapterSnap, report)
	}
	report.RulesExecuted = executed
	report.finish()

	o.logger.Info("book review complete",
		"run_id", report.RunID,
		"book_id", bookID,
		"chapters", len(report.ChapterIDs),
		"rules_executed", report.RulesExecuted,
		"issues", report.Total,
		"duration_ms", report.Duration.Milliseconds())

	return report, nil
}

func (o *Orchestrator) newReport(bookID string, scope Scope, start time.Time) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		BookID:    bookID,
		Scope:     scope,
		ByLevel:   make(map[Level]int),
		ByType:    make(map[IssueType]int),
		Issues:    []*Issue{},
		StartedAt: start,
	}
}

// runRules executes the enabled rules sequentially against the snapshot,
// persisting and aggregating their findings. A failing rule contributes
// nothing and never stops the run. Returns the number of rules executed.
func (o *Orchestrator) runRules(ctx context.Context, rules []Rule, snap *Snapshot, report *Report) int {
	executed := 0
	for _, rule := range rules {
		if !rule.Enabled() {
			continue
		}
		executed++

		issues := o.runRule(ctx, rule, snap)
		for _, issue := range issues {
			o.stamp(issue, snap)
			if err := o.issues.Insert(ctx, issue); err != nil {
				o.logger.Error("persisting issue failed",
					"run_id", report.RunID,
					"rule", rule.Name(),
					"issue_type", issue.Type,
					"error", err)
				continue
			}
			report.add(issue)
		}
	}
	return executed
}

// runRule isolates one rule execution: an error or panic inside Check is
// logged and degrades to an empty result set.
func (o *Orchestrator) runRule(ctx context.Context, rule Rule, snap *Snapshot) (issues []*Issue) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("rule panicked",
				"rule", rule.Name(),
				"panic", r)
			issues = nil
		}
	}()

	issues, err := rule.Check(ctx, snap)
	if err != nil {
		o.logger.Warn("rule failed, treating as no findings",
			"rule", rule.Name(),
			"level", rule.Level(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil
	}

	o.logger.Debug("rule executed",
		"rule", rule.Name(),
		"level", rule.Level(),
		"findings", len(issues),
		"duration_ms", time.Since(start).Milliseconds())

	return issues
}

// stamp fills the bookkeeping fields a rule may omit on its findings.
func (o *Orchestrator) stamp(issue *Issue, snap *Snapshot) {
	if issue.ID == "" {
		issue.ID = uuid.New().String()
	}
	if issue.BookID == "" {
		issue.BookID = snap.Book.ID
	}
	if snap.Current != nil {
		if issue.ChapterID == "" {
			issue.ChapterID = snap.Current.ID
		}
		if issue.ChapterOrder == 0 {
			issue.ChapterOrder = snap.Current.Order
		}
	}
	if issue.Status == "" {
		issue.Status = StatusOpen
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = time.Now()
	}
}
