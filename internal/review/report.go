package review

import "time"

// Scope identifies how much of the book a run covered.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeFull   Scope = "full"
)

// Report aggregates the outcome of one orchestrator run. Reports are
// ephemeral; callers cache them if they need to.
type Report struct {
	RunID         string            `json:"run_id"`
	BookID        string            `json:"book_id"`
	ChapterIDs    []string          `json:"chapter_ids"`
	Scope         Scope             `json:"scope"`
	Total         int               `json:"total"`
	ByLevel       map[Level]int     `json:"by_level"`
	ByType        map[IssueType]int `json:"by_type"`
	Issues        []*Issue          `json:"issues"`
	RulesExecuted int               `json:"rules_executed"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	Duration      time.Duration     `json:"duration"`
}

// add folds one issue into the report's totals.
func (r *Report) add(issue *Issue) {
	r.Issues = append(r.Issues, issue)
	r.Total++
	r.ByLevel[issue.Level]++
	r.ByType[issue.Type]++
}

// finish stamps the end-of-run bookkeeping.
func (r *Report) finish() {
	r.FinishedAt = time.Now()
	r.Duration = r.FinishedAt.Sub(r.StartedAt)
}
