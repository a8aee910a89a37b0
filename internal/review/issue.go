// Package review implements the narrative consistency review engine: a
// registry of leveled, prioritized rules executed by an orchestrator over an
// immutable per-run snapshot of a book's structured memory, producing
// persisted issues and an aggregate report.
package review

import "time"

// Level is the severity tier of a rule or issue.
type Level string

const (
	LevelError      Level = "error"
	LevelWarning    Level = "warning"
	LevelSuggestion Level = "suggestion"
	LevelInfo       Level = "info"
)

// levelRank orders levels by severity, highest first.
var levelRank = map[Level]int{
	LevelError:      0,
	LevelWarning:    1,
	LevelSuggestion: 2,
	LevelInfo:       3,
}

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// Levels returns all levels ordered by severity, highest first.
func Levels() []Level {
	return []Level{LevelError, LevelWarning, LevelSuggestion, LevelInfo}
}

// IssueType is the fixed vocabulary of issue categories.
type IssueType string

const (
	TypeDeathConflict        IssueType = "character_death_conflict"
	TypeNameInconsistency    IssueType = "name_inconsistency"
	TypeTimelineConflict     IssueType = "timeline_conflict"
	TypeLocationConflict     IssueType = "location_conflict"
	TypeForgottenForeshadow  IssueType = "forgotten_foreshadow"
	TypePersonalityDeviation IssueType = "personality_deviation"
	TypeSettingConflict      IssueType = "setting_conflict"
)

// Status is the issue lifecycle state. Transitions run open -> fixed or
// open -> ignored; both are terminal.
type Status string

const (
	StatusOpen    Status = "open"
	StatusFixed   Status = "fixed"
	StatusIgnored Status = "ignored"
)

// Location points at the offending text inside the reviewed chapter.
type Location struct {
	Paragraph int    `json:"paragraph,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
}

// Reference points back at the earlier material the finding conflicts with.
type Reference struct {
	ChapterOrder int    `json:"chapter_order,omitempty"`
	EventID      string `json:"event_id,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// Issue is one finding produced by a rule run. Issues for a scope are
// deleted and reinserted wholesale on every run; they are never merged.
type Issue struct {
	ID           string     `json:"id"`
	BookID       string     `json:"book_id"`
	ChapterID    string     `json:"chapter_id"`
	ChapterOrder int        `json:"chapter_order"`
	Level        Level      `json:"level"`
	Type         IssueType  `json:"type"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Location     *Location  `json:"location,omitempty"`
	Suggestion   string     `json:"suggestion,omitempty"`
	Reference    *Reference `json:"reference,omitempty"`
	Confidence   float64    `json:"confidence"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}
