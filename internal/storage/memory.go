// Package storage provides the in-memory reference implementation of the
// engine's collaborator interfaces: the story reader and the issue store
// with its status lifecycle. The CLI and the tests run on it; production
// deployments substitute their own database-backed implementations.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// Memory holds one or more books' story memory and their issues.
// All methods are safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	books       map[string]*story.Book
	chapters    map[string][]*story.Chapter
	characters  map[string][]*story.Character
	settings    map[string][]*story.WorldSetting
	foreshadows map[string][]*story.Foreshadow
	events      map[string][]*story.Event
	states      map[string][]*story.CharacterState
	issues      map[string]*review.Issue // issue id -> issue
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		books:       make(map[string]*story.Book),
		chapters:    make(map[string][]*story.Chapter),
		characters:  make(map[string][]*story.Character),
		settings:    make(map[string][]*story.WorldSetting),
		foreshadows: make(map[string][]*story.Foreshadow),
		events:      make(map[string][]*story.Event),
		states:      make(map[string][]*story.CharacterState),
		issues:      make(map[string]*review.Issue),
	}
}

// AddBook registers a book with its full story memory. Chapters, events and
// states are re-sorted into their contract order on insert.
func (m *Memory) AddBook(book *story.Book, chapters []*story.Chapter, characters []*story.Character,
	settings []*story.WorldSetting, foreshadows []*story.Foreshadow, events []*story.Event, states []*story.CharacterState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Order < chapters[j].Order })
	sort.SliceStable(events, func(i, j int) bool { return events[i].Sequence < events[j].Sequence })
	sort.SliceStable(states, func(i, j int) bool {
		if states[i].ChapterOrder != states[j].ChapterOrder {
			return states[i].ChapterOrder < states[j].ChapterOrder
		}
		return states[i].Seq < states[j].Seq
	})

	m.books[book.ID] = book
	m.chapters[book.ID] = chapters
	m.characters[book.ID] = characters
	m.settings[book.ID] = settings
	m.foreshadows[book.ID] = foreshadows
	m.events[book.ID] = events
	m.states[book.ID] = states
}

// BookByID returns the book or nil when unknown.
func (m *Memory) BookByID(ctx context.Context, id string) (*story.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.books[id], nil
}

func (m *Memory) ChaptersByBook(ctx context.Context, bookID string) ([]*story.Chapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chapters[bookID], nil
}

func (m *Memory) CharactersByBook(ctx context.Context, bookID string) ([]*story.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.characters[bookID], nil
}

func (m *Memory) SettingsByBook(ctx context.Context, bookID string) ([]*story.WorldSetting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[bookID], nil
}

func (m *Memory) ForeshadowsByBook(ctx context.Context, bookID string) ([]*story.Foreshadow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.foreshadows[bookID], nil
}

func (m *Memory) EventsByBook(ctx context.Context, bookID string) ([]*story.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.events[bookID], nil
}

func (m *Memory) StatesByBook(ctx context.Context, bookID string) ([]*story.CharacterState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[bookID], nil
}

// Insert stores one issue.
func (m *Memory) Insert(ctx context.Context, issue *review.Issue) error {
	if issue.ID == "" {
		return fmt.Errorf("issue has no id")
	}
	m.mu.Lock()
	m.issues[issue.ID] = issue
	m.mu.Unlock()
	return nil
}

// DeleteByChapter removes every issue recorded against a chapter.
func (m *Memory) DeleteByChapter(ctx context.Context, chapterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, issue := range m.issues {
		if issue.ChapterID == chapterID {
			delete(m.issues, id)
		}
	}
	return nil
}

// DeleteByBook removes every issue recorded against a book.
func (m *Memory) DeleteByBook(ctx context.Context, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, issue := range m.issues {
		if issue.BookID == bookID {
			delete(m.issues, id)
		}
	}
	return nil
}

// UpdateStatus moves an open issue to fixed or ignored. Both transitions
// are terminal; anything else is rejected.
func (m *Memory) UpdateStatus(ctx context.Context, issueID string, status review.Status) error {
	if status != review.StatusFixed && status != review.StatusIgnored {
		return fmt.Errorf("invalid target status %q", status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	issue, ok := m.issues[issueID]
	if !ok {
		return fmt.Errorf("issue %s: %w", issueID, review.ErrNotFound)
	}
	if issue.Status != review.StatusOpen {
		return fmt.Errorf("issue %s is %s, not open", issueID, issue.Status)
	}
	issue.Status = status
	return nil
}

// ListByChapter returns a chapter's issues ordered by severity then
// creation time.
func (m *Memory) ListByChapter(ctx context.Context, chapterID string) ([]*review.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var issues []*review.Issue
	for _, issue := range m.issues {
		if issue.ChapterID == chapterID {
			issues = append(issues, issue)
		}
	}
	sortIssues(issues)
	return issues, nil
}

// ListByBook returns a book's issues ordered by chapter, severity, then
// creation time.
func (m *Memory) ListByBook(ctx context.Context, bookID string) ([]*review.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var issues []*review.Issue
	for _, issue := range m.issues {
		if issue.BookID == bookID {
			issues = append(issues, issue)
		}
	}
	sortIssues(issues)
	return issues, nil
}

func sortIssues(issues []*review.Issue) {
	rank := map[review.Level]int{
		review.LevelError:      0,
		review.LevelWarning:    1,
		review.LevelSuggestion: 2,
		review.LevelInfo:       3,
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].ChapterOrder != issues[j].ChapterOrder {
			return issues[i].ChapterOrder < issues[j].ChapterOrder
		}
		if rank[issues[i].Level] != rank[issues[j].Level] {
			return rank[issues[i].Level] < rank[issues[j].Level]
		}
		return issues[i].CreatedAt.Before(issues[j].CreatedAt)
	})
}
