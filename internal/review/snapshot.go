package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// ErrNotFound is returned when the book or chapter a run was asked to review
// does not resolve. It is the only failure that aborts a run.
var ErrNotFound = errors.New("not found")

// Snapshot is the immutable bundle of story data a rule run operates over.
// It is built once per orchestrator invocation and never mutated afterwards,
// so it is safe to share read-only across concurrent rule executions.
type Snapshot struct {
	Book     *story.Book
	Chapters []*story.Chapter
	// Current is the chapter under review; nil for a full-book snapshot
	// before the orchestrator points it at each chapter in turn.
	Current *story.Chapter

	Characters []*story.Character
	// NameIndex maps every character name and alias to a character id.
	// Collisions resolve last-writer-wins.
	NameIndex map[string]string

	// Settings groups world settings by category.
	Settings    map[string][]*story.WorldSetting
	Foreshadows []*story.Foreshadow
	Events      []*story.Event
	States      []*story.CharacterState

	// Summaries maps chapter id to its stored summary, where one exists.
	Summaries map[string]string
}

// CharacterByID returns the character with the given id, or nil.
func (s *Snapshot) CharacterByID(id string) *story.Character {
	for _, c := range s.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ChapterBefore returns the chapter immediately preceding order, or nil.
func (s *Snapshot) ChapterBefore(order int) *story.Chapter {
	var prev *story.Chapter
	for _, ch := range s.Chapters {
		if ch.Order >= order {
			break
		}
		prev = ch
	}
	return prev
}

// WithCurrent returns a shallow copy of the snapshot pointing at a different
// current chapter. The shared slices and maps stay untouched.
func (s *Snapshot) WithCurrent(ch *story.Chapter) *Snapshot {
	clone := *s
	clone.Current = ch
	return &clone
}

// BuildSnapshot assembles the per-run snapshot for a book, optionally scoped
// to a single chapter. chapterID may be empty for full-book mode. It fails
// with ErrNotFound if the book or the named chapter does not resolve; every
// other dataset loads through the reader as-is.
func BuildSnapshot(ctx context.Context, reader story.Reader, bookID, chapterID string, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	book, err := reader.BookByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading book %s: %w", bookID, err)
	}
	if book == nil {
		return nil, fmt.Errorf("book %s: %w", bookID, ErrNotFound)
	}

	chapters, err := reader.ChaptersByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading chapters: %w", err)
	}

	var current *story.Chapter
	if chapterID != "" {
		for _, ch := range chapters {
			if ch.ID == chapterID {
				current = ch
				break
			}
		}
		if current == nil {
			return nil, fmt.Errorf("chapter %s: %w", chapterID, ErrNotFound)
		}
	}

	characters, err := reader.CharactersByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading characters: %w", err)
	}

	settings, err := reader.SettingsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	foreshadows, err := reader.ForeshadowsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading foreshadows: %w", err)
	}

	events, err := reader.EventsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}

	states, err := reader.StatesByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading state history: %w", err)
	}

	nameIndex := make(map[string]string, len(characters)*2)
	for _, c := range characters {
		for _, name := range c.Names() {
			if name == "" {
				continue
			}
			if prev, ok := nameIndex[name]; ok && prev != c.ID {
				logger.Warn("alias collision in name index, keeping last writer",
					"name", name,
					"previous_character", prev,
					"character", c.ID)
			}
			nameIndex[name] = c.ID
		}
	}

	byCategory := make(map[string][]*story.WorldSetting)
	for _, s := range settings {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	summaries := make(map[string]string, len(chapters))
	for _, ch := range chapters {
		if ch.Summary != "" {
			summaries[ch.ID] = ch.Summary
		}
	}

	logger.Debug("snapshot built",
		"book_id", bookID,
		"chapter_id", chapterID,
		"chapters", len(chapters),
		"characters", len(characters),
		"settings", len(settings),
		"foreshadows", len(foreshadows),
		"events", len(events),
		"state_records", len(states))

	return &Snapshot{
		Book:        book,
		Chapters:    chapters,
		Current:     current,
		Characters:  characters,
		NameIndex:   nameIndex,
		Settings:    byCategory,
		Foreshadows: foreshadows,
		Events:      events,
		States:      states,
		Summaries:   summaries,
	}, nil
}
