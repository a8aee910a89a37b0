package review_test

import (
	"context"
	"errors"
	"testing"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// memReader is a hand-rolled story.Reader over fixture slices.
type memReader struct {
	book        *story.Book
	chapters    []*story.Chapter
	characters  []*story.Character
	settings    []*story.WorldSetting
	foreshadows []*story.Foreshadow
	events      []*story.Event
	states      []*story.CharacterState
	failWith    error
}

func (r *memReader) BookByID(ctx context.Context, id string) (*story.Book, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.book != nil && r.book.ID == id {
		return r.book, nil
	}
	return nil, nil
}

func (r *memReader) ChaptersByBook(ctx context.Context, bookID string) ([]*story.Chapter, error) {
	return r.chapters, nil
}

func (r *memReader) CharactersByBook(ctx context.Context, bookID string) ([]*story.Character, error) {
	return r.characters, nil
}

func (r *memReader) SettingsByBook(ctx context.Context, bookID string) ([]*story.WorldSetting, error) {
	return r.settings, nil
}

func (r *memReader) ForeshadowsByBook(ctx context.Context, bookID string) ([]*story.Foreshadow, error) {
	return r.foreshadows, nil
}

func (r *memReader) EventsByBook(ctx context.Context, bookID string) ([]*story.Event, error) {
	return r.events, nil
}

func (r *memReader) StatesByBook(ctx context.Context, bookID string) ([]*story.CharacterState, error) {
	return r.states, nil
}

func TestBuildSnapshot(t *testing.T) {
	reader := &memReader{
		book: &story.Book{ID: "b1", Title: "The Hollow Crown"},
		chapters: []*story.Chapter{
			{ID: "c1", BookID: "b1", Order: 1, Content: "one", Summary: "opening"},
			{ID: "c2", BookID: "b1", Order: 2, Content: "two"},
		},
		characters: []*story.Character{
			{ID: "ch1", Name: "Anna", Aliases: []string{"Lady A"}},
			{ID: "ch2", Name: "Bren", Aliases: []string{"Anna"}}, // collides with ch1's name
		},
		settings: []*story.WorldSetting{
			{ID: "s1", Category: story.SettingCategoryGeography, Name: "Harbor City"},
			{ID: "s2", Category: story.SettingCategoryMagic, Name: "Riftfire"},
			{ID: "s3", Category: story.SettingCategoryGeography, Name: "Black Keep"},
		},
	}

	t.Run("scoped to a chapter", func(t *testing.T) {
		snap, err := review.BuildSnapshot(context.Background(), reader, "b1", "c2", nil)
		if err != nil {
			t.Fatalf("BuildSnapshot() error = %v", err)
		}
		if snap.Current == nil || snap.Current.ID != "c2" {
			t.Errorf("Current = %+v, want chapter c2", snap.Current)
		}
		if len(snap.Chapters) != 2 {
			t.Errorf("len(Chapters) = %d, want 2", len(snap.Chapters))
		}
	})

	t.Run("full book has no current chapter", func(t *testing.T) {
		snap, err := review.BuildSnapshot(context.Background(), reader, "b1", "", nil)
		if err != nil {
			t.Fatalf("BuildSnapshot() error = %v", err)
		}
		if snap.Current != nil {
			t.Errorf("Current = %+v, want nil", snap.Current)
		}
	})

	t.Run("alias collisions keep the last writer", func(t *testing.T) {
		snap, err := review.BuildSnapshot(context.Background(), reader, "b1", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		if got := snap.NameIndex["Anna"]; got != "ch2" {
			t.Errorf("NameIndex[Anna] = %q, want ch2 (last writer)", got)
		}
		if got := snap.NameIndex["Lady A"]; got != "ch1" {
			t.Errorf("NameIndex[Lady A] = %q, want ch1", got)
		}
	})

	t.Run("settings grouped by category", func(t *testing.T) {
		snap, err := review.BuildSnapshot(context.Background(), reader, "b1", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		if got := len(snap.Settings[story.SettingCategoryGeography]); got != 2 {
			t.Errorf("geography settings = %d, want 2", got)
		}
		if got := len(snap.Settings[story.SettingCategoryMagic]); got != 1 {
			t.Errorf("magic settings = %d, want 1", got)
		}
	})

	t.Run("summaries indexed by chapter id", func(t *testing.T) {
		snap, err := review.BuildSnapshot(context.Background(), reader, "b1", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		if snap.Summaries["c1"] != "opening" {
			t.Errorf("Summaries[c1] = %q, want %q", snap.Summaries["c1"], "opening")
		}
		if _, ok := snap.Summaries["c2"]; ok {
			t.Error("Summaries[c2] present, want absent")
		}
	})

	t.Run("unknown book is NotFound", func(t *testing.T) {
		_, err := review.BuildSnapshot(context.Background(), reader, "missing", "", nil)
		if !errors.Is(err, review.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown chapter is NotFound", func(t *testing.T) {
		_, err := review.BuildSnapshot(context.Background(), reader, "b1", "missing", nil)
		if !errors.Is(err, review.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("reader failure propagates", func(t *testing.T) {
		broken := &memReader{failWith: errors.New("db down")}
		_, err := review.BuildSnapshot(context.Background(), broken, "b1", "", nil)
		if err == nil || errors.Is(err, review.ErrNotFound) {
			t.Errorf("error = %v, want wrapped reader failure", err)
		}
	})
}

func TestSnapshotWithCurrent(t *testing.T) {
	snap := &review.Snapshot{
		Book:     &story.Book{ID: "b1"},
		Chapters: []*story.Chapter{{ID: "c1", Order: 1}, {ID: "c2", Order: 2}},
	}

	clone := snap.WithCurrent(snap.Chapters[1])
	if clone.Current.ID != "c2" {
		t.Errorf("clone.Current = %v, want c2", clone.Current)
	}
	if snap.Current != nil {
		t.Error("original snapshot mutated")
	}
}
