package rules

import (
	"context"
	"testing"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

func timelineSnapshot(chapterOrder int, text string) *review.Snapshot {
	return &review.Snapshot{
		Book:    &story.Book{ID: "b1"},
		Current: &story.Chapter{ID: "cur", BookID: "b1", Order: chapterOrder, Content: text},
		Events: []*story.Event{
			{ID: "e1", Sequence: 1, ChapterOrder: 1, Title: "the Fall of Keld"},
			{ID: "e2", Sequence: 2, ChapterOrder: 2, Title: "the Siege of Bren"},
			{ID: "e3", Sequence: 3, ChapterOrder: 9, Title: "the Last Accord"},
		},
	}
}

func TestTimelineConflict(t *testing.T) {
	rule := NewTimelineConflict()

	t.Run("narrated event framed as upcoming", func(t *testing.T) {
		text := "They spoke of what would come later: the Fall of Keld would change everything."
		issues, err := rule.Check(context.Background(), timelineSnapshot(5, text))
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if len(issues) != 1 {
			t.Fatalf("got %d issues, want 1", len(issues))
		}
		issue := issues[0]
		if issue.Type != review.TypeTimelineConflict || issue.Confidence != 0.85 {
			t.Errorf("issue = %+v", issue)
		}
		if issue.Reference == nil || issue.Reference.EventID != "e1" {
			t.Errorf("Reference = %+v, want e1", issue.Reference)
		}
	})

	t.Run("paragraph ordering against the timeline", func(t *testing.T) {
		text := "Everyone knew the Siege of Bren came before the Fall of Keld, or so the ballads claimed."
		issues, err := rule.Check(context.Background(), timelineSnapshot(5, text))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 1 {
			t.Fatalf("got %d issues, want 1, got %+v", len(issues), issues)
		}
	})

	t.Run("correct ordering passes", func(t *testing.T) {
		text := "First came the Fall of Keld, then the Siege of Bren."
		issues, err := rule.Check(context.Background(), timelineSnapshot(5, text))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 0 {
			t.Errorf("got %d issues, want 0, got %+v", len(issues), issues)
		}
	})

	t.Run("future events are out of scope", func(t *testing.T) {
		text := "Nothing hinted yet at the Last Accord."
		issues, err := rule.Check(context.Background(), timelineSnapshot(5, text))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 0 {
			t.Errorf("got %d issues, want 0 for a not-yet-narrated event", len(issues))
		}
	})

	t.Run("no prior events means no findings", func(t *testing.T) {
		snap := timelineSnapshot(1, "Anything can be said here after everything.")
		issues, err := rule.Check(context.Background(), snap)
		if err != nil || len(issues) != 0 {
			t.Errorf("issues = %v, err = %v", issues, err)
		}
	})
}
