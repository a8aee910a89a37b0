package rules

import (
	"context"
	"strings"
	"testing"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

func locationSnapshot(text string, events []*story.Event) *review.Snapshot {
	return &review.Snapshot{
		Book:    &story.Book{ID: "b1"},
		Current: &story.Chapter{ID: "cur", BookID: "b1", Order: 2, Content: text},
		Characters: []*story.Character{
			{ID: "mora", BookID: "b1", Name: "Mora"},
		},
		Settings: map[string][]*story.WorldSetting{
			story.SettingCategoryGeography: {
				{ID: "s1", Category: story.SettingCategoryGeography, Name: "Harbor City"},
				{ID: "s2", Category: story.SettingCategoryGeography, Name: "Black Keep"},
			},
		},
		Events: events,
	}
}

func TestLocationConflict(t *testing.T) {
	rule := NewLocationConflict()

	t.Run("location jump with no movement", func(t *testing.T) {
		text := strings.Join([]string{
			"Mora waited in Harbor City for the signal.",
			"The bells rang twice.",
			"Mora lit the beacon above Black Keep.",
		}, "\n")
		issues, err := rule.Check(context.Background(), locationSnapshot(text, nil))
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if len(issues) != 1 {
			t.Fatalf("got %d issues, want 1, got %+v", len(issues), issues)
		}
		issue := issues[0]
		if issue.Type != review.TypeLocationConflict || issue.Confidence != 0.8 {
			t.Errorf("issue = %+v", issue)
		}
		if !strings.Contains(issue.Title, "jumps") {
			t.Errorf("Title = %q, want a location jump", issue.Title)
		}
	})

	t.Run("movement marker excuses the change", func(t *testing.T) {
		text := strings.Join([]string{
			"Mora waited in Harbor City for the signal.",
			"She rode through the night and reached the gates.",
			"Mora lit the beacon above Black Keep.",
		}, "\n")
		issues, err := rule.Check(context.Background(), locationSnapshot(text, nil))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 0 {
			t.Errorf("got %d issues, want 0 with movement narrated, got %+v", len(issues), issues)
		}
	})

	t.Run("simultaneity marker reads as impossibility", func(t *testing.T) {
		text := strings.Join([]string{
			"Mora waited in Harbor City for the signal.",
			"Meanwhile Mora kept watch at Black Keep.",
		}, "\n")
		issues, err := rule.Check(context.Background(), locationSnapshot(text, nil))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 1 {
			t.Fatalf("got %d issues, want 1, got %+v", len(issues), issues)
		}
		if !strings.Contains(issues[0].Title, "at the same time") {
			t.Errorf("Title = %q, want simultaneity phrasing", issues[0].Title)
		}
	})

	t.Run("mentions outside the window are not compared", func(t *testing.T) {
		text := strings.Join([]string{
			"Mora waited in Harbor City for the signal.",
			"The bells rang twice.",
			"A cold wind came down from the hills.",
			"The garrison slept uneasily.",
			"Mora lit the beacon above Black Keep.",
		}, "\n")
		issues, err := rule.Check(context.Background(), locationSnapshot(text, nil))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 0 {
			t.Errorf("got %d issues, want 0 beyond the window, got %+v", len(issues), issues)
		}
	})

	t.Run("cross-chapter discontinuity", func(t *testing.T) {
		events := []*story.Event{
			{ID: "e1", Sequence: 1, ChapterOrder: 1, Title: "the landing", Location: "Harbor City", Characters: []string{"mora"}},
		}
		text := "Mora sharpened her blade inside Black Keep.\nThe fires burned low."
		issues, err := rule.Check(context.Background(), locationSnapshot(text, events))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 1 {
			t.Fatalf("got %d issues, want 1, got %+v", len(issues), issues)
		}
		if !strings.Contains(issues[0].Title, "between chapters") {
			t.Errorf("Title = %q, want cross-chapter phrasing", issues[0].Title)
		}
	})

	t.Run("cross-chapter change with opening movement is fine", func(t *testing.T) {
		events := []*story.Event{
			{ID: "e1", Sequence: 1, ChapterOrder: 1, Title: "the landing", Location: "Harbor City", Characters: []string{"mora"}},
		}
		text := "Mora arrived at Black Keep before dawn.\nThe fires burned low."
		issues, err := rule.Check(context.Background(), locationSnapshot(text, events))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 0 {
			t.Errorf("got %d issues, want 0, got %+v", len(issues), issues)
		}
	})
}

func TestExtractLocation(t *testing.T) {
	known := []string{"Harbor City"}

	t.Run("known locations win over the pattern", func(t *testing.T) {
		got := extractLocation("Mora went to the Old Mill near Harbor City.", known)
		if got != "Harbor City" {
			t.Errorf("extractLocation() = %q, want Harbor City", got)
		}
	})

	t.Run("fallback pattern on locative markers", func(t *testing.T) {
		got := extractLocation("Mora arrived at the Old Mill after dusk.", nil)
		if got != "Old Mill" {
			t.Errorf("extractLocation() = %q, want Old Mill", got)
		}
	})

	t.Run("no location yields empty", func(t *testing.T) {
		if got := extractLocation("Mora slept badly.", nil); got != "" {
			t.Errorf("extractLocation() = %q, want empty", got)
		}
	})
}
