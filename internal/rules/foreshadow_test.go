package rules

import (
	"context"
	"testing"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

func foreshadowSnapshot(currentOrder int, foreshadows ...*story.Foreshadow) *review.Snapshot {
	return &review.Snapshot{
		Book:        &story.Book{ID: "b1"},
		Current:     &story.Chapter{ID: "cur", BookID: "b1", Order: currentOrder, Content: "text"},
		Foreshadows: foreshadows,
	}
}

func TestForgottenForeshadow(t *testing.T) {
	rule := NewForgottenForeshadow()

	major := &story.Foreshadow{
		ID: "f1", Title: "the sealed letter", Importance: story.ImportanceMajor,
		Status: story.ForeshadowPlanted, PlantedChapter: 1,
	}

	cases := []struct {
		name         string
		currentOrder int
		want         review.Level // "" means no issue
	}{
		{"major warns at 31 chapters elapsed", 32, review.LevelWarning},
		{"major suggests at 19 chapters elapsed", 20, review.LevelSuggestion},
		{"major quiet at 9 chapters elapsed", 10, ""},
		{"major warns exactly at threshold", 31, review.LevelWarning},
		{"major suggests exactly at threshold", 16, review.LevelSuggestion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues, err := rule.Check(context.Background(), foreshadowSnapshot(tc.currentOrder, major))
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if tc.want == "" {
				if len(issues) != 0 {
					t.Errorf("got %d issues, want 0", len(issues))
				}
				return
			}
			if len(issues) != 1 {
				t.Fatalf("got %d issues, want 1", len(issues))
			}
			if issues[0].Level != tc.want {
				t.Errorf("Level = %s, want %s", issues[0].Level, tc.want)
			}
			if issues[0].Confidence != 0.9 {
				t.Errorf("Confidence = %v, want 0.9", issues[0].Confidence)
			}
		})
	}

	t.Run("minor thresholds are looser", func(t *testing.T) {
		minor := &story.Foreshadow{
			ID: "f2", Title: "the crooked coin", Importance: story.ImportanceMinor,
			Status: story.ForeshadowPlanted, PlantedChapter: 1,
		}

		issues, _ := rule.Check(context.Background(), foreshadowSnapshot(32, minor))
		if len(issues) != 1 || issues[0].Level != review.LevelSuggestion {
			t.Errorf("minor at 31 elapsed = %+v, want one suggestion", issues)
		}

		issues, _ = rule.Check(context.Background(), foreshadowSnapshot(52, minor))
		if len(issues) != 1 || issues[0].Level != review.LevelWarning {
			t.Errorf("minor at 51 elapsed = %+v, want one warning", issues)
		}
	})

	t.Run("resolved and abandoned foreshadows are ignored", func(t *testing.T) {
		resolved := &story.Foreshadow{ID: "f3", Title: "done", Importance: story.ImportanceMajor, Status: story.ForeshadowResolved, PlantedChapter: 1}
		abandoned := &story.Foreshadow{ID: "f4", Title: "dropped", Importance: story.ImportanceMajor, Status: story.ForeshadowAbandoned, PlantedChapter: 1}

		issues, err := rule.Check(context.Background(), foreshadowSnapshot(60, resolved, abandoned))
		if err != nil {
			t.Fatal(err)
		}
		if len(issues) != 0 {
			t.Errorf("got %d issues, want 0", len(issues))
		}
	})
}
