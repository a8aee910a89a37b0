package rules

import (
	"context"
	"fmt"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// Importance-scaled elapsed-chapter thresholds for nagging about an
// unresolved foreshadow.
const (
	majorWarnAfter    = 30
	majorSuggestAfter = 15
	minorWarnAfter    = 50
	minorSuggestAfter = 30
)

// ForgottenForeshadow reminds the author of planted foreshadows that have
// gone too long without resolution.
type ForgottenForeshadow struct {
	review.BaseRule
}

// NewForgottenForeshadow builds the rule.
func NewForgottenForeshadow() *ForgottenForeshadow {
	return &ForgottenForeshadow{
		BaseRule: review.NewBaseRule(
			"forgotten-foreshadow",
			"Flags planted foreshadows left unresolved for too many chapters",
			review.LevelWarning,
			review.TypeForgottenForeshadow,
			review.WithPriority(50),
		),
	}
}

// Check computes chapters elapsed since planting for every open foreshadow
// and applies the importance-scaled thresholds. Major foreshadows warn at
// 30 chapters (suggestion at 15); minor ones warn at 50 (suggestion at 30).
func (r *ForgottenForeshadow) Check(ctx context.Context, snap *review.Snapshot) ([]*review.Issue, error) {
	if snap.Current == nil {
		return nil, nil
	}

	var issues []*review.Issue
	for _, f := range snap.Foreshadows {
		if !f.Open() {
			continue
		}

		elapsed := snap.Current.Order - f.PlantedChapter
		level := foreshadowLevel(f.Importance, elapsed)
		if level == "" {
			continue
		}

		issues = append(issues, &review.Issue{
			Level:       level,
			Type:        review.TypeForgottenForeshadow,
			Title:       fmt.Sprintf("Foreshadow %q still unresolved", f.Title),
			Description: fmt.Sprintf("The %s foreshadow %q was planted in chapter %d and remains unresolved %d chapters later.", f.Importance, f.Title, f.PlantedChapter, elapsed),
			Suggestion:  fmt.Sprintf("Resolve %q soon, or mark it abandoned if the thread is dropped.", f.Title),
			Reference: &review.Reference{
				ChapterOrder: f.PlantedChapter,
				Detail:       fmt.Sprintf("foreshadow planted in chapter %d", f.PlantedChapter),
			},
			Confidence: 0.9,
		})
	}
	return issues, nil
}

func foreshadowLevel(importance string, elapsed int) review.Level {
	warnAfter, suggestAfter := minorWarnAfter, minorSuggestAfter
	if importance == story.ImportanceMajor {
		warnAfter, suggestAfter = majorWarnAfter, majorSuggestAfter
	}

	switch {
	case elapsed >= warnAfter:
		return review.LevelWarning
	case elapsed >= suggestAfter:
		return review.LevelSuggestion
	default:
		return ""
	}
}
