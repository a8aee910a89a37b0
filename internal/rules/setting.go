package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/HannJia/novel-ai-studio-sub000/internal/agent"
	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
)

// SettingConflict asks the generation capability whether the chapter
// contradicts the established world settings.
type SettingConflict struct {
	review.BaseRule
	gen agent.Generator
}

// NewSettingConflict builds the rule around a generator.
func NewSettingConflict(gen agent.Generator) *SettingConflict {
	return &SettingConflict{
		BaseRule: review.NewBaseRule(
			"setting-conflict",
			"AI check for contradictions with the established world settings",
			review.LevelWarning,
			review.TypeSettingConflict,
			review.WithPriority(210),
			review.WithAI(),
		),
		gen: gen,
	}
}

// Check summarizes the world settings grouped by category, submits one
// prompt with the truncated chapter text and maps parsed findings to
// issues. Skips entirely when the snapshot has no settings.
func (r *SettingConflict) Check(ctx context.Context, snap *review.Snapshot) ([]*review.Issue, error) {
	if snap.Current == nil || len(snap.Settings) == 0 {
		return nil, nil
	}

	prompt := r.buildPrompt(snap)
	result, err := r.gen.Generate(ctx, prompt, agent.Options{MaxTokens: 2000, Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("setting check generation: %w", err)
	}

	var issues []*review.Issue
	for _, f := range parseFindings(result.Content) {
		issues = append(issues, &review.Issue{
			Level:       review.LevelWarning,
			Type:        review.TypeSettingConflict,
			Title:       "Possible setting contradiction",
			Description: f.Problem,
			Location:    &review.Location{Excerpt: f.Location},
			Suggestion:  f.Suggestion,
			Confidence:  f.Confidence,
		})
	}
	return issues, nil
}

func (r *SettingConflict) buildPrompt(snap *review.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are reviewing a novel chapter against the book's established world settings.\n\n")

	categories := make([]string, 0, len(snap.Settings))
	for category := range snap.Settings {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	const maxPerCategory = 15
	for _, category := range categories {
		fmt.Fprintf(&b, "%s:\n", category)
		for i, s := range snap.Settings[category] {
			if i >= maxPerCategory {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Chapter %d text:\n%s\n\n", snap.Current.Order, truncate(snap.Current.Content, chapterTextBudget))
	b.WriteString("Identify places where the chapter contradicts an established setting.\n\n")
	b.WriteString(responseFormat)
	return b.String()
}
