package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/HannJia/novel-ai-studio-sub000/internal/agent"
	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
)

// PersonalityDeviation asks the generation capability whether characters
// act against their established traits and goals in the current chapter.
type PersonalityDeviation struct {
	review.BaseRule
	gen agent.Generator
}

// NewPersonalityDeviation builds the rule around a generator.
func NewPersonalityDeviation(gen agent.Generator) *PersonalityDeviation {
	return &PersonalityDeviation{
		BaseRule: review.NewBaseRule(
			"personality-deviation",
			"AI check for characters acting against their established personality",
			review.LevelWarning,
			review.TypePersonalityDeviation,
			review.WithPriority(200),
			review.WithAI(),
		),
		gen: gen,
	}
}

// Check builds a bounded character summary plus truncated chapter text,
// submits one prompt and maps the parsed findings to issues. Skips entirely
// when the snapshot has no characters.
func (r *PersonalityDeviation) Check(ctx context.Context, snap *review.Snapshot) ([]*review.Issue, error) {
	if snap.Current == nil || len(snap.Characters) == 0 {
		return nil, nil
	}

	prompt := r.buildPrompt(snap)
	result, err := r.gen.Generate(ctx, prompt, agent.Options{MaxTokens: 2000, Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("personality check generation: %w", err)
	}

	var issues []*review.Issue
	for _, f := range parseFindings(result.Content) {
		issues = append(issues, &review.Issue{
			Level:       review.LevelWarning,
			Type:        review.TypePersonalityDeviation,
			Title:       "Possible personality deviation",
			Description: f.Problem,
			Location:    &review.Location{Excerpt: f.Location},
			Suggestion:  f.Suggestion,
			Confidence:  f.Confidence,
		})
	}
	return issues, nil
}

func (r *PersonalityDeviation) buildPrompt(snap *review.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are reviewing a novel chapter for personality consistency.\n\n")
	b.WriteString("Established characters:\n")

	const maxCharacters = 20
	for i, c := range snap.Characters {
		if i >= maxCharacters {
			break
		}
		b.WriteString("- ")
		b.WriteString(c.Name)
		if len(c.Aliases) > 0 {
			fmt.Fprintf(&b, " (also called %s)", strings.Join(c.Aliases, ", "))
		}
		if len(c.Traits) > 0 {
			fmt.Fprintf(&b, "; traits: %s", strings.Join(c.Traits, ", "))
		}
		if len(c.Goals) > 0 {
			fmt.Fprintf(&b, "; goals: %s", strings.Join(c.Goals, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nChapter %d text:\n%s\n\n", snap.Current.Order, truncate(snap.Current.Content, chapterTextBudget))
	b.WriteString("Identify places where a character speaks or acts against their established traits or goals.\n\n")
	b.WriteString(responseFormat)
	return b.String()
}
