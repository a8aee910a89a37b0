package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
)

// mixedUsageDistance is how close two different names for the same
// character must appear before the mix reads as confusing.
const mixedUsageDistance = 100

// NameInconsistency flags chapters that switch between a character's
// primary name and aliases in close proximity.
type NameInconsistency struct {
	review.BaseRule
}

// NewNameInconsistency builds the rule.
func NewNameInconsistency() *NameInconsistency {
	return &NameInconsistency{
		BaseRule: review.NewBaseRule(
			"name-inconsistency",
			"Detects confusing mixed usage of a character's names and aliases",
			review.LevelError,
			review.TypeNameInconsistency,
			review.WithPriority(20),
		),
	}
}

// Check counts occurrences of each name variant per character; when two or
// more distinct variants are used and any cross-variant pair of occurrences
// lies within 100 characters, a mixed-usage issue is emitted.
func (r *NameInconsistency) Check(ctx context.Context, snap *review.Snapshot) ([]*review.Issue, error) {
	if snap.Current == nil {
		return nil, nil
	}

	text := snap.Current.Content
	paragraphs := splitParagraphs(text)

	var issues []*review.Issue
	for _, character := range snap.Characters {
		if len(character.Aliases) == 0 {
			continue
		}

		used := make(map[string][]int)
		for _, name := range character.Names() {
			if positions := indexAll(text, name); len(positions) > 0 {
				used[name] = positions
			}
		}
		if len(used) < 2 {
			continue
		}

		pos, ok := closestMixedPair(used)
		if !ok {
			continue
		}

		names := make([]string, 0, len(used))
		for name := range used {
			names = append(names, name)
		}
		sort.Strings(names)

		issues = append(issues, &review.Issue{
			Level:       review.LevelError,
			Type:        review.TypeNameInconsistency,
			Title:       fmt.Sprintf("Mixed names for %q", character.Name),
			Description: fmt.Sprintf("The chapter refers to the same character as %s within %d characters, which readers may take for different people.", strings.Join(quoteAll(names), ", "), mixedUsageDistance),
			Location: &review.Location{
				Paragraph: paragraphOf(text, paragraphs, pos),
				Excerpt:   excerptAt(text, pos, pos),
			},
			Suggestion: fmt.Sprintf("Stick to one name for %s within a scene, or make the alias switch explicit.", character.Name),
			Confidence: 0.8,
		})
	}
	return issues, nil
}

// closestMixedPair looks for two occurrences of different name variants
// within mixedUsageDistance of each other and returns the position of the
// earlier one.
func closestMixedPair(used map[string][]int) (int, bool) {
	type occurrence struct {
		name string
		pos  int
	}
	var all []occurrence
	for name, positions := range used {
		for _, pos := range positions {
			all = append(all, occurrence{name: name, pos: pos})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].pos < all[j].pos })

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.name != cur.name && cur.pos-prev.pos <= mixedUsageDistance {
			return prev.pos, true
		}
	}
	return 0, false
}

func quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return quoted
}
