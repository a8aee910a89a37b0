package rules

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// actionVerbs are the verbs that make a dead character's name reading as an
// active subject suspicious.
var actionVerbs = []string{
	"said", "says", "replied", "asked", "answered", "shouted", "whispered",
	"spoke", "muttered", "laughed", "smiled", "nodded", "frowned",
	"walked", "ran", "stood", "sat", "turned", "grabbed", "looked",
	"stepped", "raised", "opened",
}

// flashbackMarkers suppress a death finding when they appear near the match:
// the character is being remembered, not acting.
var flashbackMarkers = []string{
	"remembered", "recalled", "in a dream", "dreamed", "dreamt",
	"flashback", "memory", "memories", "years ago", "back then",
	"used to", "had once",
}

// DeathConflict flags characters recorded as dead in an earlier chapter who
// nevertheless speak or act in the current one.
type DeathConflict struct {
	review.BaseRule
}

// NewDeathConflict builds the rule.
func NewDeathConflict() *DeathConflict {
	return &DeathConflict{
		BaseRule: review.NewBaseRule(
			"death-conflict",
			"Detects dead characters speaking or acting outside flashbacks",
			review.LevelError,
			review.TypeDeathConflict,
			review.WithPriority(10),
		),
	}
}

// Check scans the current chapter for each dead character's names followed
// by an action or speech verb, suppressing matches inside flashback windows.
// At most one issue per character is emitted, on the first match.
func (r *DeathConflict) Check(ctx context.Context, snap *review.Snapshot) ([]*review.Issue, error) {
	if snap.Current == nil {
		return nil, nil
	}

	text := snap.Current.Content
	paragraphs := splitParagraphs(text)

	var issues []*review.Issue
	for characterID, deathOrder := range deadBefore(snap.States, snap.Current.Order) {
		character := snap.CharacterByID(characterID)
		if character == nil {
			continue
		}

		if issue := r.findViolation(text, paragraphs, character, deathOrder); issue != nil {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// deadBefore derives the characters dead at the start of chapter order:
// those whose most recent life-status record strictly before order says
// isAlive=false. States arrive ordered by (chapter order, creation order).
func deadBefore(states []*story.CharacterState, order int) map[string]int {
	dead := make(map[string]int)
	for _, st := range states {
		if st.IsAlive == nil || st.ChapterOrder >= order {
			continue
		}
		if *st.IsAlive {
			delete(dead, st.CharacterID)
		} else {
			dead[st.CharacterID] = st.ChapterOrder
		}
	}
	return dead
}

func (r *DeathConflict) findViolation(text string, paragraphs []string, character *story.Character, deathOrder int) *review.Issue {
	for _, name := range character.Names() {
		for _, pos := range indexAll(text, name) {
			end := pos + len(name)
			if !followedByActionVerb(text, end) {
				continue
			}
			if containsAnyFold(windowAround(text, pos, end, 100), flashbackMarkers) {
				continue
			}

			return &review.Issue{
				Level:       review.LevelError,
				Type:        review.TypeDeathConflict,
				Title:       fmt.Sprintf("Dead character %q is active", character.Name),
				Description: fmt.Sprintf("%s was recorded dead in chapter %d but speaks or acts here as %q.", character.Name, deathOrder, name),
				Location: &review.Location{
					Paragraph: paragraphOf(text, paragraphs, pos),
					Excerpt:   excerptAt(text, pos, end),
				},
				Suggestion: fmt.Sprintf("Confirm whether %s is meant to be alive here, or frame the scene as a flashback or memory.", character.Name),
				Reference: &review.Reference{
					ChapterOrder: deathOrder,
					Detail:       fmt.Sprintf("%s recorded dead in chapter %d", character.Name, deathOrder),
				},
				Confidence: 0.95,
			}
		}
	}
	return nil
}

// followedByActionVerb reports whether the text immediately after the name
// reads as the name being the subject of one of the action verbs.
func followedByActionVerb(text string, from int) bool {
	rest := text[from:]
	rest = strings.TrimLeft(rest, " \t")
	for _, verb := range actionVerbs {
		if strings.HasPrefix(rest, verb) {
			// Verb must end at a word boundary.
			tail := rest[len(verb):]
			if tail == "" {
				return true
			}
			r := rune(tail[0])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}
