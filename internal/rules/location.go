package rules

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// movementMarkers excuse a location change between nearby paragraphs.
var movementMarkers = []string{
	"arrived", "left", "traveled", "travelled", "rode", "walked to",
	"ran to", "returned", "departed", "set off", "headed", "reached",
	"flew", "sailed", "marched",
}

// simultaneityMarkers turn a close-range location mismatch into a
// same-moment impossibility rather than a jump.
var simultaneityMarkers = []string{
	"meanwhile", "at the same time", "at that moment", "at that very moment",
	"simultaneously", "elsewhere",
}

// locationPattern is the fallback extractor: a locative preposition
// followed by a capitalized place name.
var locationPattern = regexp.MustCompile(`(?:at|in|to|toward|towards|inside|arrived at|reached) (?:the )?([A-Z][A-Za-z']+(?: [A-Z][A-Za-z']+)*)`)

// locationWindow is how many paragraphs apart two mentions may sit and
// still be compared.
const locationWindow = 2

// LocationConflict flags a character appearing in two different places
// without any narrated movement between them, both within a chapter and
// across the chapter boundary.
type LocationConflict struct {
	review.BaseRule
}

// NewLocationConflict builds the rule.
func NewLocationConflict() *LocationConflict {
	return &LocationConflict{
		BaseRule: review.NewBaseRule(
			"location-conflict",
			"Detects characters changing place with no narrated movement",
			review.LevelError,
			review.TypeLocationConflict,
			review.WithPriority(40),
		),
	}
}

// locationMention ties a paragraph to the place a character is said to be.
type locationMention struct {
	paragraph int
	location  string
}

// Check extracts per-character location mentions paragraph by paragraph,
// preferring the known-locations set from the world settings over the
// locative fallback pattern, then compares nearby mentions plus the prior
// chapter's last known location against the chapter opening.
func (r *LocationConflict) Check(ctx context.Context, snap *review.Snapshot) ([]*review.Issue, error) {
	if snap.Current == nil {
		return nil, nil
	}

	paragraphs := splitParagraphs(snap.Current.Content)
	known := knownLocations(snap)

	var issues []*review.Issue
	for _, character := range snap.Characters {
		mentions := extractMentions(paragraphs, character, known)
		issues = append(issues, r.withinChapter(paragraphs, character, mentions)...)
		issues = append(issues, r.acrossChapters(snap, paragraphs, character, mentions)...)
	}
	return issues, nil
}

// knownLocations collects place names from the geography and location
// setting categories.
func knownLocations(snap *review.Snapshot) []string {
	var locations []string
	for _, category := range []string{story.SettingCategoryGeography, story.SettingCategoryLocation} {
		for _, s := range snap.Settings[category] {
			if s.Name != "" {
				locations = append(locations, s.Name)
			}
		}
	}
	// Longer names first so "East Harbor Gate" wins over "East Harbor".
	sort.Slice(locations, func(i, j int) bool { return len(locations[i]) > len(locations[j]) })
	return locations
}

// extractMentions finds, for each paragraph naming the character, the place
// that paragraph puts the character in.
func extractMentions(paragraphs []string, character *story.Character, known []string) []locationMention {
	var mentions []locationMention
	for i, paragraph := range paragraphs {
		if !namesCharacter(paragraph, character) {
			continue
		}
		if loc := extractLocation(paragraph, known); loc != "" {
			mentions = append(mentions, locationMention{paragraph: i, location: loc})
		}
	}
	return mentions
}

func namesCharacter(paragraph string, character *story.Character) bool {
	for _, name := range character.Names() {
		if name != "" && strings.Contains(paragraph, name) {
			return true
		}
	}
	return false
}

// extractLocation prefers a known location named in the paragraph and falls
// back to the locative pattern.
func extractLocation(paragraph string, known []string) string {
	for _, loc := range known {
		if strings.Contains(paragraph, loc) {
			return loc
		}
	}
	if m := locationPattern.FindStringSubmatch(paragraph); m != nil {
		return m[1]
	}
	return ""
}

// withinChapter compares successive mentions no more than locationWindow
// paragraphs apart.
func (r *LocationConflict) withinChapter(paragraphs []string, character *story.Character, mentions []locationMention) []*review.Issue {
	var issues []*review.Issue
	for i := 1; i < len(mentions); i++ {
		prev, cur := mentions[i-1], mentions[i]
		if cur.paragraph-prev.paragraph > locationWindow || prev.location == cur.location {
			continue
		}
		if movementBetween(paragraphs, prev.paragraph, cur.paragraph) {
			continue
		}

		span := strings.Join(paragraphs[prev.paragraph:cur.paragraph+1], "\n")
		title := fmt.Sprintf("%s jumps from %s to %s", character.Name, prev.location, cur.location)
		description := fmt.Sprintf("%s is placed at %q and then at %q within %d paragraphs with no movement narrated.",
			character.Name, prev.location, cur.location, cur.paragraph-prev.paragraph)
		if containsAnyFold(span, simultaneityMarkers) {
			title = fmt.Sprintf("%s is in %s and %s at the same time", character.Name, prev.location, cur.location)
			description = fmt.Sprintf("%s appears to be at %q and %q in the same moment.", character.Name, prev.location, cur.location)
		}

		issues = append(issues, &review.Issue{
			Level:       review.LevelError,
			Type:        review.TypeLocationConflict,
			Title:       title,
			Description: description,
			Location: &review.Location{
				Paragraph: cur.paragraph,
				Excerpt:   clip(paragraphs[cur.paragraph], 80),
			},
			Suggestion: fmt.Sprintf("Narrate how %s gets from %s to %s, or fix the place names.", character.Name, prev.location, cur.location),
			Reference: &review.Reference{
				Detail: fmt.Sprintf("previous placement: %s (paragraph %d)", prev.location, prev.paragraph),
			},
			Confidence: 0.8,
		})
	}
	return issues
}

// acrossChapters compares the character's last known location from the
// event history of earlier chapters against the first mention here.
func (r *LocationConflict) acrossChapters(snap *review.Snapshot, paragraphs []string, character *story.Character, mentions []locationMention) []*review.Issue {
	if len(mentions) == 0 || len(paragraphs) == 0 {
		return nil
	}

	last := lastKnownLocation(snap.Events, character, snap.Current.Order)
	first := mentions[0]
	if last == "" || last == first.location {
		return nil
	}
	if containsAnyFold(paragraphs[0], movementMarkers) {
		return nil
	}

	return []*review.Issue{{
		Level:       review.LevelError,
		Type:        review.TypeLocationConflict,
		Title:       fmt.Sprintf("%s moved between chapters without transition", character.Name),
		Description: fmt.Sprintf("%s was last placed at %q before this chapter but opens here at %q with no movement narrated.", character.Name, last, first.location),
		Location: &review.Location{
			Paragraph: first.paragraph,
			Excerpt:   clip(paragraphs[first.paragraph], 80),
		},
		Suggestion: fmt.Sprintf("Open with %s traveling from %s, or adjust the earlier chapter's ending.", character.Name, last),
		Reference: &review.Reference{
			ChapterOrder: snap.Current.Order - 1,
			Detail:       fmt.Sprintf("last known location: %s", last),
		},
		Confidence: 0.8,
	}}
}

// lastKnownLocation walks the event history of chapters before order and
// returns the location of the latest event involving the character.
func lastKnownLocation(events []*story.Event, character *story.Character, order int) string {
	bestSeq := -1
	location := ""
	for _, e := range events {
		if e.ChapterOrder >= order || e.Location == "" {
			continue
		}
		if !eventInvolves(e, character) {
			continue
		}
		if e.Sequence > bestSeq {
			bestSeq = e.Sequence
			location = e.Location
		}
	}
	return location
}

func eventInvolves(e *story.Event, character *story.Character) bool {
	for _, ref := range e.Characters {
		if ref == character.ID || ref == character.Name {
			return true
		}
	}
	return false
}

// movementBetween checks the inclusive paragraph range for any movement
// marker.
func movementBetween(paragraphs []string, from, to int) bool {
	for i := from; i <= to && i < len(paragraphs); i++ {
		if containsAnyFold(paragraphs[i], movementMarkers) {
			return true
		}
	}
	return false
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
