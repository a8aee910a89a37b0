package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// afterMarkers read as "this has not happened yet" when placed next to an
// event that the canonical timeline says already happened.
var afterMarkers = []string{
	"after", "later", "soon", "eventually", "not yet", "would come",
	"was to come", "upcoming",
}

// orderMarkers signal the prose is making an ordering claim between two
// events named in the same paragraph.
var orderMarkers = []string{
	"before", "after", "then", "earlier", "later", "first", "next",
	"followed", "preceded",
}

// markerAdjacency is how close (in characters) an after/later marker must
// sit before an event title to count as adjacent.
const markerAdjacency = 30

// TimelineConflict flags chapter text that contradicts the canonical order
// of already-narrated timeline events.
type TimelineConflict struct {
	review.BaseRule
}

// NewTimelineConflict builds the rule.
func NewTimelineConflict() *TimelineConflict {
	return &TimelineConflict{
		BaseRule: review.NewBaseRule(
			"timeline-conflict",
			"Detects contradictions with the canonical timeline of earlier events",
			review.LevelError,
			review.TypeTimelineConflict,
			review.WithPriority(30),
		),
	}
}

// Check applies two detections over events narrated strictly before the
// current chapter, in canonical timeline order: an earlier event framed as
// still to come, and two earlier events named in one paragraph in an order
// the prose asserts but the timeline contradicts.
func (r *TimelineConflict) Check(ctx context.Context, snap *review.Snapshot) ([]*review.Issue, error) {
	if snap.Current == nil {
		return nil, nil
	}

	text := snap.Current.Content
	paragraphs := splitParagraphs(text)

	prior := priorEvents(snap.Events, snap.Current.Order)
	if len(prior) == 0 {
		return nil, nil
	}

	var issues []*review.Issue
	issues = append(issues, r.futureFraming(text, paragraphs, prior)...)
	issues = append(issues, r.pairwiseOrder(paragraphs, prior)...)
	return issues, nil
}

// priorEvents returns events with chapter order strictly before order,
// sorted by canonical sequence.
func priorEvents(events []*story.Event, order int) []*story.Event {
	var prior []*story.Event
	for _, e := range events {
		if e.ChapterOrder < order && e.Title != "" {
			prior = append(prior, e)
		}
	}
	sort.SliceStable(prior, func(i, j int) bool { return prior[i].Sequence < prior[j].Sequence })
	return prior
}

// futureFraming flags an already-narrated event whose title appears right
// after an "after/later" marker, reading as if it had not happened yet.
func (r *TimelineConflict) futureFraming(text string, paragraphs []string, prior []*story.Event) []*review.Issue {
	var issues []*review.Issue
	for _, event := range prior {
		for _, pos := range indexAll(text, event.Title) {
			lo := pos - markerAdjacency
			if lo < 0 {
				lo = 0
			}
			if !containsAnyFold(text[lo:pos], afterMarkers) {
				continue
			}

			issues = append(issues, &review.Issue{
				Level:       review.LevelError,
				Type:        review.TypeTimelineConflict,
				Title:       fmt.Sprintf("Event %q framed as still to come", event.Title),
				Description: fmt.Sprintf("%q was narrated in chapter %d, but this passage frames it as not yet having happened.", event.Title, event.ChapterOrder),
				Location: &review.Location{
					Paragraph: paragraphOf(text, paragraphs, pos),
					Excerpt:   excerptAt(text, pos, pos+len(event.Title)),
				},
				Suggestion: "Check the chronology of this passage against the established timeline.",
				Reference: &review.Reference{
					ChapterOrder: event.ChapterOrder,
					EventID:      event.ID,
					Detail:       fmt.Sprintf("%q narrated in chapter %d", event.Title, event.ChapterOrder),
				},
				Confidence: 0.85,
			})
			break
		}
	}
	return issues
}

// pairwiseOrder flags two earlier events named in the same paragraph whose
// textual order, under an explicit before/after claim, disagrees with their
// canonical timeline order.
func (r *TimelineConflict) pairwiseOrder(paragraphs []string, prior []*story.Event) []*review.Issue {
	var issues []*review.Issue
	for paraIdx, paragraph := range paragraphs {
		type mention struct {
			event *story.Event
			pos   int
		}
		var mentions []mention
		for _, event := range prior {
			if pos := strings.Index(paragraph, event.Title); pos >= 0 {
				mentions = append(mentions, mention{event: event, pos: pos})
			}
		}
		if len(mentions) < 2 {
			continue
		}
		sort.Slice(mentions, func(i, j int) bool { return mentions[i].pos < mentions[j].pos })

		for i := 0; i < len(mentions); i++ {
			for j := i + 1; j < len(mentions); j++ {
				first, second := mentions[i], mentions[j]
				if first.event.Sequence <= second.event.Sequence {
					continue
				}
				between := paragraph[first.pos+len(first.event.Title) : second.pos]
				if !containsAnyFold(between, orderMarkers) {
					continue
				}

				issues = append(issues, &review.Issue{
					Level: review.LevelError,
					Type:  review.TypeTimelineConflict,
					Title: "Events ordered against the timeline",
					Description: fmt.Sprintf("%q is mentioned before %q with an ordering claim between them, but the timeline places %q first.",
						first.event.Title, second.event.Title, second.event.Title),
					Location: &review.Location{
						Paragraph: paraIdx,
						Excerpt:   excerptAt(paragraph, first.pos, second.pos+len(second.event.Title)),
					},
					Suggestion: "Swap the order of the events or drop the explicit ordering claim.",
					Reference: &review.Reference{
						ChapterOrder: second.event.ChapterOrder,
						EventID:      second.event.ID,
						Detail:       fmt.Sprintf("timeline sequence: %q (%d) precedes %q (%d)", second.event.Title, second.event.Sequence, first.event.Title, first.event.Sequence),
					},
					Confidence: 0.85,
				})
			}
		}
	}
	return issues
}
