// Package rules contains the consistency rules the review engine ships
// with: five heuristic text/pattern detectors and two AI-assisted ones.
// Rules are constructed explicitly and registered at process start.
package rules

import "strings"

// splitParagraphs splits chapter text on blank-line or newline boundaries,
// dropping empty segments. Paragraph indexes reported in issues are indexes
// into this slice.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// indexAll returns every occurrence of sub in text, non-overlapping.
func indexAll(text, sub string) []int {
	if sub == "" {
		return nil
	}
	var positions []int
	offset := 0
	for {
		i := strings.Index(text[offset:], sub)
		if i < 0 {
			return positions
		}
		positions = append(positions, offset+i)
		offset += i + len(sub)
	}
}

// windowAround returns the slice of text covering radius characters on each
// side of [start, end), clamped to the text bounds.
func windowAround(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

// containsAnyFold reports whether text contains any of the markers,
// case-insensitively.
func containsAnyFold(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// excerptAt returns a short excerpt of text centered on [start, end).
func excerptAt(text string, start, end int) string {
	const radius = 40
	excerpt := windowAround(text, start, end, radius)
	return strings.TrimSpace(excerpt)
}

// paragraphOf returns the index of the paragraph containing byte offset pos
// of the original text, or 0 if it cannot be located.
func paragraphOf(text string, paragraphs []string, pos int) int {
	if pos < 0 || pos > len(text) {
		return 0
	}
	offset := 0
	for i, p := range paragraphs {
		idx := strings.Index(text[offset:], p)
		if idx < 0 {
			continue
		}
		start := offset + idx
		end := start + len(p)
		if pos >= start && pos < end {
			return i
		}
		offset = end
	}
	return 0
}
