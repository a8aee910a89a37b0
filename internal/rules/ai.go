package rules

import (
	"strconv"
	"strings"
)

// AI response protocol shared by the AI-assisted rules: the model answers
// either with the noFindings sentinel or with one block per finding,
// delimited by findingTag, each block carrying labeled fields.
const (
	findingTag = "[FINDING]"
	noFindings = "NO_ISSUES"

	// chapterTextBudget caps how much chapter text goes into a prompt.
	chapterTextBudget = 6000

	defaultConfidence = 0.7
)

// finding is one parsed block of an AI response.
type finding struct {
	Problem    string
	Location   string
	Suggestion string
	Confidence float64
}

// parseFindings parses a delimiter-tagged AI response. Findings missing a
// problem field are dropped; an unparsable confidence defaults to 0.7. A
// response carrying the sentinel, or nothing recognizable, yields zero
// findings.
func parseFindings(response string) []finding {
	if strings.Contains(response, noFindings) {
		return nil
	}

	var findings []finding
	blocks := strings.Split(response, findingTag)
	for _, block := range blocks[1:] {
		f := finding{
			Problem:    extractField(block, "problem"),
			Location:   extractField(block, "location"),
			Suggestion: extractField(block, "suggestion"),
			Confidence: parseConfidence(extractField(block, "confidence")),
		}
		if f.Problem == "" {
			continue
		}
		findings = append(findings, f)
	}
	return findings
}

// extractField locates "label:" in the block, case-insensitively, and
// returns the text up to the next line break.
func extractField(block, label string) string {
	lower := strings.ToLower(block)
	idx := strings.Index(lower, label+":")
	if idx < 0 {
		return ""
	}
	rest := block[idx+len(label)+1:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

func parseConfidence(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return defaultConfidence
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// truncate bounds text to max characters.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}

// responseFormat is the instruction block appended to every AI rule prompt.
const responseFormat = `Respond with one block per problem found, in exactly this format:

[FINDING]
problem: <what is inconsistent>
location: <short quote of the offending text>
suggestion: <how to fix it>
confidence: <0.0-1.0>

If you find no problems, respond with exactly: NO_ISSUES`
