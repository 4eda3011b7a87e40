package issue

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// minDescriptionLen is the shortest description worth keeping.
	minDescriptionLen = 10
	// minTextForForcedIssue is the smallest analysis text that forces at
	// least one synthesized issue when nothing structured was found.
	minTextForForcedIssue = 50
)

var (
	// Stage 1: structured headings like "## Issue #3 (Lines 10-25): title".
	structuredHeadingRe = regexp.MustCompile(`(?m)^#*\s*Issue\s+#(\d+)(?:\s*\(Lines?\s+(\d+)(?:\s*-\s*(\d+))?\))?\s*:?\s*(.*)$`)

	// Stage 2: keyword-anchored single lines.
	keywordLineRe = regexp.MustCompile(`(?m)^\s*(?:Issue|Problem|Bug|Error|Warning|Security|Performance)\s*#?\d*\s*:\s*(.+?)\s*$`)
	lineAnchorRe  = regexp.MustCompile(`(?m)^\s*Lines?\s+(\d+)(?:\s*-\s*(\d+))?\s*:\s*(.+?)\s*$`)

	// Stage 3: numbered list items and bullets.
	numberedItemRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+(.+?)\s*$`)
	bulletItemRe   = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+?)\s*$`)

	positiveRe = regexp.MustCompile(`(?i)\b(good|clean|excellent|great|well[ -](written|documented|structured)|no issues|looks fine)\b`)
	contrastRe = regexp.MustCompile(`(?i)\b(but|however|although|issue|problem|fix|missing|should|improve|lacks?)\b`)
)

// extraction accumulates issues with exact-description dedup across one
// Extract call.
type extraction struct {
	issues []Issue
	seen   map[string]bool
}

func (e *extraction) add(desc string, lineStart, lineEnd int) {
	desc = strings.TrimSpace(desc)
	if len(desc) < minDescriptionLen {
		return
	}
	if positiveRe.MatchString(desc) && !contrastRe.MatchString(desc) {
		return
	}
	if e.seen[desc] {
		return
	}
	e.seen[desc] = true

	sev, typ := Classify(desc)
	e.issues = append(e.issues, Issue{
		ID:          len(e.issues) + 1,
		Description: desc,
		LineStart:   lineStart,
		LineEnd:     lineEnd,
		Severity:    sev,
		Type:        typ,
	})
}

// Extract converts free-form analysis text into an ordered issue list. It
// tries a cascade of pattern families, moving to the next family only when
// the previous one produced nothing, and finally synthesizes a single generic
// issue for non-trivial text so a substantive analysis never yields zero.
func Extract(text string) []Issue {
	ex := &extraction{seen: make(map[string]bool)}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	extractStructuredHeadings(ex, text)
	if len(ex.issues) == 0 {
		extractKeywordLines(ex, text)
	}
	if len(ex.issues) == 0 {
		extractListItems(ex, text)
	}
	if len(ex.issues) == 0 && strings.Contains(strings.ToLower(text), "issue") {
		extractLooseLines(ex, text)
	}
	if len(ex.issues) == 0 && len(strings.TrimSpace(text)) > minTextForForcedIssue {
		ex.add("Code review flagged concerns in this file; see the raw analysis text for details.", 0, 0)
	}

	return ex.issues
}

// extractStructuredHeadings handles text already segmented into
// "Issue #<n> (Lines <a>-<b>): <title>" blocks. The block body, up to the
// next heading, becomes part of the description.
func extractStructuredHeadings(ex *extraction, text string) {
	locs := structuredHeadingRe.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range locs {
		match := structuredHeadingRe.FindStringSubmatch(text[loc[0]:loc[1]])
		title := strings.TrimSpace(match[4])

		// Body runs until the next heading or end of text.
		bodyEnd := len(text)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:bodyEnd])
		if nextSection := strings.Index(body, "\n#"); nextSection >= 0 {
			body = strings.TrimSpace(body[:nextSection])
		}

		desc := title
		if body != "" {
			if desc != "" {
				desc += ": " + firstLine(body)
			} else {
				desc = firstLine(body)
			}
		}

		lineStart, lineEnd := 0, 0
		if match[2] != "" {
			lineStart, _ = strconv.Atoi(match[2])
			lineEnd = lineStart
		}
		if match[3] != "" {
			lineEnd, _ = strconv.Atoi(match[3])
		}
		ex.add(desc, lineStart, lineEnd)
	}
}

func extractKeywordLines(ex *extraction, text string) {
	for _, m := range keywordLineRe.FindAllStringSubmatch(text, -1) {
		ex.add(m[1], 0, 0)
	}
	for _, m := range lineAnchorRe.FindAllStringSubmatch(text, -1) {
		start, _ := strconv.Atoi(m[1])
		end := start
		if m[2] != "" {
			end, _ = strconv.Atoi(m[2])
		}
		ex.add(m[3], start, end)
	}
}

func extractListItems(ex *extraction, text string) {
	for _, m := range numberedItemRe.FindAllStringSubmatch(text, -1) {
		ex.add(m[1], 0, 0)
	}
	for _, m := range bulletItemRe.FindAllStringSubmatch(text, -1) {
		ex.add(m[1], 0, 0)
	}
}

// extractLooseLines treats every substantial non-heading line as an issue.
// Only reached when the text mentions issues but no structured pattern
// matched.
func extractLooseLines(ex *extraction, text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 20 || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") {
			continue
		}
		ex.add(line, 0, 0)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
