package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*[ \t]*\n(.*?)\n[ \t]*```")
	fencedJSONRe  = regexp.MustCompile("(?s)```(?:json)?[ \t]*\n(.*?)\n[ \t]*```")
)

// ExtractCode returns the contents of all fenced code blocks in text, joined
// in order of appearance. When no complete fence pair matches, it falls back
// to treating fence markers as an open/close toggle and collecting the lines
// in between. An empty return means no code was produced.
func ExtractCode(text string) string {
	matches := fencedBlockRe.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		parts := make([]string, 0, len(matches))
		for _, m := range matches {
			parts = append(parts, m[1])
		}
		return strings.Join(parts, "\n\n")
	}

	var collected []string
	inBlock := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inBlock = !inBlock
			continue
		}
		if inBlock {
			collected = append(collected, line)
		}
	}
	return strings.Join(collected, "\n")
}

// ExtractJSON pulls the first parseable JSON object out of arbitrary model
// text. It prefers fenced blocks, then falls back to scanning for balanced
// brace-delimited candidates anywhere in the text. The second return is
// false when nothing parses.
func ExtractJSON(text string) (map[string]any, bool) {
	for _, m := range fencedJSONRe.FindAllStringSubmatch(text, -1) {
		if obj, ok := tryParseObject(m[1]); ok {
			return obj, true
		}
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end := matchingBrace(text, i)
		if end < 0 {
			continue
		}
		if obj, ok := tryParseObject(text[i : end+1]); ok {
			return obj, true
		}
	}
	return nil, false
}

func tryParseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// matchingBrace returns the index of the brace closing the one at start, or
// -1 if the braces never balance. Braces inside JSON strings are skipped.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
