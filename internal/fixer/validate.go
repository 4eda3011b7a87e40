package fixer

// bracketLanguages are languages where a balanced-delimiter scan is a
// meaningful sanity check. Other languages pass validation unchecked.
var bracketLanguages = map[string]bool{
	"go":         true,
	"javascript": true,
	"typescript": true,
	"java":       true,
	"c":          true,
	"cpp":        true,
	"csharp":     true,
	"rust":       true,
	"kotlin":     true,
	"swift":      true,
	"php":        true,
	"json":       true,
}

// ValidCode runs a basic syntactic sanity check on generated code: balanced
// braces, brackets, and parentheses for bracket-delimited languages. It is a
// cheap gate against truncated model output, not a parser.
func ValidCode(code, language string) bool {
	if !bracketLanguages[language] {
		return true
	}
	return balancedDelimiters(code)
}

func balancedDelimiters(code string) bool {
	var stack []byte
	var inString, inChar, inLineComment, inBlockComment bool

	for i := 0; i < len(code); i++ {
		c := code[i]

		switch {
		case inLineComment:
			if c == '\n' {
				inLineComment = false
			}
			continue
		case inBlockComment:
			if c == '*' && i+1 < len(code) && code[i+1] == '/' {
				inBlockComment = false
				i++
			}
			continue
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		case inChar:
			if c == '\\' {
				i++
			} else if c == '\'' {
				inChar = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '\'':
			inChar = true
		case '/':
			if i+1 < len(code) {
				switch code[i+1] {
				case '/':
					inLineComment = true
					i++
				case '*':
					inBlockComment = true
					i++
				}
			}
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != opener(c) {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

func opener(closer byte) byte {
	switch closer {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}
