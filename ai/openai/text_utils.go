package openai

import "strings"

// scrubString collapses whitespace and trims control characters from text
// before it is embedded in a prompt.
func scrubString(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < ' ' && r != '\n' {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
