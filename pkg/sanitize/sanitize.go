// Package sanitize cleans feed text before it is rendered to a terminal.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

const DefaultMaxDisplayLength = 48

// String removes terminal control sequences and truncates to maxLen runes,
// marking truncation with "...". maxLen <= 0 disables truncation.
func String(s string, maxLen int) string {
	return Truncate(Terminal(s), maxLen)
}

// Terminal drops ANSI CSI sequences and replaces other control bytes so the
// result cannot move the cursor or recolor the screen.
func Terminal(s string) string {
	if !hasControl(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 0x1B:
			if i+1 < len(s) && s[i+1] == '[' {
				i += 2
				for i < len(s) && !isCSITerminator(s[i]) {
					i++
				}
			}
		case c == '\t' || c == '\n' || c == '\r':
			b.WriteByte(' ')
		case c < 0x20 || c == 0x7F:
			b.WriteByte('?')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Truncate shortens s to at most maxLen runes.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7F {
			return true
		}
	}
	return false
}

func isCSITerminator(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '@' || c == '`'
}
