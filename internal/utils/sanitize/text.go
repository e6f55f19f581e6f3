// Package sanitize cleans free text that arrives from other modules or bank files before it is stored.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Text strips markup and unprintable characters, collapses newlines and trims the result.
func Text(s string) string {
	// StrictPolicy escapes entities; stored narrations keep the plain characters.
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsPrint(r):
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}

// Reference normalises an instrument or bank reference number for comparison.
func Reference(s string) string {
	s = Text(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
	return strings.TrimLeft(s, "0")
}
