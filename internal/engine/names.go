package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const maxNameLen = 24

// NormalizeName folds full-width forms, composes to NFC, drops control characters
// and collapses whitespace. The result is at most maxNameLen runes.
func NormalizeName(s string) string {
	s = norm.NFC.String(width.Fold.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxNameLen {
		s = strings.TrimSpace(string(r[:maxNameLen]))
	}
	return s
}
