package utils

import (
	"strings"
	"unicode"
)

// IsIdentRune checks if a rune can appear in a Go identifier
func IsIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsIdent checks if every rune of s is an identifier rune.
// The empty string counts, so a bare trigger dot passes.
func IsIdent(s string) bool {
	for _, r := range s {
		if !IsIdentRune(r) {
			return false
		}
	}
	return true
}

// IsLabel checks if s is usable as a catalog label: a non-empty identifier
func IsLabel(s string) bool {
	return s != "" && IsIdent(s)
}

// FirstNonSpace returns the byte offset of the first non-whitespace rune, or -1
func FirstNonSpace(s string) int {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
}

// SplitCursor splits a debug input line at the first '|' cursor marker.
// Without a marker the cursor is placed at the end of the line.
func SplitCursor(input string) (string, int) {
	before, after, found := strings.Cut(input, "|")
	if !found {
		return input, len(input)
	}
	return before + after, len(before)
}
