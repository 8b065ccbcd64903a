package utils

import (
	"strings"
	"unicode/utf8"
)

// LineIssue describes why an incoming line was rejected
type LineIssue string

const (
	LineOK        LineIssue = ""
	LineTooLong   LineIssue = "line exceeds maximum length"
	LineMultiline LineIssue = "line contains a newline"
	LineInvalid   LineIssue = "line is not valid UTF-8"
)

// CheckLine validates a line before it reaches the generator.
// maxLen <= 0 disables the length check.
func CheckLine(line string, maxLen int) LineIssue {
	if maxLen > 0 && len(line) > maxLen {
		return LineTooLong
	}
	if strings.ContainsAny(line, "\r\n") {
		return LineMultiline
	}
	if !utf8.ValidString(line) {
		return LineInvalid
	}
	return LineOK
}

// LineAt returns line n (zero-based) of text, or false when out of range.
// A trailing "\r" is dropped so CRLF documents give the same columns.
func LineAt(text string, n int) (string, bool) {
	if n < 0 {
		return "", false
	}
	for i := 0; i < n; i++ {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			return "", false
		}
		text = text[idx+1:]
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSuffix(text, "\r"), true
}
