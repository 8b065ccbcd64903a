package postfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		line        string
		column      int
		ok          bool
		expr        string
		start       int
		dot         int
		description string
	}{
		{"  items.", 8, true, "items", 2, 7, "indented receiver"},
		{"items.", 6, true, "items", 0, 5, "no indent"},
		{"\titems.ap", 9, true, "items", 1, 6, "filter text typed after dot"},
		{"a.b.c.", 6, true, "a.b.c", 0, 5, "selector chain"},
		{"items.", 100, true, "items", 0, 5, "column past end is clamped"},
		{"items. ", 6, true, "items", 0, 5, "cursor before trailing space"},
		{".", 1, true, "", 0, 0, "empty receiver"},
		{"   .", 4, true, "", 3, 3, "empty receiver after indent"},
		{"items", 5, false, "", 0, 0, "no dot"},
		{"items.", 5, false, "", 0, 0, "dot after cursor"},
		{"items.", -3, false, "", 0, 0, "negative column"},
		{"", 0, false, "", 0, 0, "empty line"},
		{"// items.", 9, false, "", 0, 0, "whole line comment"},
		{"x := 1 // items.", 16, false, "", 0, 0, "trailing comment"},
		{"fmt.Println(x", 13, false, "", 0, 0, "call after dot"},
		{"items. ", 7, false, "", 0, 0, "space after dot"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			recv, ok := Extract(tc.line, tc.column)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			assert.Equal(t, tc.expr, recv.Expr)
			assert.Equal(t, tc.start, recv.Start)
			assert.Equal(t, tc.dot, recv.Dot)
		})
	}
}

func TestExtractMultibyte(t *testing.T) {
	line := "  größe."
	recv, ok := Extract(line, len(line))
	assert.True(t, ok)
	assert.Equal(t, "größe", recv.Expr)
	assert.Equal(t, len(line), recv.Cursor)

	// a column inside 'ö' backs off to the rune start, before any dot
	_, ok = Extract(line, 5)
	assert.False(t, ok)
}

func TestEscape(t *testing.T) {
	testCases := []struct {
		in, out     string
		description string
	}{
		{`x`, `x`, "plain"},
		{`m["k"]`, `m[\"k\"]`, "double quotes"},
		{`s[len("\n")]`, `s[len(\"\\n\")]`, "backslash"},
		{`a%b`, `a%%b`, "percent verb"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.out, Escape(tc.in))
		})
	}
}

func TestWordBefore(t *testing.T) {
	word, start := wordBefore("\tfo", 3)
	assert.Equal(t, "fo", word)
	assert.Equal(t, 1, start)

	word, _ = wordBefore("x := ", 5)
	assert.Equal(t, "", word)
}
