package postfix

import (
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/gopostfix/internal/utils"
)

const commentMarker = "//"

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `%`, `%%`)

// Receiver is the expression typed before the trigger dot.
type Receiver struct {
	Expr    string // raw text
	Escaped string // safe inside a printf format literal
	Start   int    // first non-whitespace byte of the line
	Dot     int    // byte offset of the trigger dot
	Cursor  int    // clamped cursor
}

// Replace returns the range accepting a candidate overwrites: the receiver,
// the dot and anything typed after it.
func (r Receiver) Replace() Range {
	return Range{Start: r.Start, End: r.Cursor}
}

// Escape makes an expression safe to embed in a Go format string literal.
func Escape(expr string) string {
	return quoteEscaper.Replace(expr)
}

// Extract locates the receiver left of the last dot before column.
// ok is false when there is no dot, the cursor sits in a line comment, or
// something other than an identifier was typed after the dot.
func Extract(line string, column int) (Receiver, bool) {
	col := clampColumn(line, column)
	prefix := line[:col]

	if inComment(prefix) {
		return Receiver{}, false
	}

	dot := strings.LastIndexByte(prefix, '.')
	if dot < 0 {
		return Receiver{}, false
	}
	if !utils.IsIdent(prefix[dot+1:]) {
		return Receiver{}, false
	}

	start := utils.FirstNonSpace(line)
	if start < 0 || start > dot {
		start = dot
	}
	expr := line[start:dot]

	return Receiver{
		Expr:    expr,
		Escaped: Escape(expr),
		Start:   start,
		Dot:     dot,
		Cursor:  col,
	}, true
}

// wordBefore returns the identifier ending at column and its start offset.
func wordBefore(line string, column int) (string, int) {
	col := clampColumn(line, column)
	start := col
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if !utils.IsIdentRune(r) {
			break
		}
		start -= size
	}
	return line[start:col], start
}

func inComment(prefix string) bool {
	return strings.Contains(prefix, commentMarker)
}

// clampColumn bounds column to the line and backs off to a rune boundary.
func clampColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	if column > len(line) {
		return len(line)
	}
	for column > 0 && column < len(line) && !utf8.RuneStart(line[column]) {
		column--
	}
	return column
}
