/*
Package snippet holds the template value type used by every completion gopostfix serves.

A Template is an ordered list of segments. Literal segments carry source text,
the receiver segments are filled with the expression typed before the trigger
dot, and placeholder segments are left as markers for the editor's own cursor
placement:

	tmpl := snippet.New(
		snippet.Lit("len("), snippet.Expr(), snippet.Lit(")"),
	)
	tmpl.Render(snippet.Values{Expr: "items"}) // len(items)

Render produces the LSP snippet syntax ($0, ${1:default}) and Plain produces
the text a user would see after accepting the completion with every
placeholder at its default.
*/
package snippet

import (
	"strconv"
	"strings"
)

// Kind identifies what a Segment renders to.
type Kind uint8

const (
	// Literal is source text copied as-is.
	Literal Kind = iota
	// Receiver is the raw receiver expression.
	Receiver
	// Quoted is the receiver escaped for use inside a string literal.
	Quoted
	// Cursor is the final cursor position ($0).
	Cursor
	// Tabstop is a numbered stop with optional default text.
	Tabstop
)

// Segment is one piece of a Template.
type Segment struct {
	Kind  Kind
	Text  string // literal text or tabstop default
	Index int    // tabstop number, > 0
}

// Lit returns a literal segment.
func Lit(text string) Segment { return Segment{Kind: Literal, Text: text} }

// Expr returns a raw receiver segment.
func Expr() Segment { return Segment{Kind: Receiver} }

// QuotedExpr returns an escaped receiver segment.
func QuotedExpr() Segment { return Segment{Kind: Quoted} }

// Final returns the final cursor placeholder.
func Final() Segment { return Segment{Kind: Cursor} }

// Stop returns a numbered tabstop with default text.
func Stop(index int, def string) Segment {
	return Segment{Kind: Tabstop, Index: index, Text: def}
}

// Values are the receiver strings substituted into a Template.
type Values struct {
	Expr   string
	Quoted string
}

// Template is an immutable sequence of segments.
type Template struct {
	segs []Segment
}

// New builds a Template, merging adjacent literals.
func New(segs ...Segment) Template {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Kind == Literal {
			if s.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Kind == Literal {
				out[n-1].Text += s.Text
				continue
			}
		}
		out = append(out, s)
	}
	return Template{segs: out}
}

// Segments returns a copy of the template's segments.
func (t Template) Segments() []Segment {
	return append([]Segment(nil), t.segs...)
}

// HasReceiver reports whether the template interpolates the receiver.
func (t Template) HasReceiver() bool {
	for _, s := range t.segs {
		if s.Kind == Receiver || s.Kind == Quoted {
			return true
		}
	}
	return false
}

// Render returns the template in LSP snippet syntax.
func (t Template) Render(v Values) string {
	var b strings.Builder
	for i, s := range t.segs {
		// a trailing backslash must not swallow the next placeholder's '$'
		last := i == len(t.segs)-1
		switch s.Kind {
		case Literal:
			writeText(&b, s.Text, false, last)
		case Receiver:
			writeText(&b, v.Expr, false, last)
		case Quoted:
			writeText(&b, v.Quoted, false, last)
		case Cursor:
			writeBare(&b, 0, t.digitFollows(i, v))
		case Tabstop:
			if s.Text == "" {
				writeBare(&b, s.Index, t.digitFollows(i, v))
				continue
			}
			b.WriteString("${")
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(':')
			writeText(&b, s.Text, true, false)
			b.WriteByte('}')
		}
	}
	return b.String()
}

// digitFollows reports whether the text rendered after segment i starts
// with a digit, which would extend a bare $N placeholder.
func (t Template) digitFollows(i int, v Values) bool {
	if i+1 >= len(t.segs) {
		return false
	}
	var next string
	switch s := t.segs[i+1]; s.Kind {
	case Literal:
		next = s.Text
	case Receiver:
		next = v.Expr
	case Quoted:
		next = v.Quoted
	}
	return next != "" && next[0] >= '0' && next[0] <= '9'
}

func writeBare(b *strings.Builder, index int, braced bool) {
	if braced {
		b.WriteString("${")
		b.WriteString(strconv.Itoa(index))
		b.WriteByte('}')
		return
	}
	b.WriteByte('$')
	b.WriteString(strconv.Itoa(index))
}

// Plain returns the text left in the buffer when every placeholder keeps
// its default.
func (t Template) Plain(v Values) string {
	var b strings.Builder
	for _, s := range t.segs {
		switch s.Kind {
		case Literal, Tabstop:
			b.WriteString(s.Text)
		case Receiver:
			b.WriteString(v.Expr)
		case Quoted:
			b.WriteString(v.Quoted)
		}
	}
	return b.String()
}

// CursorOffset returns the byte offset of the final cursor in Plain output,
// or -1 when the template has no final cursor.
func (t Template) CursorOffset(v Values) int {
	n := 0
	for _, s := range t.segs {
		switch s.Kind {
		case Literal, Tabstop:
			n += len(s.Text)
		case Receiver:
			n += len(v.Expr)
		case Quoted:
			n += len(v.Quoted)
		case Cursor:
			return n
		}
	}
	return -1
}

// writeText escapes text for the snippet grammar. '$' is always escaped.
// '}' only needs escaping inside a placeholder. '\' is escaped when it
// would otherwise start an escape sequence.
func writeText(b *strings.Builder, text string, inPlaceholder, last bool) {
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '$':
			b.WriteString(`\$`)
		case '}':
			if inPlaceholder {
				b.WriteString(`\}`)
			} else {
				b.WriteByte(c)
			}
		case '\\':
			var next byte
			if i+1 < len(text) {
				next = text[i+1]
			}
			switch {
			case next == '$', next == '\\', next == '}':
				b.WriteString(`\\`)
			case i+1 == len(text) && (inPlaceholder || !last):
				b.WriteString(`\\`)
			default:
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
}
