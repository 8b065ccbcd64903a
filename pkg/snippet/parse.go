package snippet

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseError reports a malformed template body.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return "snippet: " + e.Msg + " at offset " + strconv.Itoa(e.Offset)
}

// Parse reads the compact template syntax used in config files:
//
//	{{expr}}       raw receiver
//	{{quoted}}     receiver escaped for a string literal
//	$0             final cursor
//	$1, ${1:text}  numbered tabstop
//	$$             literal '$'
func Parse(body string) (Template, error) {
	var segs []Segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, Lit(lit.String()))
			lit.Reset()
		}
	}

	for i := 0; i < len(body); {
		switch {
		case strings.HasPrefix(body[i:], "{{"):
			end := strings.Index(body[i+2:], "}}")
			if end < 0 {
				return Template{}, &ParseError{Offset: i, Msg: "unterminated {{"}
			}
			name := strings.TrimSpace(body[i+2 : i+2+end])
			var seg Segment
			switch name {
			case "expr":
				seg = Expr()
			case "quoted":
				seg = QuotedExpr()
			default:
				return Template{}, &ParseError{Offset: i, Msg: "unknown variable " + strconv.Quote(name)}
			}
			flush()
			segs = append(segs, seg)
			i += 2 + end + 2

		case body[i] == '$':
			seg, n, err := parseDollar(body, i)
			if err != nil {
				return Template{}, err
			}
			if seg.Kind == Literal {
				lit.WriteString(seg.Text)
			} else {
				flush()
				segs = append(segs, seg)
			}
			i += n

		default:
			lit.WriteByte(body[i])
			i++
		}
	}
	flush()

	if len(segs) == 0 {
		return Template{}, errors.New("snippet: empty template")
	}
	return New(segs...), nil
}

// parseDollar parses the placeholder starting at body[i] == '$' and returns
// the segment and the number of bytes consumed.
func parseDollar(body string, i int) (Segment, int, error) {
	rest := body[i+1:]
	if rest == "" {
		return Segment{}, 0, &ParseError{Offset: i, Msg: "dangling $"}
	}
	if rest[0] == '$' {
		return Lit("$"), 2, nil
	}

	if rest[0] == '{' {
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return Segment{}, 0, &ParseError{Offset: i, Msg: "unterminated ${"}
		}
		inner := rest[1:end]
		num, def, hasDef := strings.Cut(inner, ":")
		idx, err := strconv.Atoi(num)
		if err != nil || idx < 0 {
			return Segment{}, 0, &ParseError{Offset: i, Msg: "bad tabstop " + strconv.Quote(inner)}
		}
		if idx == 0 {
			if hasDef {
				return Segment{}, 0, &ParseError{Offset: i, Msg: "final cursor takes no default"}
			}
			return Final(), end + 2, nil
		}
		return Stop(idx, def), end + 2, nil
	}

	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n == 0 {
		return Segment{}, 0, &ParseError{Offset: i, Msg: "expected tabstop number after $"}
	}
	idx, _ := strconv.Atoi(rest[:n])
	if idx == 0 {
		return Final(), n + 1, nil
	}
	return Stop(idx, ""), n + 1, nil
}
