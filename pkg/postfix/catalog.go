package postfix

import (
	"github.com/bastiangx/gopostfix/pkg/snippet"
)

// Entry is one catalog template keyed by its label.
type Entry struct {
	Label    string
	Detail   string
	Template snippet.Template
}

var (
	lit    = snippet.Lit
	expr   = snippet.Expr
	quoted = snippet.QuotedExpr
	final  = snippet.Final
	stop   = snippet.Stop
)

// Builtin is the receiver-dependent catalog in menu order.
var Builtin = []Entry{
	{
		Label:    "printf",
		Detail:   "fmt.Printf(\"expr: %v\\n\", expr)",
		Template: snippet.New(lit(`fmt.Printf("`), quoted(), lit(`: %v\n", `), expr(), lit(")")),
	},
	{
		Label:    "len",
		Detail:   "len(expr)",
		Template: snippet.New(lit("len("), expr(), lit(")")),
	},
	{
		Label:    "append",
		Detail:   "expr = append(expr, ...)",
		Template: snippet.New(expr(), lit(" = append("), expr(), lit(", "), final(), lit(")")),
	},
	{
		Label:    "range",
		Detail:   "for _, v := range expr",
		Template: snippet.New(lit("for _, v"), final(), lit(" := range "), expr(), lit(" {\n\n}")),
	},
	{
		Label:    "if",
		Detail:   "if expr",
		Template: snippet.New(lit("if "), expr(), final(), lit(" {\n\n}")),
	},
	{
		Label:    "iferr",
		Detail:   "if err := expr; err != nil",
		Template: snippet.New(lit("if err := "), expr(), lit("; err != nil {\n"), final(), lit("\n}")),
	},
	{
		Label:    "switch",
		Detail:   "switch expr",
		Template: snippet.New(lit("switch "), expr(), lit(" {\ncase "), final(), lit(":\n}")),
	},
	{
		Label:    "var",
		Detail:   "v := expr",
		Template: snippet.New(lit("v"), final(), lit(" := "), expr()),
	},
	{
		Label:    "errors",
		Detail:   "errors.New(expr)",
		Template: snippet.New(lit("errors.New("), expr(), lit(")")),
	},
}

// Skeletons is the context-free catalog in menu order.
var Skeletons = []Entry{
	{
		Label:    "main",
		Detail:   "package main with func main",
		Template: snippet.New(lit("package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\""), stop(1, "hello"), lit("\")"), final(), lit("\n}")),
	},
	{
		Label:    "for",
		Detail:   "for i := 0; i < length; i++",
		Template: snippet.New(lit("for i := 0; i < "), stop(1, "length"), lit("; i++ {\n\t"), final(), lit("\n}")),
	},
	{
		Label:    "iferrw",
		Detail:   "if err != nil { return fmt.Errorf(...) }",
		Template: snippet.New(lit("if err != nil {\n\treturn fmt.Errorf(\""), stop(1, "context"), lit(": %w\", err)"), final(), lit("\n}")),
	},
}

func (e Entry) candidate(v snippet.Values) Candidate {
	return Candidate{
		Label:      e.Label,
		Kind:       KindSnippet,
		Detail:     e.Detail,
		SortText:   topSortText,
		Preselect:  true,
		InsertText: e.Template.Render(v),
		Plain:      e.Template.Plain(v),
		Cursor:     e.Template.CursorOffset(v),
		FilterText: e.Label,
	}
}
