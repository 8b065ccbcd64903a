package postfix

// KindSnippet is the only kind this package produces.
const KindSnippet = "snippet"

// topSortText is shared by every candidate so they all sort above other
// providers' items and keep catalog order among themselves.
const topSortText = "0000"

// Request is the per-keystroke input from the host.
type Request struct {
	Line     string
	Column   int    // byte offset into Line
	Trigger  string // trigger character, empty when invoked by typing
	Language string // host language id, empty to skip routing
}

// Range is a half-open byte range on the request line.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered.
func (r Range) Len() int { return r.End - r.Start }

// Candidate is one completion item.
type Candidate struct {
	Label      string
	Kind       string
	Detail     string
	SortText   string
	Preselect  bool
	InsertText string // LSP snippet syntax
	Plain      string // InsertText with placeholders at their defaults
	Cursor     int    // byte offset of $0 in Plain, -1 without one
	FilterText string
	Replace    *Range // nil: insert at the cursor
}
