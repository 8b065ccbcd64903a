// Package postfix is the core, turning a line of Go source and a cursor position into snippet completions.
//
// Two catalogs are served. The postfix catalog acts on the expression typed
// before a trigger dot (items. -> len(items)). The skeleton catalog is matched
// by plain word prefix (for -> a counting loop). Both are immutable once a
// Generator is built, so a Generator can be shared freely between goroutines.
package postfix

// ICompleter defines the interface the transports complete through.
type ICompleter interface {
	// Complete returns the ordered candidates for a request.
	Complete(req Request) []Candidate

	// Labels returns the labels of every catalog entry, postfix first.
	Labels() []string
}
