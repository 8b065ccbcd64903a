package postfix

import (
	"strings"

	"github.com/bastiangx/gopostfix/pkg/snippet"
	"github.com/charmbracelet/log"
)

// Options is the explicit registration handed to a Generator at startup.
type Options struct {
	// Languages the generator answers for. Empty accepts every language.
	Languages []string
	// Disabled labels are dropped from both catalogs.
	Disabled []string
	// Postfix entries extend Builtin. An entry reusing a builtin label
	// replaces it in place.
	Postfix []Entry
	// Skeletons extend the context-free catalog the same way.
	Skeletons []Entry
}

// Generator produces candidates from an immutable catalog snapshot.
type Generator struct {
	postfix   []Entry
	skeletons *skeletonIndex
	languages map[string]struct{}
}

// New builds a Generator from opts.
func New(opts Options) *Generator {
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, l := range opts.Disabled {
		disabled[l] = true
	}

	g := &Generator{
		postfix:   mergeEntries(Builtin, opts.Postfix, disabled),
		skeletons: newSkeletonIndex(mergeEntries(Skeletons, opts.Skeletons, disabled)),
	}
	if len(opts.Languages) > 0 {
		g.languages = make(map[string]struct{}, len(opts.Languages))
		for _, l := range opts.Languages {
			g.languages[strings.ToLower(l)] = struct{}{}
		}
	}

	log.Debug("Generator ready", "postfix", len(g.postfix), "skeletons", len(g.skeletons.entries))
	return g
}

// Default returns a Generator with the builtin catalogs answering for Go.
func Default() *Generator {
	return New(Options{Languages: []string{"go"}})
}

// Complete returns the candidates for req. A postfix context (a dot with
// only identifier text between it and the cursor) yields the postfix
// catalog. Skeletons are matched against the word before the cursor only
// for plain typing: a request carrying a trigger character gets postfix
// candidates or nothing. Nothing is offered inside a line comment.
func (g *Generator) Complete(req Request) []Candidate {
	if !g.Accepts(req.Language) {
		return nil
	}
	if req.Trigger != "" {
		return g.PostfixAt(req.Line, req.Column)
	}
	if recv, ok := Extract(req.Line, req.Column); ok {
		return g.Postfix(recv)
	}
	return g.Skeleton(req.Line, req.Column)
}

// PostfixAt extracts the receiver at column and renders the postfix catalog.
// It never falls back to skeletons.
func (g *Generator) PostfixAt(line string, column int) []Candidate {
	recv, ok := Extract(line, column)
	if !ok {
		return nil
	}
	return g.Postfix(recv)
}

// Accepts reports whether the generator answers for language.
func (g *Generator) Accepts(language string) bool {
	if language == "" || g.languages == nil {
		return true
	}
	_, ok := g.languages[strings.ToLower(language)]
	return ok
}

// Postfix renders the postfix catalog for recv. An empty receiver (a dot
// typed at the start of a line) yields nothing.
func (g *Generator) Postfix(recv Receiver) []Candidate {
	if recv.Expr == "" {
		return nil
	}

	values := snippet.Values{Expr: recv.Expr, Quoted: recv.Escaped}
	out := make([]Candidate, 0, len(g.postfix))
	for _, e := range g.postfix {
		c := e.candidate(values)
		rng := recv.Replace()
		c.Replace = &rng
		c.FilterText = recv.Expr + "." + e.Label
		out = append(out, c)
	}
	return out
}

// Skeleton matches the identifier before column against the context-free
// catalog.
func (g *Generator) Skeleton(line string, column int) []Candidate {
	col := clampColumn(line, column)
	if inComment(line[:col]) {
		return nil
	}
	word, start := wordBefore(line, col)
	if start > 0 && line[start-1] == '.' {
		return nil
	}

	entries := g.skeletons.match(word)
	if len(entries) == 0 {
		return nil
	}
	out := make([]Candidate, len(entries))
	for i, e := range entries {
		out[i] = e.candidate(snippet.Values{})
	}
	return out
}

// Labels returns every label, postfix catalog first.
func (g *Generator) Labels() []string {
	out := make([]string, 0, len(g.postfix)+len(g.skeletons.entries))
	for _, e := range g.postfix {
		out = append(out, e.Label)
	}
	return append(out, g.skeletons.labels()...)
}

// mergeEntries overlays extra onto base, keeping base order for replaced
// labels and appending new ones.
func mergeEntries(base, extra []Entry, disabled map[string]bool) []Entry {
	out := make([]Entry, 0, len(base)+len(extra))
	pos := make(map[string]int, len(base)+len(extra))
	for _, list := range [][]Entry{base, extra} {
		for _, e := range list {
			if i, ok := pos[e.Label]; ok {
				out[i] = e
				continue
			}
			pos[e.Label] = len(out)
			out = append(out, e)
		}
	}

	kept := out[:0]
	for _, e := range out {
		if !disabled[e.Label] {
			kept = append(kept, e)
		}
	}
	return kept
}
