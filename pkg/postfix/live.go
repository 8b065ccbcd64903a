package postfix

import "sync/atomic"

// Live is an ICompleter whose Generator can be swapped while requests are
// being served. Each request sees one complete snapshot.
type Live struct {
	gen atomic.Pointer[Generator]
}

// NewLive wraps g.
func NewLive(g *Generator) *Live {
	l := &Live{}
	l.gen.Store(g)
	return l
}

// Store replaces the active generator.
func (l *Live) Store(g *Generator) {
	l.gen.Store(g)
}

// Load returns the active generator.
func (l *Live) Load() *Generator {
	return l.gen.Load()
}

// Complete implements ICompleter.
func (l *Live) Complete(req Request) []Candidate {
	return l.gen.Load().Complete(req)
}

// Labels implements ICompleter.
func (l *Live) Labels() []string {
	return l.gen.Load().Labels()
}

var (
	_ ICompleter = (*Generator)(nil)
	_ ICompleter = (*Live)(nil)
)
