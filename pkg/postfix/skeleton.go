package postfix

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// skeletonIndex maps label prefixes to context-free entries.
// Items stored in the trie are indexes into entries so matches can be
// returned in declaration order rather than trie order.
type skeletonIndex struct {
	trie    *patricia.Trie
	entries []Entry
}

func newSkeletonIndex(entries []Entry) *skeletonIndex {
	idx := &skeletonIndex{
		trie:    patricia.NewTrie(),
		entries: entries,
	}
	for i, e := range entries {
		if !idx.trie.Insert(patricia.Prefix(e.Label), i) {
			log.Warnf("Duplicate skeleton label %q ignored", e.Label)
		}
	}
	return idx
}

// match returns the entries whose label starts with prefix.
func (s *skeletonIndex) match(prefix string) []Entry {
	if prefix == "" {
		return nil
	}

	var hits []int
	err := s.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		if i, ok := item.(int); ok {
			hits = append(hits, i)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting skeleton trie: %v", err)
		return nil
	}

	sort.Ints(hits)
	out := make([]Entry, len(hits))
	for i, h := range hits {
		out[i] = s.entries[h]
	}
	return out
}

func (s *skeletonIndex) labels() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Label
	}
	return out
}
