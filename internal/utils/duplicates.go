package utils

// LabelFilter tracks labels already seen while loading catalog entries
type LabelFilter struct {
	seen map[string]bool
}

// NewLabelFilter creates a filter that already rejects the reserved labels
func NewLabelFilter(reserved ...string) *LabelFilter {
	seen := make(map[string]bool, len(reserved))
	for _, l := range reserved {
		seen[l] = true
	}
	return &LabelFilter{seen: seen}
}

// ShouldInclude checks if a label should be included (not a duplicate).
// Returns true if the label is new, false if it was seen before
func (f *LabelFilter) ShouldInclude(label string) bool {
	if f.seen[label] {
		return false
	}
	f.seen[label] = true
	return true
}
