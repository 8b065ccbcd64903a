package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s := newDocumentStore(2)
	s.put("a", "go", "A")
	s.put("b", "go", "B")

	// touch a so b becomes the oldest
	_, ok := s.get("a")
	assert.True(t, ok)

	s.put("c", "go", "C")
	assert.Equal(t, 2, s.len())

	_, ok = s.get("b")
	assert.False(t, ok, "b was least recently used")
	a, ok := s.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", a.content)
}

func TestDocumentStoreReopenUpdates(t *testing.T) {
	s := newDocumentStore(0)
	assert.Equal(t, DefaultMaxDocuments, s.max)

	s.put("a", "go", "one")
	s.put("a", "", "two")
	doc, ok := s.get("a")
	assert.True(t, ok)
	assert.Equal(t, "two", doc.content)
	assert.Equal(t, "go", doc.language)
	assert.Equal(t, 1, s.len())

	s.remove("a")
	s.remove("a")
	assert.Equal(t, 0, s.len())
}

func TestColumnConversion(t *testing.T) {
	line := "a😀é."
	tests := []struct {
		description string
		character   uint32
		byteCol     int
	}{
		{"start", 0, 0},
		{"after ascii", 1, 1},
		{"inside surrogate pair", 2, 1},
		{"after emoji", 3, 5},
		{"after e acute", 4, 7},
		{"end", 5, 8},
		{"past end", 50, 8},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.byteCol, byteColumn(line, tt.character))
		})
	}

	assert.Equal(t, uint32(0), utf16Column(line, 0))
	assert.Equal(t, uint32(3), utf16Column(line, 5))
	assert.Equal(t, uint32(5), utf16Column(line, 8))
	assert.Equal(t, uint32(5), utf16Column(line, 99))
}
