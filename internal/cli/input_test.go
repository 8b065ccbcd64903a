package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/gopostfix/pkg/postfix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputHandler(t *testing.T) {
	in := strings.NewReader("  items.\n\tfo|\n\n// x.\n")
	var out bytes.Buffer

	h := NewInputHandlerWithIO(postfix.Default(), 2, 4096, true, in, &out)
	require.NoError(t, h.Start())

	got := out.String()
	assert.Contains(t, got, `Found 9 candidates for "  items." at column 8`)
	assert.Contains(t, got, "printf")
	assert.Contains(t, got, "len")
	assert.NotContains(t, got, "3. ", "limit caps the printed candidates")
	assert.Contains(t, got, `  fmt.Printf("items: %v\n", items)`)
	assert.Contains(t, got, `Found 1 candidates for "\tfo" at column 3`)
	assert.Contains(t, got, `No candidates for "// x."`)
	assert.Contains(t, got, "snippet:")
	assert.Equal(t, 3, h.requestCount, "blank lines are skipped")
}

func find(t *testing.T, cands []postfix.Candidate, label string) postfix.Candidate {
	t.Helper()
	for _, c := range cands {
		if c.Label == label {
			return c
		}
	}
	t.Fatalf("no %s candidate", label)
	return postfix.Candidate{}
}

func TestApplyWithCursor(t *testing.T) {
	g := postfix.Default()

	tests := []struct {
		description string
		line        string
		column      int
		label       string
		expected    string
	}{
		{"cursor inside append", "\txs.", 4, "append", "\txs = append(xs, |)"},
		{"cursor in skeleton body", "\tfo", 3, "for", "\tfor i := 0; i < length; i++ {\n\t|\n}"},
		{"no cursor leaves the text alone", "\tn.", 3, "len", "\tlen(n)"},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			c := find(t, g.Complete(postfix.Request{Line: tt.line, Column: tt.column}), tt.label)
			assert.Equal(t, tt.expected, ApplyWithCursor(tt.line, tt.column, c))
		})
	}
}

func TestApply(t *testing.T) {
	g := postfix.Default()

	tests := []struct {
		description string
		line        string
		column      int
		label       string
		expected    string
	}{
		{
			description: "postfix replaces receiver and dot",
			line:        "\tn.",
			column:      3,
			label:       "len",
			expected:    "\tlen(n)",
		},
		{
			description: "postfix keeps text after the cursor",
			line:        "  v.va)",
			column:      6,
			label:       "var",
			expected:    "  v := v)",
		},
		{
			description: "skeleton replaces the typed word",
			line:        "\tfo",
			column:      3,
			label:       "for",
			expected:    "\tfor i := 0; i < length; i++ {\n\t\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			var found *postfix.Candidate
			for _, c := range g.Complete(postfix.Request{Line: tt.line, Column: tt.column}) {
				if c.Label == tt.label {
					found = &c
					break
				}
			}
			require.NotNil(t, found, "no %s candidate", tt.label)
			assert.Equal(t, tt.expected, Apply(tt.line, tt.column, *found))
		})
	}
}
