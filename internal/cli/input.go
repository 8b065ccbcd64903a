// Package cli handles cmd line input and candidates for DBG and testing templates
package cli

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/gopostfix/internal/utils"
	"github.com/bastiangx/gopostfix/pkg/postfix"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	detailStyle = lipgloss.NewStyle().Faint(true)
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
)

// InputHandler reads editor lines from stdin and prints the candidates the
// completer offers. A '|' in the line marks the cursor; without one the
// cursor sits at the end, right after a typed trigger dot.
type InputHandler struct {
	completer    postfix.ICompleter
	suggestLimit int
	maxLine      int
	showSnippet  bool
	language     string
	in           io.Reader
	printer      *log.Logger
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler on stdin/stderr
func NewInputHandler(completer postfix.ICompleter, limit, maxLine int, showSnippet bool) *InputHandler {
	return NewInputHandlerWithIO(completer, limit, maxLine, showSnippet, os.Stdin, os.Stderr)
}

// NewInputHandlerWithIO creates a handler on arbitrary streams
func NewInputHandlerWithIO(completer postfix.ICompleter, limit, maxLine int, showSnippet bool, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		completer:    completer,
		suggestLimit: limit,
		maxLine:      maxLine,
		showSnippet:  showSnippet,
		language:     "go",
		in:           in,
		printer:      log.NewWithOptions(out, log.Options{ReportTimestamp: false}),
	}
}

// Start begins the interface loop and returns nil once input is exhausted
func (h *InputHandler) Start() error {
	h.printer.Print("gopostfix CLI [BETA]")
	h.printer.Print("type a line like `  items.` or `fo|`, press Enter to see the candidates (Ctrl+D to exit):")

	scanner := bufio.NewScanner(h.in)
	scanner.Buffer(make([]byte, 0, 4096), max(h.maxLine, 4096)+1)
	for scanner.Scan() {
		input := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(input) == "" {
			continue
		}
		h.handleInput(input)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	return nil
}

// handleInput completes a single line and prints the ranked candidates
func (h *InputHandler) handleInput(input string) {
	h.requestCount++
	line, column := utils.SplitCursor(input)

	if issue := utils.CheckLine(line, h.maxLine); issue != utils.LineOK {
		log.Errorf("Rejected input: %s", issue)
		return
	}

	start := time.Now()
	candidates := h.completer.Complete(postfix.Request{
		Line:     line,
		Column:   column,
		Language: h.language,
	})
	log.Debugf("Took [ %v ] for request %d", time.Since(start), h.requestCount)

	if len(candidates) == 0 {
		h.printer.Warnf("No candidates for %q at column %d", line, column)
		return
	}

	shown := candidates
	if h.suggestLimit > 0 && len(shown) > h.suggestLimit {
		shown = shown[:h.suggestLimit]
	}

	h.printer.Printf("Found %d candidates for %q at column %d:", len(candidates), line, column)
	for i, c := range shown {
		h.printer.Printf("%2d. %-10s %s", i+1, labelStyle.Render(c.Label), detailStyle.Render(c.Detail))
		h.printer.Printf("      %s", resultStyle.Render(ApplyWithCursor(line, column, c)))
		if h.showSnippet {
			h.printer.Printf("      snippet: %q", c.InsertText)
		}
	}
}

// Apply returns line with c accepted at column, placeholders at their defaults
func Apply(line string, column int, c postfix.Candidate) string {
	start, end := span(line, column, c)
	return line[:start] + c.Plain + line[end:]
}

// ApplyWithCursor is Apply with a '|' where the editor leaves the cursor,
// the same marker the prompt reads.
func ApplyWithCursor(line string, column int, c postfix.Candidate) string {
	if c.Cursor < 0 || c.Cursor > len(c.Plain) {
		return Apply(line, column, c)
	}
	start, end := span(line, column, c)
	return line[:start] + c.Plain[:c.Cursor] + "|" + c.Plain[c.Cursor:] + line[end:]
}

// span is the byte range of line that accepting c overwrites
func span(line string, column int, c postfix.Candidate) (int, int) {
	start, end := column, column
	if c.Replace != nil {
		start, end = c.Replace.Start, c.Replace.End
	} else {
		// the typed word is replaced by the skeleton
		for start > 0 {
			r, size := utf8.DecodeLastRuneInString(line[:start])
			if !utils.IsIdentRune(r) {
				break
			}
			start -= size
		}
	}
	return start, end
}
