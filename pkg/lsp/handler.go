/*
Package lsp serves postfix completions over the Language Server Protocol.

Documents are synced in full and kept in a per-client LRU cache. A completion
request looks up the cursor line, converts the UTF-16 character offset into a
byte column and hands it to a postfix.ICompleter. Candidates carrying a
replace range become a TextEdit so the editor overwrites the typed receiver.

The same handler runs over stdio or over WebSocket connections.
*/
package lsp

import (
	"github.com/bastiangx/gopostfix/internal/utils"
	"github.com/bastiangx/gopostfix/pkg/postfix"
	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Options configures a Handler
type Options struct {
	Name              string
	Version           string
	TriggerCharacters []string
	MaxDocuments      int
}

// Handler implements the LSP methods needed for completion
type Handler struct {
	completer postfix.ICompleter
	opts      Options
	documents *documentStore
}

// NewHandler creates a handler answering with completer
func NewHandler(completer postfix.ICompleter, opts Options) *Handler {
	if opts.Name == "" {
		opts.Name = "gopostfix"
	}
	if len(opts.TriggerCharacters) == 0 {
		opts.TriggerCharacters = []string{"."}
	}
	return &Handler{
		completer: completer,
		opts:      opts,
		documents: newDocumentStore(opts.MaxDocuments),
	}
}

// Protocol returns the glsp dispatch table for h
func (h *Handler) Protocol() *protocol.Handler {
	return &protocol.Handler{
		Initialize:             h.Initialize,
		Initialized:            h.Initialized,
		Shutdown:               h.Shutdown,
		SetTrace:               h.SetTrace,
		TextDocumentDidOpen:    h.TextDocumentDidOpen,
		TextDocumentDidChange:  h.TextDocumentDidChange,
		TextDocumentDidClose:   h.TextDocumentDidClose,
		TextDocumentCompletion: h.TextDocumentCompletion,
	}
}

// Initialize handles LSP initialize request
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Debug("LSP client initializing", "client", params.ClientInfo)

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := protocol.ServerCapabilities{
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: h.opts.TriggerCharacters,
		},
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    &syncKind,
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    h.opts.Name,
			Version: stringPtrOrNil(h.opts.Version),
		},
	}, nil
}

// Initialized is called after client receives InitializeResult
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Debug("LSP client initialized")
	return nil
}

// Shutdown handles LSP shutdown request
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Debug("LSP client shutting down", "documents", h.documents.len())
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen handles document open notifications
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	h.documents.put(uri, params.TextDocument.LanguageID, params.TextDocument.Text)
	log.Debug("Document opened", "uri", uri, "language", params.TextDocument.LanguageID, "length", len(params.TextDocument.Text))
	return nil
}

// TextDocumentDidChange handles full document change notifications
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			h.documents.put(uri, "", whole.Text)
		}
	}
	log.Debug("Document changed", "uri", uri, "changes", len(params.ContentChanges))
	return nil
}

// TextDocumentDidClose handles document close notifications
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	h.documents.remove(uri)
	log.Debug("Document closed", "uri", uri)
	return nil
}

// TextDocumentCompletion answers with postfix or skeleton candidates for
// the cursor line. Unknown documents and lines out of range yield an empty
// list.
func (h *Handler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic in completion handler", "panic", r, "uri", params.TextDocument.URI)
			result = emptyList()
			err = nil
		}
	}()

	uri := string(params.TextDocument.URI)
	doc, ok := h.documents.get(uri)
	if !ok {
		log.Debug("Completion for unknown document", "uri", uri)
		return emptyList(), nil
	}

	line, ok := utils.LineAt(doc.content, int(params.Position.Line))
	if !ok {
		return emptyList(), nil
	}

	req := postfix.Request{
		Line:     line,
		Column:   byteColumn(line, params.Position.Character),
		Language: doc.language,
	}
	if params.Context != nil && params.Context.TriggerCharacter != nil {
		req.Trigger = *params.Context.TriggerCharacter
	}

	candidates := h.completer.Complete(req)
	log.Debug("LSP completion", "uri", uri, "line", params.Position.Line, "column", req.Column, "count", len(candidates))

	items := make([]protocol.CompletionItem, len(candidates))
	for i, c := range candidates {
		items[i] = toItem(c, line, params.Position.Line)
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

// toItem converts a candidate, mapping its byte replace range on line
// back to UTF-16 positions
func toItem(c postfix.Candidate, line string, lineNo protocol.UInteger) protocol.CompletionItem {
	kind := protocol.CompletionItemKindSnippet
	format := protocol.InsertTextFormatSnippet
	item := protocol.CompletionItem{
		Label:            c.Label,
		Kind:             &kind,
		Detail:           stringPtrOrNil(c.Detail),
		Preselect:        boolPtr(c.Preselect),
		SortText:         stringPtrOrNil(c.SortText),
		FilterText:       stringPtrOrNil(c.FilterText),
		InsertTextFormat: &format,
	}

	if c.Replace == nil {
		item.InsertText = &c.InsertText
		return item
	}
	item.TextEdit = protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: lineNo, Character: utf16Column(line, c.Replace.Start)},
			End:   protocol.Position{Line: lineNo, Character: utf16Column(line, c.Replace.End)},
		},
		NewText: c.InsertText,
	}
	return item
}

func emptyList() *protocol.CompletionList {
	return &protocol.CompletionList{Items: []protocol.CompletionItem{}}
}

func boolPtr(b bool) *bool {
	return &b
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
