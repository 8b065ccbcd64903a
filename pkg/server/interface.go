/*
Package server implements msgpack IPC for postfix completion services.

The server reads a stream of msgpack maps from stdin and writes one msgpack
map per request to stdout. There is no framing beyond msgpack itself, and
requests are answered in order, synchronously.

# IPC

Every message carries an "id" that is echoed back. A message with an "action"
field is an action request; anything else is a completion request.

A completion request sends the current line, the cursor column (bytes), the
trigger character and the document language:

	{"id": "req_001", "l": "  items.", "c": 8, "t": ".", "lang": "go"}

The server responds with ordered candidates:

	{"id": "req_001", "s": [{"l": "printf", "i": "fmt.Printf(\"items: %v\\n\", items)", "rs": 2, "re": 8, "r": 1}, ...], "c": 9, "t": 41}

Candidates carry a replace range ("rs"/"re") when accepting them must
overwrite the typed receiver. Without a range the insert text goes at the
cursor. "t" is the time taken in microseconds.

Actions:

	{"id": "a1", "action": "health"}
	{"id": "a2", "action": "list"}
	{"id": "a3", "action": "get_config"}

Failures are reported as a CompletionError with an HTTP-like code. No failure
ends the loop; only EOF on stdin does.
*/
package server

// CompletionRequest - completion request for one keystroke
type CompletionRequest struct {
	ID       string `msgpack:"id"`
	Line     string `msgpack:"l"`
	Column   int    `msgpack:"c"`
	Trigger  string `msgpack:"t,omitempty"`
	Language string `msgpack:"lang,omitempty"`
}

// CompletionSuggestion - one candidate in a response
type CompletionSuggestion struct {
	Label      string `msgpack:"l"`
	Kind       string `msgpack:"k"`
	Detail     string `msgpack:"d,omitempty"`
	InsertText string `msgpack:"i"`
	FilterText string `msgpack:"f,omitempty"`
	SortText   string `msgpack:"st"`
	Preselect  bool   `msgpack:"p"`
	// replace range, both -1 when the text is inserted at the cursor
	ReplaceStart int    `msgpack:"rs"`
	ReplaceEnd   int    `msgpack:"re"`
	Rank         uint16 `msgpack:"r"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// ActionRequest - server management request
type ActionRequest struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"` // "health", "list", "get_config"
}

// ActionResponse - server management response
type ActionResponse struct {
	ID        string   `msgpack:"id"`
	Status    string   `msgpack:"status"`
	Error     string   `msgpack:"error,omitempty"`
	Labels    []string `msgpack:"labels,omitempty"`
	Languages []string `msgpack:"languages,omitempty"`
	Triggers  []string `msgpack:"triggers,omitempty"`
	MaxLine   int      `msgpack:"max_line,omitempty"`
	Requests  int      `msgpack:"requests,omitempty"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// envelope is decoded first to route a message.
type envelope struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
}
