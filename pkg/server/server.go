package server

import (
	"bufio"
	"context"
	"io"
	"os"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bastiangx/gopostfix/internal/logger"
	"github.com/bastiangx/gopostfix/internal/utils"
	"github.com/bastiangx/gopostfix/pkg/config"
	"github.com/bastiangx/gopostfix/pkg/postfix"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Error codes sent in CompletionError.Code.
const (
	CodeBadRequest = 400
	CodeInternal   = 500
)

// Server handles the msgpack IPC for postfix completions
type Server struct {
	completer    postfix.ICompleter
	config       atomic.Pointer[config.Config]
	configPath   string
	decoder      *msgpack.Decoder
	writer       *bufio.Writer
	encoder      *msgpack.Encoder
	log          *log.Logger
	requestCount int
}

// NewServer creates a new completion server using stdin/stdout for IPC
func NewServer(completer postfix.ICompleter, cfg *config.Config, configPath string) *Server {
	return NewServerWithIO(completer, cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on arbitrary streams
func NewServerWithIO(completer postfix.ICompleter, cfg *config.Config, configPath string, r io.Reader, w io.Writer) *Server {
	bw := bufio.NewWriter(w)
	s := &Server{
		completer:  completer,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(bufio.NewReader(r)),
		writer:     bw,
		encoder:    msgpack.NewEncoder(bw),
		log:        logger.New("ipc"),
	}
	s.SetConfig(cfg)
	return s
}

// SetConfig swaps the server options, used on config reload
func (s *Server) SetConfig(cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s.config.Store(cfg)
}

// Start serves until stdin is closed
func (s *Server) Start() error {
	return s.Serve(context.Background())
}

// Serve processes requests until EOF or until ctx is done. Cancellation is
// checked between messages, a read in progress is not interrupted.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Debug("Starting IPC server", "config", s.configPath)
	s.sendResponse(ActionResponse{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Client closed stdin, exiting")
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			s.sendError("", "Unreadable msgpack stream", CodeBadRequest)
			return errors.Wrap(err, "read request")
		}
		s.handleRequest(raw)
	}
}

// handleRequest routes one raw message
func (s *Server) handleRequest(raw msgpack.RawMessage) {
	s.requestCount++

	var env envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		s.log.Errorf("Unmarshaling request envelope: %v", err)
		s.sendError("", "Invalid msgpack request", CodeBadRequest)
		return
	}

	if env.Action != "" {
		s.handleAction(ActionRequest{ID: env.ID, Action: env.Action})
		return
	}

	var req CompletionRequest
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.log.Errorf("Unmarshaling completion request: %v", err)
		s.sendError(env.ID, "Invalid completion request", CodeBadRequest)
		return
	}
	s.handleComplete(req)
}

// handleComplete validates the line, asks the completer and sends the ranked candidates
func (s *Server) handleComplete(req CompletionRequest) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	cfg := s.config.Load()

	if issue := utils.CheckLine(req.Line, cfg.Server.MaxLineLength); issue != utils.LineOK {
		s.log.Debug("Rejected line", "id", req.ID, "reason", issue)
		s.sendError(req.ID, string(issue), CodeBadRequest)
		return
	}

	start := time.Now()
	var candidates []postfix.Candidate
	if req.Trigger == "" || slices.Contains(cfg.Server.TriggerCharacters, req.Trigger) {
		candidates = s.completer.Complete(postfix.Request{
			Line:     req.Line,
			Column:   req.Column,
			Trigger:  req.Trigger,
			Language: req.Language,
		})
	} else {
		s.log.Debug("Ignoring unregistered trigger", "id", req.ID, "trigger", req.Trigger)
	}
	elapsed := time.Since(start)

	suggestions := toSuggestions(candidates)
	s.log.Debugf("Took [ %v ] for id %s, %d candidates", elapsed, req.ID, len(suggestions))

	s.sendResponse(CompletionResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// handleAction answers management requests
func (s *Server) handleAction(req ActionRequest) {
	cfg := s.config.Load()
	switch req.Action {
	case "health":
		s.sendResponse(ActionResponse{ID: req.ID, Status: "ok", Requests: s.requestCount})
	case "list":
		s.sendResponse(ActionResponse{ID: req.ID, Status: "ok", Labels: s.completer.Labels()})
	case "get_config":
		s.sendResponse(ActionResponse{
			ID:        req.ID,
			Status:    "ok",
			Languages: cfg.Server.Languages,
			Triggers:  cfg.Server.TriggerCharacters,
			MaxLine:   cfg.Server.MaxLineLength,
		})
	default:
		s.sendError(req.ID, "Unknown action: "+req.Action, CodeBadRequest)
	}
}

// toSuggestions converts candidates to the wire format, ranking by position
func toSuggestions(candidates []postfix.Candidate) []CompletionSuggestion {
	ranks := utils.CreateRankList(len(candidates))
	out := make([]CompletionSuggestion, len(candidates))
	for i, c := range candidates {
		out[i] = CompletionSuggestion{
			Label:        c.Label,
			Kind:         c.Kind,
			Detail:       c.Detail,
			InsertText:   c.InsertText,
			FilterText:   c.FilterText,
			SortText:     c.SortText,
			Preselect:    c.Preselect,
			ReplaceStart: -1,
			ReplaceEnd:   -1,
			Rank:         ranks[i],
		}
		if c.Replace != nil {
			out[i].ReplaceStart = c.Replace.Start
			out[i].ReplaceEnd = c.Replace.End
		}
	}
	return out
}

// sendResponse encodes one response and flushes it
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.log.Errorf("Flushing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(CompletionError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
