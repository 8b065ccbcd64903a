package lsp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bastiangx/gopostfix/pkg/postfix"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	glspserver "github.com/tliron/glsp/server"
	"golang.org/x/sync/errgroup"
)

// ConfigureLogging routes glsp's own logging to stderr. stdout belongs to
// the protocol in stdio mode.
func ConfigureLogging(debug bool) {
	verbosity := 0
	if debug {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)
}

// Server runs LSP handlers over stdio or WebSocket
type Server struct {
	completer postfix.ICompleter
	opts      Options
	debug     bool
}

// NewServer creates a server; every connection gets its own Handler
func NewServer(completer postfix.ICompleter, opts Options, debug bool) *Server {
	return &Server{completer: completer, opts: opts, debug: debug}
}

// RunStdio serves a single client on stdin/stdout until it disconnects
func (s *Server) RunStdio() error {
	h := NewHandler(s.completer, s.opts)
	srv := glspserver.NewServer(h.Protocol(), h.opts.Name, s.debug)
	if err := srv.RunStdio(); err != nil {
		return errors.Wrap(err, "lsp stdio")
	}
	return nil
}

// ServeWebSocket listens on addr and serves one LSP session per WebSocket
// connection. It returns once ctx is done and the listener is shut down.
func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("LSP listening on ws://%s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "listen on %s", addr)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ServeHTTP upgrades the request and blocks until the session ends
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade WebSocket", "remote", r.RemoteAddr, "err", err)
		return
	}

	h := NewHandler(s.completer, s.opts)
	srv := glspserver.NewServer(h.Protocol(), h.opts.Name, s.debug)

	log.Debug("LSP session opened", "remote", r.RemoteAddr)
	srv.ServeWebSocket(conn)
	log.Debug("LSP session closed", "remote", r.RemoteAddr)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     checkOrigin,
}

// checkOrigin admits clients without an Origin header and local pages
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, prefix := range []string{"http://localhost", "https://localhost", "http://127.0.0.1", "https://127.0.0.1"} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}
