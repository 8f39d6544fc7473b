// Package server exposes the assistant over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartshopper/agent/internal/agent"
	"github.com/smartshopper/agent/internal/logging"
	"github.com/smartshopper/agent/internal/retriever"
	"github.com/smartshopper/agent/internal/version"
)

// Config configures the HTTP server.
type Config struct {
	Bind string // defaults to 127.0.0.1
	Port int    // defaults to 8399
}

// Server serves chat requests over POST /chat and streaming conversations
// over GET /ws. Each request runs an independent conversation; no state is
// shared between requests.
type Server struct {
	cfg       Config
	loop      *agent.Loop
	retriever *retriever.Retriever // optional, enables the rag flag
	log       *logging.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithRetriever enables grounded answers for requests that set the rag flag.
func WithRetriever(r *retriever.Retriever) Option {
	return func(s *Server) { s.retriever = r }
}

// New creates a server around an agent loop.
func New(cfg Config, loop *agent.Loop, log *logging.Logger, opts ...Option) *Server {
	if cfg.Bind == "" {
		cfg.Bind = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8399
	}
	s := &Server{
		cfg:  cfg,
		loop: loop,
		log:  log.Sub("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start listens and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Bind, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("server ready")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type chatRequest struct {
	Query string `json:"query"`
	RAG   bool   `json:"rag,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "use POST"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query must not be empty"})
		return
	}

	result, err := s.runQuery(r.Context(), req, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("chat request failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleWS upgrades to WebSocket, reads one chat request per message and
// streams loop events followed by the final result.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			if err := conn.WriteJSON(wsFrame{Type: "error", Error: "query must not be empty"}); err != nil {
				return
			}
			continue
		}

		// Events are emitted synchronously from the loop goroutine, so
		// writing from the callback needs no extra locking.
		result, err := s.runQuery(r.Context(), req, func(evt agent.Event) {
			_ = conn.WriteJSON(wsFrame{Type: "event", Event: &evt})
		})
		if err != nil {
			if werr := conn.WriteJSON(wsFrame{Type: "error", Error: err.Error()}); werr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(wsFrame{Type: "result", Result: result}); err != nil {
			return
		}
	}
}

// wsFrame is one WebSocket message: a progress event, an error, or the
// final result.
type wsFrame struct {
	Type   string        `json:"type"` // "event", "result", "error"
	Event  *agent.Event  `json:"event,omitempty"`
	Result *agent.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// runQuery picks the conversation mode: native tool use by default, or the
// retrieval-grounded text protocol when the rag flag is set.
func (s *Server) runQuery(ctx context.Context, req chatRequest, cb agent.EventCallback) (*agent.Result, error) {
	if req.RAG {
		if s.retriever == nil {
			return nil, fmt.Errorf("retrieval is not configured")
		}
		results, err := s.retriever.Retrieve(ctx, req.Query)
		if err != nil {
			return nil, fmt.Errorf("retrieving context: %w", err)
		}
		docs := make([]agent.Document, 0, len(results))
		for _, r := range results {
			docs = append(docs, agent.Document{ID: r.Meta.ProductID, Text: r.Text})
		}
		prompt := agent.BuildRAGPrompt(req.Query, docs, s.loop.ToolNames())
		return s.loop.RunPrompt(ctx, prompt)
	}
	return s.loop.RunWithEvents(ctx, req.Query, cb)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
