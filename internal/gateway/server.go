// Package gateway serves chat sessions over websocket.
//
// Protocol: connect to GET /ws?session=<id> (a uuid is assigned when the
// parameter is missing), send text frames {"message": "..."} and receive
// {"session": "...", "reply": "..."} for each. Malformed frames are answered
// with {"session": "...", "error": "..."} and the connection stays open.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/cicidi/product-sales-prediction/internal/registry"
)

// Runner processes one user turn of a session.
type Runner interface {
	Run(ctx context.Context, sessionID, input string) (string, error)
}

// StatusSource reports tool registry health.
type StatusSource interface {
	Status(ctx context.Context) (registry.Status, error)
}

type inFrame struct {
	Message string `json:"message"`
}

type outFrame struct {
	Session string `json:"session"`
	Reply   string `json:"reply,omitempty"`
	Error   string `json:"error,omitempty"`
}

type healthDoc struct {
	Status   string           `json:"status"`
	Registry *registry.Status `json:"registry,omitempty"`
	Tools    int              `json:"tools"`
	Error    string           `json:"error,omitempty"`
}

// Server is the websocket chat gateway.
type Server struct {
	addr      string
	runner    Runner
	status    StatusSource
	toolCount func() int
	logger    *slog.Logger
	upgrader  websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New creates a Server listening on addr. toolCount may be nil.
func New(addr string, runner Runner, status StatusSource, toolCount func() int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if toolCount == nil {
		toolCount = func() int { return 0 }
	}
	return &Server{
		addr:      addr,
		runner:    runner,
		status:    status,
		toolCount: toolCount,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP routes of the gateway.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled, then shuts down and closes open
// websocket connections.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("gateway: listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeAll()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimSpace(r.URL.Query().Get("session"))
	if session == "" {
		session = uuid.NewString()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("gateway: upgrade failed", "err", err)
		return
	}
	s.track(conn)
	defer s.untrack(conn)

	log := s.logger.With("session", session)
	log.Info("gateway: client connected", "remote", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("gateway: read ended", "err", err)
			}
			return
		}

		var in inFrame
		if err := json.Unmarshal(data, &in); err != nil {
			s.write(conn, outFrame{Session: session, Error: "invalid frame: expected {\"message\": \"...\"}"})
			continue
		}
		if strings.TrimSpace(in.Message) == "" {
			s.write(conn, outFrame{Session: session, Error: "empty message"})
			continue
		}

		reply, err := s.runner.Run(r.Context(), session, in.Message)
		if err != nil {
			log.Error("gateway: turn failed", "err", err)
			s.write(conn, outFrame{Session: session, Error: err.Error()})
			continue
		}
		if err := s.write(conn, outFrame{Session: session, Reply: reply}); err != nil {
			log.Debug("gateway: write failed", "err", err)
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	doc := healthDoc{Status: "ok", Tools: s.toolCount()}
	code := http.StatusOK

	if s.status != nil {
		st, err := s.status.Status(r.Context())
		if err != nil {
			doc.Status = "degraded"
			doc.Error = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			doc.Registry = &st
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(doc)
}

func (s *Server) write(conn *websocket.Conn, f outFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(f)
}

func (s *Server) track(c *websocket.Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	_ = c.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = c.Close()
	}
}
