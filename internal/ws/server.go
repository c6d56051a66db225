// Package ws relays chat frames between live WebSocket connections.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/pingpong/internal/config"
	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/hub"
	"github.com/xiaot623/pingpong/internal/metrics"
	"github.com/xiaot623/pingpong/internal/protocol"
)

// Relay is the part of the service the relay depends on.
type Relay interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	ResolveName(ctx context.Context, username string) (*domain.User, error)
	Authorize(ctx context.Context, sender, recipient *domain.User, kind domain.MessageKind, body string) (string, error)
	AppendMessage(ctx context.Context, sender, recipient *domain.User, kind domain.MessageKind, body, locator string) (*domain.Message, error)
}

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	svc      Relay
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, svc Relay, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		hub:     h,
		svc:     svc,
		metrics: m,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.CORSOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// HandleWebSocket authenticates, upgrades and serves one connection until it
// closes. GET /ws/chat?token=...
func (s *Server) HandleWebSocket(c echo.Context) error {
	ctx := c.Request().Context()
	user, authErr := s.svc.Authenticate(ctx, tokenFromRequest(c.Request()))

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		slog.Warn("failed to upgrade websocket", "error", err)
		return nil
	}

	if authErr != nil {
		code, reason := protocol.CloseUnauthorized, "unauthorized"
		if domain.KindOf(authErr) != domain.KindUnauthorized {
			slog.Error("failed to authenticate websocket", "error", authErr)
			code, reason = websocket.CloseInternalServerErr, "internal error"
		}
		ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(s.cfg.WriteTimeout))
		ws.Close()
		return nil
	}

	conn := hub.NewConnection(user.ID, user.Username, s.cfg.SendBuffer)
	if prev := s.hub.Register(conn); prev != nil && s.cfg.CloseSuperseded {
		prev.CloseWithReason(protocol.CloseSuperseded, "superseded")
	}
	slog.Info("connection opened", "user", user.Username, "conn_id", conn.ID)

	s.send(conn, protocol.NewSystem(protocol.NoticeConnected, user.Username))

	go s.writePump(ws, conn)
	s.readPump(ctx, ws, conn)
	return nil
}

// Shutdown closes every live connection with a going-away status.
func (s *Server) Shutdown() {
	if n := s.hub.CloseAll(websocket.CloseGoingAway, "server shutting down"); n > 0 {
		slog.Info("closed live connections", "count", n)
	}
}

// readPump reads frames one at a time so a connection's frames are handled
// in arrival order.
func (s *Server) readPump(ctx context.Context, ws *websocket.Conn, conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
		slog.Info("connection closed", "user", conn.Username, "conn_id", conn.ID)
	}()

	ws.SetReadLimit(s.cfg.MaxMessageSize)
	if s.cfg.ReadTimeout > 0 {
		ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		ws.SetPongHandler(func(string) error {
			ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
			return nil
		})
	}

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.Warn("websocket read error", "user", conn.Username, "conn_id", conn.ID, "error", err)
			}
			return
		}
		if s.cfg.ReadTimeout > 0 {
			ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}

		s.handleFrame(ctx, conn, message)
	}
}

// writePump is the only writer of data frames on ws.
func (s *Server) writePump(ws *websocket.Conn, conn *hub.Connection) {
	var tick <-chan time.Time
	if s.cfg.PingInterval > 0 {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer ws.Close()

	for {
		select {
		case message := <-conn.Outbound():
			ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Debug("failed to write frame", "conn_id", conn.ID, "error", err)
				conn.Close()
				return
			}

		case <-conn.Done():
			s.flush(ws, conn)
			code, reason := conn.CloseReason()
			ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(s.cfg.WriteTimeout))
			return

		case <-tick:
			ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}

// flush writes frames still queued when the connection was closed.
func (s *Server) flush(ws *websocket.Conn, conn *hub.Connection) {
	for {
		select {
		case message := <-conn.Outbound():
			ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
