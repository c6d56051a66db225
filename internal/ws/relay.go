package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/hub"
	"github.com/xiaot623/pingpong/internal/metrics"
	"github.com/xiaot623/pingpong/internal/policy"
	"github.com/xiaot623/pingpong/internal/protocol"
)

// handleFrame processes one inbound frame for conn. Every failure is
// reported to the sender as a system notice; the connection stays open.
func (s *Server) handleFrame(ctx context.Context, conn *hub.Connection, data []byte) {
	var frame protocol.InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.reject(conn, protocol.NewSystem(protocol.NoticeInvalidFormat))
		return
	}

	if frame.Type != protocol.TypeChat {
		s.reject(conn, protocol.NewSystem(protocol.NoticeUnsupportedType))
		return
	}

	to := strings.TrimSpace(frame.To)
	text := strings.TrimSpace(frame.Text)
	if to == "" || text == "" {
		s.reject(conn, protocol.NewSystem(protocol.NoticeMissingFields))
		return
	}

	sender := &domain.User{ID: conn.UserID, Username: conn.Username}
	recipient, err := s.svc.ResolveName(ctx, to)
	if err != nil {
		slog.Error("failed to resolve recipient", "user", conn.Username, "to", to, "error", err)
		s.fail(conn, protocol.NewSystem(protocol.NoticeNotSaved))
		return
	}
	if recipient == nil {
		s.reject(conn, protocol.NewSystem(protocol.NoticeUnknownUser, to))
		return
	}

	decision, err := s.svc.Authorize(ctx, sender, recipient, domain.MessageKindText, text)
	if err != nil {
		slog.Error("failed to authorize message", "user", conn.Username, "to", to, "error", err)
		s.fail(conn, protocol.NewSystem(protocol.NoticeNotSaved))
		return
	}
	switch decision {
	case policy.DecisionAllow:
	case policy.DecisionTooLong:
		s.reject(conn, protocol.NewSystem(protocol.NoticeTooLong, s.cfg.MaxTextLength))
		return
	default:
		s.reject(conn, protocol.NewSystem(protocol.NoticeNotFriends, to))
		return
	}

	// Persist before any delivery attempt.
	if _, err := s.svc.AppendMessage(ctx, sender, recipient, domain.MessageKindText, text, ""); err != nil {
		slog.Error("failed to store message", "user", conn.Username, "to", to, "error", err)
		s.fail(conn, protocol.NewSystem(protocol.NoticeNotSaved))
		return
	}

	target, online := s.hub.Lookup(recipient.Username)
	if !online {
		s.metrics.Frame(metrics.OutcomeOffline)
		s.send(conn, protocol.NewSystem(protocol.NoticeOffline, to))
		return
	}

	chat := protocol.NewChat(conn.Username, text)
	s.send(target, chat)
	s.send(conn, chat)
	s.metrics.Frame(metrics.OutcomeDelivered)
}

func (s *Server) reject(conn *hub.Connection, notice protocol.SystemFrame) {
	s.metrics.Frame(metrics.OutcomeRejected)
	s.send(conn, notice)
}

func (s *Server) fail(conn *hub.Connection, notice protocol.SystemFrame) {
	s.metrics.Frame(metrics.OutcomeFailed)
	s.send(conn, notice)
}

// send queues v on conn without blocking. A full or closed queue drops the
// frame.
func (s *Server) send(conn *hub.Connection, v any) {
	err := conn.SendJSON(v)
	s.metrics.Delivery(err)
	if err != nil {
		slog.Warn("dropped frame", "user", conn.Username, "conn_id", conn.ID, "error", err)
	}
}
