package service

import (
	"context"
	"strings"
	"time"

	"github.com/xiaot623/pingpong/internal/domain"
)

// AppendMessage persists a message. It performs no authorization.
func (s *Service) AppendMessage(ctx context.Context, sender, recipient *domain.User, kind domain.MessageKind, body, locator string) (*domain.Message, error) {
	msg, err := s.store.CreateMessage(ctx, &domain.Message{
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		Kind:       kind,
		Text:       body,
		URL:        locator,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return nil, domain.Persistence(err, "failed to store message")
	}
	s.metrics.MessageStored(string(kind))
	return msg, nil
}

// History returns the most recent messages between user and friendName,
// oldest first. A non-positive limit selects the default; larger limits are
// clamped.
func (s *Service) History(ctx context.Context, user *domain.User, friendName string, limit int) ([]domain.Message, error) {
	friend, err := s.ResolveName(ctx, strings.TrimSpace(friendName))
	if err != nil {
		return nil, err
	}
	if friend == nil {
		return nil, domain.NewError(domain.KindNotFound, "Friend not found")
	}

	ok, err := s.AreFriends(ctx, user.ID, friend.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewError(domain.KindForbidden, "You are not friends with this user")
	}

	messages, err := s.store.GetConversation(ctx, user.ID, friend.ID, s.historyLimit(limit))
	if err != nil {
		return nil, domain.Persistence(err, "failed to load history")
	}
	return messages, nil
}

func (s *Service) historyLimit(limit int) int {
	if limit <= 0 {
		return s.config.HistoryDefaultLimit
	}
	if limit > s.config.HistoryMaxLimit {
		return s.config.HistoryMaxLimit
	}
	return limit
}
