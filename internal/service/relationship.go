package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/policy"
	"github.com/xiaot623/pingpong/internal/repository"
)

// CreateRequest opens a pending friend request from initiator to targetName.
func (s *Service) CreateRequest(ctx context.Context, initiator *domain.User, targetName string) (*domain.FriendRequest, error) {
	target, err := s.ResolveName(ctx, strings.TrimSpace(targetName))
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.NewError(domain.KindNotFound, "Target user does not exist")
	}
	if target.ID == initiator.ID {
		return nil, domain.NewError(domain.KindInvalidSelfTarget, "Cannot add yourself as a friend")
	}

	existing, err := s.store.GetFriendRequestBetween(ctx, initiator.ID, target.ID)
	if err != nil {
		return nil, domain.Persistence(err, "failed to load friend request")
	}
	if existing != nil {
		return nil, alreadyRelated(existing)
	}

	fr, err := s.store.CreateFriendRequest(ctx, initiator.ID, target.ID)
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with a concurrent request for the same pair.
		existing, rerr := s.store.GetFriendRequestBetween(ctx, initiator.ID, target.ID)
		if rerr != nil || existing == nil {
			return nil, domain.NewError(domain.KindAlreadyRelated, "A friend request already exists")
		}
		return nil, alreadyRelated(existing)
	}
	if err != nil {
		return nil, domain.Persistence(err, "failed to create friend request")
	}

	s.metrics.FriendRequest(string(domain.RequestStatusPending))
	slog.Info("friend request created", "request_id", fr.ID, "from", fr.FromUsername, "to", fr.ToUsername)
	return fr, nil
}

func alreadyRelated(fr *domain.FriendRequest) error {
	switch fr.Status {
	case domain.RequestStatusAccepted:
		return domain.NewError(domain.KindAlreadyRelated, "You are already friends")
	case domain.RequestStatusPending:
		return domain.NewError(domain.KindAlreadyRelated, "A pending friend request already exists")
	default:
		return domain.NewError(domain.KindAlreadyRelated, "A friend request already exists")
	}
}

// Respond accepts or rejects a pending request addressed to responder.
// Only the first of several concurrent responses takes effect.
func (s *Service) Respond(ctx context.Context, requestID int64, responder *domain.User, accept bool) (*domain.FriendRequest, error) {
	fr, err := s.store.GetFriendRequest(ctx, requestID)
	if err != nil {
		return nil, domain.Persistence(err, "failed to load friend request")
	}
	if fr == nil {
		return nil, domain.NewError(domain.KindNotFound, "Friend request not found")
	}
	if fr.ToUserID != responder.ID {
		return nil, domain.NewError(domain.KindForbidden, "You are not allowed to respond to this request")
	}
	if fr.Status != domain.RequestStatusPending {
		return nil, domain.NewError(domain.KindInvalidState, "Friend request is not pending")
	}

	status := domain.RequestStatusRejected
	if accept {
		status = domain.RequestStatusAccepted
	}
	ok, err := s.store.ResolveFriendRequest(ctx, requestID, status, time.Now())
	if err != nil {
		return nil, domain.Persistence(err, "failed to update friend request")
	}
	if !ok {
		return nil, domain.NewError(domain.KindInvalidState, "Friend request is not pending")
	}

	updated, err := s.store.GetFriendRequest(ctx, requestID)
	if err != nil || updated == nil {
		return nil, domain.Persistence(err, "failed to reload friend request")
	}

	s.metrics.FriendRequest(string(status))
	slog.Info("friend request resolved", "request_id", requestID, "status", status, "by", responder.Username)
	return updated, nil
}

// Summarize lists the user's friends and pending requests in both directions.
func (s *Service) Summarize(ctx context.Context, userID int64) (*domain.FriendSummary, error) {
	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, domain.Persistence(err, "failed to list friends")
	}
	incoming, err := s.store.ListIncomingRequests(ctx, userID)
	if err != nil {
		return nil, domain.Persistence(err, "failed to list incoming requests")
	}
	outgoing, err := s.store.ListOutgoingRequests(ctx, userID)
	if err != nil {
		return nil, domain.Persistence(err, "failed to list outgoing requests")
	}
	return &domain.FriendSummary{
		Friends:          friends,
		IncomingRequests: incoming,
		OutgoingRequests: outgoing,
	}, nil
}

// AreFriends reports whether an accepted request exists between a and b.
// The answer always comes from the store.
func (s *Service) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	ok, err := s.store.AreFriends(ctx, a, b)
	if err != nil {
		return false, domain.Persistence(err, "failed to check friendship")
	}
	return ok, nil
}

// Authorize decides whether sender may send a message of kind with body
// to recipient. It returns the policy decision.
func (s *Service) Authorize(ctx context.Context, sender, recipient *domain.User, kind domain.MessageKind, body string) (string, error) {
	friends, err := s.AreFriends(ctx, sender.ID, recipient.ID)
	if err != nil {
		return "", err
	}
	if s.policyEngine == nil {
		if !friends {
			return policy.DecisionNotFriends, nil
		}
		return policy.DecisionAllow, nil
	}

	decision, err := s.policyEngine.Evaluate(ctx, policy.Input{
		AreFriends: friends,
		Kind:       string(kind),
		Length:     len([]rune(body)),
		MaxLength:  s.config.MaxTextLength,
	})
	if err != nil {
		return "", err
	}
	return decision, nil
}
