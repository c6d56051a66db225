// Package store defines the storage interface and its SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/xiaot623/pingpong/internal/domain"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// Store defines the interface for data persistence.
// Lookups return (nil, nil) when the record does not exist.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetCredentials(ctx context.Context, username string) (*domain.Credentials, error)

	// Session operations
	CreateSession(ctx context.Context, token string, userID int64) error
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)

	// Friend request operations
	CreateFriendRequest(ctx context.Context, fromUserID, toUserID int64) (*domain.FriendRequest, error)
	GetFriendRequest(ctx context.Context, requestID int64) (*domain.FriendRequest, error)
	GetFriendRequestBetween(ctx context.Context, userA, userB int64) (*domain.FriendRequest, error)
	ResolveFriendRequest(ctx context.Context, requestID int64, status domain.RequestStatus, respondedAt time.Time) (bool, error)
	AreFriends(ctx context.Context, userA, userB int64) (bool, error)
	ListFriends(ctx context.Context, userID int64) ([]domain.FriendItem, error)
	ListIncomingRequests(ctx context.Context, userID int64) ([]domain.IncomingRequestItem, error)
	ListOutgoingRequests(ctx context.Context, userID int64) ([]domain.OutgoingRequestItem, error)

	// Message operations
	CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	GetConversation(ctx context.Context, userA, userB int64, limit int) ([]domain.Message, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
