package helpers

import (
	"context"
	"testing"

	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/repository"
)

func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// CreateUser inserts a user with a placeholder hash.
func CreateUser(t *testing.T, s store.Store, username string) *domain.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), username, "x")
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return u
}

// MakeFriends creates an accepted relationship between a and b.
func MakeFriends(t *testing.T, s store.Store, a, b *domain.User) {
	t.Helper()

	ctx := context.Background()
	fr, err := s.CreateFriendRequest(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("CreateFriendRequest failed: %v", err)
	}
	ok, err := s.ResolveFriendRequest(ctx, fr.ID, domain.RequestStatusAccepted, fr.CreatedAt)
	if err != nil || !ok {
		t.Fatalf("ResolveFriendRequest failed: ok=%v err=%v", ok, err)
	}
}
