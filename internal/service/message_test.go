package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/tests/helpers"
)

func TestHistoryErrors(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	alice := helpers.CreateUser(t, db, "alice")
	helpers.CreateUser(t, db, "bob")

	_, err := svc.History(ctx, alice, "ghost", 10)
	assertKind(t, err, domain.KindNotFound)
	assert.Equal(t, "Friend not found", domain.MessageOf(err))

	_, err = svc.History(ctx, alice, "bob", 10)
	assertKind(t, err, domain.KindForbidden)
	assert.Equal(t, "You are not friends with this user", domain.MessageOf(err))
}

func TestHistoryLimitOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	svc.config.HistoryDefaultLimit = 3
	svc.config.HistoryMaxLimit = 4

	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")
	carol := helpers.CreateUser(t, db, "carol")
	helpers.MakeFriends(t, db, alice, bob)
	helpers.MakeFriends(t, db, alice, carol)

	for i := 0; i < 6; i++ {
		from, to := alice, bob
		if i%2 == 1 {
			from, to = bob, alice
		}
		_, err := svc.AppendMessage(ctx, from, to, domain.MessageKindText, fmt.Sprintf("m%d", i), "")
		require.NoError(t, err)
	}
	_, err := svc.AppendMessage(ctx, alice, carol, domain.MessageKindText, "for carol", "")
	require.NoError(t, err)

	msgs, err := svc.History(ctx, alice, "bob", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m4", msgs[0].Text)
	assert.Equal(t, "m5", msgs[1].Text)

	msgs, err = svc.History(ctx, bob, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 3, "non-positive limit uses the default")

	msgs, err = svc.History(ctx, alice, "bob", 1000)
	require.NoError(t, err)
	assert.Len(t, msgs, 4, "limit is clamped to the maximum")

	msgs, err = svc.History(ctx, carol, "alice", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "for carol", msgs[0].Text)
	assert.Equal(t, "alice", msgs[0].FromUsername)
	assert.Equal(t, "carol", msgs[0].ToUsername)
}
