package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/policy"
	"github.com/xiaot623/pingpong/tests/helpers"
)

func TestCreateRequestErrors(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")

	_, err := svc.CreateRequest(ctx, alice, "ghost")
	assertKind(t, err, domain.KindNotFound)
	assert.Equal(t, "Target user does not exist", domain.MessageOf(err))

	_, err = svc.CreateRequest(ctx, alice, "alice")
	assertKind(t, err, domain.KindInvalidSelfTarget)

	fr, err := svc.CreateRequest(ctx, alice, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, fr.Status)
	assert.Equal(t, "alice", fr.FromUsername)
	assert.Equal(t, "bob", fr.ToUsername)

	_, err = svc.CreateRequest(ctx, alice, "bob")
	assertKind(t, err, domain.KindAlreadyRelated)
	assert.Equal(t, "A pending friend request already exists", domain.MessageOf(err))

	_, err = svc.CreateRequest(ctx, bob, "alice")
	assertKind(t, err, domain.KindAlreadyRelated)

	_, err = svc.Respond(ctx, fr.ID, bob, true)
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, bob, "alice")
	assert.Equal(t, "You are already friends", domain.MessageOf(err))
}

func TestCreateRequestAfterRejection(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")

	fr, err := svc.CreateRequest(ctx, alice, "bob")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, fr.ID, bob, false)
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, alice, "bob")
	assertKind(t, err, domain.KindAlreadyRelated)
	assert.Equal(t, "A friend request already exists", domain.MessageOf(err))
}

func TestRespondErrors(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")
	carol := helpers.CreateUser(t, db, "carol")

	_, err := svc.Respond(ctx, 999, bob, true)
	assertKind(t, err, domain.KindNotFound)

	fr, err := svc.CreateRequest(ctx, alice, "bob")
	require.NoError(t, err)

	_, err = svc.Respond(ctx, fr.ID, alice, true)
	assertKind(t, err, domain.KindForbidden)
	_, err = svc.Respond(ctx, fr.ID, carol, true)
	assertKind(t, err, domain.KindForbidden)

	resolved, err := svc.Respond(ctx, fr.ID, bob, false)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, resolved.Status)
	assert.NotNil(t, resolved.RespondedAt)

	_, err = svc.Respond(ctx, fr.ID, bob, true)
	assertKind(t, err, domain.KindInvalidState)

	ok, err := svc.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok, "rejected request must not make friends")
}

func TestRespondConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")

	fr, err := svc.CreateRequest(ctx, alice, "bob")
	require.NoError(t, err)

	const responders = 12
	var wg sync.WaitGroup
	results := make([]error, responders)
	for i := 0; i < responders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Respond(ctx, fr.ID, bob, i%2 == 0)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		assertKind(t, err, domain.KindInvalidState)
	}
	assert.Equal(t, 1, successes)

	final, err := db.GetFriendRequest(ctx, fr.ID)
	require.NoError(t, err)
	assert.True(t, final.Status.Terminal())
}

func TestAreFriendsSymmetric(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")

	fr, err := svc.CreateRequest(ctx, bob, "alice")
	require.NoError(t, err)

	for _, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		ok, err := svc.AreFriends(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.False(t, ok)
	}

	_, err = svc.Respond(ctx, fr.ID, alice, true)
	require.NoError(t, err)

	for _, pair := range [][2]int64{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		ok, err := svc.AreFriends(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")
	helpers.CreateUser(t, db, "carol")
	dave := helpers.CreateUser(t, db, "dave")

	helpers.MakeFriends(t, db, alice, bob)
	_, err := svc.CreateRequest(ctx, alice, "carol")
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, dave, "alice")
	require.NoError(t, err)

	summary, err := svc.Summarize(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, summary.Friends, 1)
	assert.Equal(t, "bob", summary.Friends[0].Username)
	require.Len(t, summary.IncomingRequests, 1)
	assert.Equal(t, "dave", summary.IncomingRequests[0].FromUsername)
	require.Len(t, summary.OutgoingRequests, 1)
	assert.Equal(t, "carol", summary.OutgoingRequests[0].ToUsername)
	assert.Equal(t, domain.RequestStatusPending, summary.OutgoingRequests[0].Status)

	empty, err := svc.Summarize(ctx, dave.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Friends)
	assert.Empty(t, empty.IncomingRequests)
	assert.Len(t, empty.OutgoingRequests, 1)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	svc.config.MaxTextLength = 5
	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")

	decision, err := svc.Authorize(ctx, alice, bob, domain.MessageKindText, "hi")
	require.NoError(t, err)
	assert.Equal(t, policy.DecisionNotFriends, decision)

	helpers.MakeFriends(t, db, alice, bob)

	decision, err = svc.Authorize(ctx, alice, bob, domain.MessageKindText, "hi")
	require.NoError(t, err)
	assert.Equal(t, policy.DecisionAllow, decision)

	decision, err = svc.Authorize(ctx, bob, alice, domain.MessageKindText, "way too long")
	require.NoError(t, err)
	assert.Equal(t, policy.DecisionTooLong, decision)
}
