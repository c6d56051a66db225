package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/tests/helpers"
)

func TestFriendRequestFlow(t *testing.T) {
	e := echo.New()
	h, _, db := newTestHandler(t)
	alice := helpers.CreateUser(t, db, "alice")
	bob := helpers.CreateUser(t, db, "bob")

	send := func(user *domain.User, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/friends/request", body), rec)
		c.Set(userKey, user)
		require.NoError(t, h.SendFriendRequest(c))
		return rec
	}
	respond := func(user *domain.User, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/friends/respond", body), rec)
		c.Set(userKey, user)
		require.NoError(t, h.RespondFriendRequest(c))
		return rec
	}

	rec := send(alice, `{"to_username":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(alice, `{"to_username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.KindInvalidSelfTarget, decodeError(t, rec).Error)

	rec = send(alice, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(alice, `{"to_username":"bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var fr domain.FriendRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fr))
	assert.Equal(t, domain.RequestStatusPending, fr.Status)

	rec = send(bob, `{"to_username":"alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.KindAlreadyRelated, decodeError(t, rec).Error)

	rec = respond(bob, fmt.Sprintf(`{"request_id":%d}`, fr.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "accept is required")

	rec = respond(alice, fmt.Sprintf(`{"request_id":%d,"accept":true}`, fr.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = respond(bob, `{"request_id":999,"accept":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = respond(bob, fmt.Sprintf(`{"request_id":%d,"accept":true}`, fr.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = respond(bob, fmt.Sprintf(`{"request_id":%d,"accept":false}`, fr.ID))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.KindInvalidState, decodeError(t, rec).Error)

	rec = httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/friends", nil), rec)
	c.Set(userKey, bob)
	require.NoError(t, h.ListFriends(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"friends":[{"id":%d,"username":"alice"}],"incoming_requests":[],"outgoing_requests":[]}`, alice.ID), rec.Body.String())
}
