package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/pingpong/internal/domain"
)

// SendFriendRequest opens a friend request to another user.
// POST /friends/request
func (h *Handler) SendFriendRequest(c echo.Context) error {
	var req domain.FriendRequestBody
	if err := c.Bind(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, "to_username is required")
	}

	fr, err := h.service.CreateRequest(c.Request().Context(), currentUser(c), req.ToUsername)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fr)
}

// RespondFriendRequest accepts or rejects a pending request.
// POST /friends/respond
func (h *Handler) RespondFriendRequest(c echo.Context) error {
	var req domain.FriendRespondBody
	if err := c.Bind(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, "request_id and accept are required")
	}

	fr, err := h.service.Respond(c.Request().Context(), req.RequestID, currentUser(c), *req.Accept)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, fr)
}

// ListFriends returns friends and pending requests.
// GET /friends
func (h *Handler) ListFriends(c echo.Context) error {
	summary, err := h.service.Summarize(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
