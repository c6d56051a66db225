package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetHistory returns the conversation with a friend, oldest first.
// GET /history?friend_username=...&limit=...
func (h *Handler) GetHistory(c echo.Context) error {
	friend := c.QueryParam("friend_username")
	if friend == "" {
		return invalidInput(c, "friend_username is required")
	}
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		val, err := strconv.Atoi(l)
		if err != nil {
			return invalidInput(c, "limit must be an integer")
		}
		limit = val
	}

	messages, err := h.service.History(c.Request().Context(), currentUser(c), friend, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}
