package api

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/pingpong/internal/domain"
)

const userKey = "user"

// RequireToken resolves the session token from ?token= or a bearer header
// and stores the user in the context.
func (h *Handler) RequireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}

		user, err := h.service.Authenticate(c.Request().Context(), token)
		if err != nil {
			return writeError(c, err)
		}
		c.Set(userKey, user)
		return next(c)
	}
}

func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userKey).(*domain.User)
	return user
}
