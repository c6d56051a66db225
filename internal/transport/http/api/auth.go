package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/pingpong/internal/domain"
)

// Register creates an identity.
// POST /register
func (h *Handler) Register(c echo.Context) error {
	var req domain.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, credentialsMessage(err))
	}

	user, err := h.service.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, domain.MeResponse{ID: user.ID, Username: user.Username})
}

// Login verifies a credential and issues a session token.
// POST /login
func (h *Handler) Login(c echo.Context) error {
	var req domain.LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidInput(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return invalidInput(c, "Username and password are required")
	}

	resp, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Me describes the authenticated user.
// GET /me
func (h *Handler) Me(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, domain.MeResponse{ID: user.ID, Username: user.Username})
}

// credentialsMessage names the first length violation, if any.
func credentialsMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "max" {
				return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
			}
		}
	}
	return "Username and password are required"
}
