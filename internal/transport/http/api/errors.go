package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/pingpong/internal/domain"
)

var statusByKind = map[domain.ErrorKind]int{
	domain.KindUnauthorized:      http.StatusUnauthorized,
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindInvalidSelfTarget: http.StatusBadRequest,
	domain.KindInvalidInput:      http.StatusBadRequest,
	domain.KindAlreadyRelated:    http.StatusConflict,
	domain.KindInvalidState:      http.StatusConflict,
	domain.KindAlreadyExists:     http.StatusConflict,
	domain.KindForbidden:         http.StatusForbidden,
	domain.KindPersistence:       http.StatusInternalServerError,
}

// writeError renders err as {"error": kind, "message": text}.
func writeError(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}
	return c.JSON(status, domain.ErrorResponse{Error: kind, Message: domain.MessageOf(err)})
}

func invalidInput(c echo.Context, message string) error {
	return writeError(c, domain.NewError(domain.KindInvalidInput, "%s", message))
}
