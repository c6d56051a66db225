package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/pingpong/internal/domain"
)

// kindByStatus maps errors raised by echo itself to an error kind.
var kindByStatus = map[int]domain.ErrorKind{
	http.StatusBadRequest:            domain.KindInvalidInput,
	http.StatusUnauthorized:          domain.KindUnauthorized,
	http.StatusForbidden:             domain.KindForbidden,
	http.StatusNotFound:              domain.KindNotFound,
	http.StatusMethodNotAllowed:      domain.KindInvalidInput,
	http.StatusRequestEntityTooLarge: domain.KindInvalidInput,
	http.StatusUnsupportedMediaType:  domain.KindInvalidInput,
}

var messageByStatus = map[int]string{
	http.StatusRequestEntityTooLarge: "File is too large",
}

// errorHandler renders errors that reach echo, such as unknown routes or body
// limits, with the same {"error", "message"} body the handlers use.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	resp := domain.ErrorResponse{Error: domain.KindPersistence, Message: "Internal server error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if kind, ok := kindByStatus[status]; ok {
			resp.Error = kind
		} else if status < http.StatusInternalServerError {
			resp.Error = domain.KindInvalidInput
		}
		if msg, ok := messageByStatus[status]; ok {
			resp.Message = msg
		} else if status < http.StatusInternalServerError {
			resp.Message = fmt.Sprint(he.Message)
		}
	}
	if status >= http.StatusInternalServerError {
		slog.Error("unhandled error", "method", c.Request().Method, "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		slog.Warn("failed to write error response", "error", err)
	}
}
