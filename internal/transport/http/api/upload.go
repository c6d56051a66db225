package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Upload stores a file and shares it with a friend.
// POST /upload?to_username=... (multipart field "file")
func (h *Handler) Upload(c echo.Context) error {
	to := c.QueryParam("to_username")
	if to == "" {
		to = c.FormValue("to_username")
	}
	if to == "" {
		return invalidInput(c, "to_username is required")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return invalidInput(c, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return invalidInput(c, "file could not be read")
	}
	defer src.Close()

	frame, err := h.service.ShareFile(c.Request().Context(), currentUser(c), to, fh.Filename, src)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, frame)
}
