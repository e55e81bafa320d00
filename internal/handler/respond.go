package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/musicroom/musicroom/internal/room"
)

// respondError maps orchestrator error kinds to HTTP statuses. The error's
// message is returned verbatim; kinds the map does not know fall back to 500.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch room.KindOf(err) {
	case room.KindNotFound:
		status = http.StatusNotFound
	case room.KindForbidden:
		status = http.StatusForbidden
	case room.KindInvalid:
		status = http.StatusBadRequest
	case room.KindPrecondition:
		status = http.StatusPreconditionFailed
	case room.KindAuthExpired:
		status = http.StatusUnauthorized
	case room.KindExternal:
		status = http.StatusBadGateway
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
