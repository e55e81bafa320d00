package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/musicroom/musicroom/internal/room"
)

// PublicHandler serves the unauthenticated surface: the findable-room
// directory shown on the landing page.
type PublicHandler struct {
	Svc *room.Service
}

func (h *PublicHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Svc.PublicRooms(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}
