package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/musicroom/musicroom/internal/room"
	"github.com/musicroom/musicroom/internal/streaming"
)

// RoomHandler exposes the room orchestrator over HTTP. All routes require an
// authenticated user; ownership checks happen inside the service.
type RoomHandler struct {
	Svc    *room.Service
	Stream *streaming.Client
}

type createRoomRequest struct {
	Name     string `json:"name"`
	Findable bool   `json:"findable"`
}

func (h *RoomHandler) Create(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	r, err := h.Svc.CreateRoom(c.Request().Context(), userID, req.Name, req.Findable)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *RoomHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	roomID := c.Param("id")

	r, err := h.Svc.Room(ctx, roomID)
	if err != nil {
		return respondError(c, err)
	}
	members, err := h.Svc.Members(ctx, roomID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room":    r,
		"members": members,
	})
}

func (h *RoomHandler) Delete(c echo.Context) error {
	userID := c.Get("user_id").(string)
	if err := h.Svc.DeleteRoom(c.Request().Context(), c.Param("id"), userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoomHandler) Join(c echo.Context) error {
	userID := c.Get("user_id").(string)
	if err := h.Svc.JoinRoom(c.Request().Context(), c.Param("id"), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "joined"})
}

func (h *RoomHandler) Leave(c echo.Context) error {
	userID := c.Get("user_id").(string)
	if err := h.Svc.LeaveRoom(c.Request().Context(), c.Param("id"), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "left"})
}

type rateRequest struct {
	Value int `json:"value"`
}

func (h *RoomHandler) Rate(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Svc.Rate(c.Request().Context(), c.Param("id"), userID, req.Value); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "rated"})
}

func (h *RoomHandler) Start(c echo.Context) error {
	userID := c.Get("user_id").(string)
	preview, err := h.Svc.Start(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"preview": preview})
}

func (h *RoomHandler) Advance(c echo.Context) error {
	userID := c.Get("user_id").(string)
	current, preview, err := h.Svc.Advance(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"current": current,
		"preview": preview,
	})
}

// PlaybackToken proxies the streaming provider's short-lived player token so
// the browser never sees provider credentials.
func (h *RoomHandler) PlaybackToken(c echo.Context) error {
	token, err := h.Stream.PlaybackToken(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "playback token unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":  token,
		"region": strings.TrimSpace(h.Stream.Region()),
	})
}
