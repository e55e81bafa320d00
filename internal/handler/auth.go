package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/musicroom/musicroom/internal/room"
	"github.com/musicroom/musicroom/internal/utils"
)

// AuthHandler exchanges identity-provider access tokens for session JWTs.
type AuthHandler struct {
	Svc          *room.Service
	JWTSecret    string
	AccessTTLMin int
}

type loginRequest struct {
	AccessToken string `json:"access_token"`
}

// Login resolves the provider token, creating the user row and importing the
// liked-artist set on first login, and issues a session JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.AccessToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access_token is required"})
	}

	user, err := h.Svc.EnsureUser(c.Request().Context(), req.AccessToken)
	if err != nil {
		return respondError(c, err)
	}

	token, err := utils.NewAccessToken(h.JWTSecret, user.ID, user.Name, h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not sign token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":      token.Token,
		"expires_at": token.Exp,
		"user":       user,
	})
}

// Me returns the caller's profile along with the rooms they own and the rooms
// they have joined.
func (h *AuthHandler) Me(c echo.Context) error {
	userID := c.Get("user_id").(string)
	ctx := c.Request().Context()

	user, err := h.Svc.User(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	owned, err := h.Svc.OwnedRooms(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	joined, err := h.Svc.JoinedRooms(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":         user,
		"owned_rooms":  owned,
		"joined_rooms": joined,
	})
}
