package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/musicroom/musicroom/internal/handler"
	"github.com/musicroom/musicroom/internal/middleware"
)

// Deps carries everything the router needs to mount the HTTP surface.
type Deps struct {
	Auth      *handler.AuthHandler
	Rooms     *handler.RoomHandler
	Public    *handler.PublicHandler
	JWTSecret string
	RateLimit echo.MiddlewareFunc
}

// New mounts all routes. The findable-room directory and login are public;
// everything else sits behind JWT auth plus the per-user rate limiter.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	e.GET("/healthz", handler.Health)
	e.GET("/v1/rooms", d.Public.ListRooms)
	e.POST("/v1/auth/login", d.Auth.Login)

	v1 := e.Group("/v1", middleware.JWTAuth(d.JWTSecret), d.RateLimit)
	v1.GET("/me", d.Auth.Me)
	v1.GET("/playback/token", d.Rooms.PlaybackToken)

	v1.POST("/rooms", d.Rooms.Create)
	v1.GET("/rooms/:id", d.Rooms.Get)
	v1.DELETE("/rooms/:id", d.Rooms.Delete)
	v1.POST("/rooms/:id/join", d.Rooms.Join)
	v1.POST("/rooms/:id/leave", d.Rooms.Leave)
	v1.POST("/rooms/:id/rate", d.Rooms.Rate)
	v1.POST("/rooms/:id/start", d.Rooms.Start)
	v1.POST("/rooms/:id/advance", d.Rooms.Advance)

	return e
}
