package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/musicroom/musicroom/internal/config"
	"github.com/musicroom/musicroom/internal/database"
	"github.com/musicroom/musicroom/internal/handler"
	"github.com/musicroom/musicroom/internal/identity"
	"github.com/musicroom/musicroom/internal/middleware"
	"github.com/musicroom/musicroom/internal/queue"
	"github.com/musicroom/musicroom/internal/recommend"
	"github.com/musicroom/musicroom/internal/repository"
	"github.com/musicroom/musicroom/internal/room"
	"github.com/musicroom/musicroom/internal/router"
	"github.com/musicroom/musicroom/internal/streaming"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "musicroom",
	})
	if cfg.Env == "dev" {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Connect(ctx, database.Params{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	cancel()
	if err != nil {
		logger.Fatal("database connection failed", "err", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; room events and rate limiting disabled")
	}

	bus := queue.NewPublisher(rdb, cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go queue.StartTransitionConsumer(cfg.AMQPURL, logger)
	}

	engine := recommend.New(cfg.RecommendBaseURL, cfg.RecommendAPIKey)
	stream := streaming.New(cfg.StreamBaseURL, cfg.StreamToken, cfg.StreamRegion)
	ident := identity.New(cfg.IdentityBaseURL)

	svc := room.NewService(room.Deps{
		Rooms:    repository.NewRoomRepo(db),
		Users:    repository.NewUserRepo(db),
		Members:  repository.NewMemberRepo(db),
		Ratings:  repository.NewRatingRepo(db),
		Artists:  repository.NewArtistRepo(db),
		Engine:   engine,
		Resolver: stream,
		Identity: ident,
		Bus:      bus,
		Logger:   logger,
		SessionOptions: recommend.SessionOptions{
			Buckets: []string{"id:" + cfg.StreamRegion, "tracks"},
			Type:    "catalog-radio",
		},
		TicketTimeout: cfg.TicketTimeout,
	})

	e := router.New(router.Deps{
		Auth: &handler.AuthHandler{
			Svc:          svc,
			JWTSecret:    cfg.JWTSecret,
			AccessTTLMin: cfg.AccessTTLMin,
		},
		Rooms:     &handler.RoomHandler{Svc: svc, Stream: stream},
		Public:    &handler.PublicHandler{Svc: svc},
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}
