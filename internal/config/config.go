package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	JWTSecret    string // secret used to sign session JWTs
	AccessTTLMin int    // access token time-to-live in minutes

	AMQPURL string // RabbitMQ URL for the transition audit queue (optional)

	IdentityBaseURL string // identity provider graph API

	RecommendBaseURL string // recommendation engine API
	RecommendAPIKey  string

	StreamBaseURL string // streaming catalog API
	StreamToken   string
	StreamRegion  string // provider bucket, e.g. "rdio-US"

	TicketTimeout time.Duration // upper bound on catalog-update waits
}

// Load reads configuration from environment variables. Required variables
// are enforced by must() and missing values exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
		AMQPURL:          getenv("RABBITMQ_URL", getenv("AMQP_URL", "")),
		IdentityBaseURL:  must("IDENTITY_BASE_URL"),
		RecommendBaseURL: must("RECOMMEND_BASE_URL"),
		RecommendAPIKey:  must("RECOMMEND_API_KEY"),
		StreamBaseURL:    must("STREAM_BASE_URL"),
		StreamToken:      os.Getenv("STREAM_TOKEN"),
		StreamRegion:     getenv("STREAM_REGION", "rdio-US"),
		TicketTimeout:    duration("TICKET_TIMEOUT", 15*time.Second),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
