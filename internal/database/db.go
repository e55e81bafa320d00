// Package database owns the MySQL pool and the schema it serves. Connect is
// the single entry point: it opens the pool, verifies the server is
// reachable, and applies the idempotent schema so the process starts against
// a known layout.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Params identify the MySQL server and schema to connect to.
type Params struct {
	User string
	Pass string // optional
	Host string
	Port string
	Name string
}

// Connect opens the pool, pings it, and runs the schema migration. The pool
// is sized for this service's workload: short single-row statements, with
// room mutations already serialized per room upstream, so a small pool is
// enough and keeps pressure off the server.
func Connect(ctx context.Context, p Params) (*sql.DB, error) {
	auth := p.User
	if p.Pass != "" {
		auth = fmt.Sprintf("%s:%s", p.User, p.Pass)
	}
	// parseTime so DATETIME columns scan into time.Time; loc=UTC because the
	// transition audit trail timestamps in UTC.
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, p.Host, p.Port, p.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: migrate: %w", err)
	}
	return db, nil
}
