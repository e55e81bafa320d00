package database

import (
	"context"
	"database/sql"
)

// Schema statements are idempotent so Migrate can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id                  CHAR(8)      NOT NULL PRIMARY KEY,
		name                VARCHAR(190) NOT NULL,
		findable            TINYINT(1)   NOT NULL DEFAULT 1,
		status              VARCHAR(16)  NOT NULL DEFAULT 'created',
		owner_id            VARCHAR(64)  NOT NULL,
		seed_catalog_id     VARCHAR(64)  NULL,
		playlist_session_id VARCHAR(64)  NULL,
		cur_song_id         VARCHAR(64)  NULL,
		cur_track_id        VARCHAR(64)  NULL,
		cur_artist          VARCHAR(190) NULL,
		cur_title           VARCHAR(190) NULL,
		created_at          TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_rooms_owner (owner_id),
		KEY idx_rooms_findable (findable)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
		id     VARCHAR(64)  NOT NULL PRIMARY KEY,
		name   VARCHAR(190) NOT NULL,
		loaded TINYINT(1)   NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS room_members (
		room_id CHAR(8)     NOT NULL,
		user_id VARCHAR(64) NOT NULL,
		PRIMARY KEY (room_id, user_id),
		KEY idx_members_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS song_ratings (
		room_id CHAR(8)     NOT NULL,
		user_id VARCHAR(64) NOT NULL,
		rating  TINYINT     NOT NULL,
		PRIMARY KEY (room_id, user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS artist_likes (
		user_id   VARCHAR(64) NOT NULL,
		artist_id VARCHAR(64) NOT NULL,
		PRIMARY KEY (user_id, artist_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
