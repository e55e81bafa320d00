package repository

import (
	"context"
	"database/sql"
	"strings"
)

type ArtistRepo struct{ DB *sql.DB }

func NewArtistRepo(db *sql.DB) *ArtistRepo { return &ArtistRepo{DB: db} }

// Replace swaps the user's entire liked-artist set for the given ids in one
// transaction (delete-then-insert). Duplicate ids in the input collapse to
// one row.
func (r *ArtistRepo) Replace(ctx context.Context, userID string, artistIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM artist_likes WHERE user_id=?", userID); err != nil {
		return err
	}
	if len(artistIDs) > 0 {
		var (
			sb   strings.Builder
			args []any
		)
		sb.WriteString("INSERT IGNORE INTO artist_likes (user_id, artist_id) VALUES ")
		for i, id := range artistIDs {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?,?)")
			args = append(args, userID, id)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountsByRoom counts, for each artist, how many distinct members of the room
// like them. Artists liked by nobody in the room do not appear.
func (r *ArtistRepo) CountsByRoom(ctx context.Context, roomID string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT l.artist_id, COUNT(DISTINCT l.user_id) FROM room_members m JOIN artist_likes l ON l.user_id = m.user_id WHERE m.room_id=? GROUP BY l.artist_id",
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			artist string
			n      int
		)
		if err := rows.Scan(&artist, &n); err != nil {
			return nil, err
		}
		counts[artist] = n
	}
	return counts, rows.Err()
}
