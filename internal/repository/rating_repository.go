package repository

import (
	"context"
	"database/sql"
)

type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert records the user's vote for the room's current song. A second vote
// from the same user replaces the first (last write wins).
func (r *RatingRepo) Upsert(ctx context.Context, roomID, userID string, value int) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO song_ratings (room_id, user_id, rating) VALUES (?,?,?) ON DUPLICATE KEY UPDATE rating=VALUES(rating)",
		roomID, userID, value)
	return err
}

// Sum returns the sum of all rating values for the room; zero when no votes
// have been cast.
func (r *RatingRepo) Sum(ctx context.Context, roomID string) (int, error) {
	var sum int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(rating),0) FROM song_ratings WHERE room_id=?", roomID).Scan(&sum)
	return sum, err
}

// Delete removes one user's rating for the room, if any.
func (r *RatingRepo) Delete(ctx context.Context, roomID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM song_ratings WHERE room_id=? AND user_id=?", roomID, userID)
	return err
}

// DeleteByRoom clears every rating row for the room. Called on each song
// transition (ratings are scoped to one track) and on room deletion.
func (r *RatingRepo) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM song_ratings WHERE room_id=?", roomID)
	return err
}
