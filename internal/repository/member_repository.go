package repository

import (
	"context"
	"database/sql"

	"github.com/musicroom/musicroom/internal/model"
)

type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// Add ensures the membership pair exists. Re-adding is a no-op.
func (r *MemberRepo) Add(ctx context.Context, roomID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO room_members (room_id, user_id) VALUES (?,?)", roomID, userID)
	return err
}

// Remove deletes the membership pair. Removing an absent pair is a no-op.
func (r *MemberRepo) Remove(ctx context.Context, roomID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM room_members WHERE room_id=? AND user_id=?", roomID, userID)
	return err
}

// Exists reports whether the user is a member of the room.
func (r *MemberRepo) Exists(ctx context.Context, roomID, userID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM room_members WHERE room_id=? AND user_id=? LIMIT 1", roomID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns the room's members.
func (r *MemberRepo) List(ctx context.Context, roomID string) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT u.id, u.name, u.loaded FROM users u JOIN room_members m ON m.user_id = u.id WHERE m.room_id=?",
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Loaded); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the room's member count.
func (r *MemberRepo) Count(ctx context.Context, roomID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(user_id) FROM room_members WHERE room_id=?", roomID).Scan(&n)
	return n, err
}

// DeleteByRoom removes all membership rows for a room (room deletion cascade).
func (r *MemberRepo) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM room_members WHERE room_id=?", roomID)
	return err
}
