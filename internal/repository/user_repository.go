package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/musicroom/musicroom/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Get fetches a user by id.
func (r *UserRepo) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,loaded FROM users WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.Name, &u.Loaded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Upsert inserts the user or refreshes the display name of an existing row.
// The loaded flag is never reset here; MarkLoaded owns it.
func (r *UserRepo) Upsert(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, name, loaded) VALUES (?,?,0) ON DUPLICATE KEY UPDATE name=VALUES(name)",
		u.ID, u.Name)
	return err
}

// MarkLoaded records that the user's liked-artist set has been imported.
func (r *UserRepo) MarkLoaded(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET loaded=1 WHERE id=?", id)
	return err
}
