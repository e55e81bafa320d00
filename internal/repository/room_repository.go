package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/musicroom/musicroom/internal/model"
)

type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "id,name,findable,status,owner_id,seed_catalog_id,playlist_session_id,cur_song_id,cur_track_id,cur_artist,cur_title"

// Create inserts a new room row. A primary-key collision is reported as
// ErrDuplicateID so the caller can retry with a different candidate id.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (id, name, findable, status, owner_id) VALUES (?,?,?,?,?)",
		room.ID, room.Name, room.Findable, room.Status, room.OwnerID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// Get fetches a room by id.
func (r *RoomRepo) Get(ctx context.Context, id string) (*model.Room, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id=? LIMIT 1", id)
	return scanRoom(row)
}

// Delete removes the room row itself. Membership and rating rows are removed
// by their own repositories before this is called.
func (r *RoomRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Findable lists rooms created with findable=true, newest first.
func (r *RoomRepo) Findable(ctx context.Context) ([]model.Room, error) {
	return r.list(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE findable=1 ORDER BY created_at DESC")
}

// OwnedBy lists rooms owned by the given user.
func (r *RoomRepo) OwnedBy(ctx context.Context, userID string) ([]model.Room, error) {
	return r.list(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE owner_id=? ORDER BY created_at DESC", userID)
}

// JoinedBy lists rooms the given user is a member of.
func (r *RoomRepo) JoinedBy(ctx context.Context, userID string) ([]model.Room, error) {
	return r.list(ctx,
		"SELECT "+prefixed(roomColumns, "r.")+" FROM rooms r JOIN room_members m ON m.room_id = r.id WHERE m.user_id=? ORDER BY r.created_at DESC",
		userID)
}

// SetSeedCatalog records the external catalog handle on the room.
func (r *RoomRepo) SetSeedCatalog(ctx context.Context, id, catalogID string) error {
	return r.update(ctx, "UPDATE rooms SET seed_catalog_id=? WHERE id=?", catalogID, id)
}

// SetPlaylistSession records the external playlist-session handle on the room.
func (r *RoomRepo) SetPlaylistSession(ctx context.Context, id, sessionID string) error {
	return r.update(ctx, "UPDATE rooms SET playlist_session_id=? WHERE id=?", sessionID, id)
}

// SetStatus moves the room between lifecycle statuses.
func (r *RoomRepo) SetStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, "UPDATE rooms SET status=? WHERE id=?", status, id)
}

// SetCurrentSong commits the new current song in a single UPDATE so readers
// never observe a half-updated song record.
func (r *RoomRepo) SetCurrentSong(ctx context.Context, id string, song model.Song) error {
	return r.update(ctx,
		"UPDATE rooms SET cur_song_id=?, cur_track_id=?, cur_artist=?, cur_title=? WHERE id=?",
		song.SongID, song.TrackID, song.Artist, song.Title, id)
}

func (r *RoomRepo) update(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero rows can also mean an unchanged value; confirm existence.
		var one int
		id := args[len(args)-1]
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id=?", id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRoomNotFound
			}
			return err
		}
	}
	return nil
}

func (r *RoomRepo) list(ctx context.Context, query string, args ...any) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRoom(row rowScanner) (*model.Room, error) {
	var (
		room                           model.Room
		catalogID, sessionID           sql.NullString
		songID, trackID, artist, title sql.NullString
	)
	err := row.Scan(&room.ID, &room.Name, &room.Findable, &room.Status, &room.OwnerID,
		&catalogID, &sessionID, &songID, &trackID, &artist, &title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	room.SeedCatalogID = catalogID.String
	room.PlaylistSessionID = sessionID.String
	if songID.Valid {
		room.CurrentSong = &model.Song{
			SongID:  songID.String,
			TrackID: trackID.String,
			Artist:  artist.String,
			Title:   title.String,
		}
	}
	return &room, nil
}

func prefixed(columns, prefix string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + p
	}
	return strings.Join(parts, ",")
}
