package room

import (
	"context"

	"github.com/musicroom/musicroom/internal/model"
)

// Memberships tracks who is in a room. Join and Leave are idempotent; store
// failures propagate, there are no other failure modes.
type Memberships struct {
	members MemberStore
	ratings RatingStore
}

// Join ensures the membership and reports whether it is new.
func (m *Memberships) Join(ctx context.Context, roomID, userID string) (bool, error) {
	const op = "room.join"
	already, err := m.members.Exists(ctx, roomID, userID)
	if err != nil {
		return false, coerce(op, err)
	}
	if already {
		return false, nil
	}
	if err := m.members.Add(ctx, roomID, userID); err != nil {
		return false, coerce(op, err)
	}
	return true, nil
}

// Leave removes the membership. The member's vote leaves with them so the
// rating sum never exceeds the member count in magnitude.
func (m *Memberships) Leave(ctx context.Context, roomID, userID string) error {
	const op = "room.leave"
	if err := m.members.Remove(ctx, roomID, userID); err != nil {
		return coerce(op, err)
	}
	if err := m.ratings.Delete(ctx, roomID, userID); err != nil {
		return coerce(op, err)
	}
	return nil
}

// IsMember reports membership.
func (m *Memberships) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	ok, err := m.members.Exists(ctx, roomID, userID)
	if err != nil {
		return false, coerce("room.members", err)
	}
	return ok, nil
}

// Members lists the room's members.
func (m *Memberships) Members(ctx context.Context, roomID string) ([]model.User, error) {
	users, err := m.members.List(ctx, roomID)
	if err != nil {
		return nil, coerce("room.members", err)
	}
	return users, nil
}

// Count returns the room's population.
func (m *Memberships) Count(ctx context.Context, roomID string) (int, error) {
	n, err := m.members.Count(ctx, roomID)
	if err != nil {
		return 0, coerce("room.members", err)
	}
	return n, nil
}

// PurgeRoom removes all membership and rating rows for a deleted room.
func (m *Memberships) PurgeRoom(ctx context.Context, roomID string) error {
	const op = "room.delete"
	if err := m.members.DeleteByRoom(ctx, roomID); err != nil {
		return coerce(op, err)
	}
	if err := m.ratings.DeleteByRoom(ctx, roomID); err != nil {
		return coerce(op, err)
	}
	return nil
}
