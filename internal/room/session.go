package room

import (
	"context"
	"errors"

	"github.com/musicroom/musicroom/internal/model"
	"github.com/musicroom/musicroom/internal/recommend"
)

// Sessions caches the engine-side playlist session each room plays from.
// Sessions expire server-side; Ensure heals that transparently.
type Sessions struct {
	rooms    RoomStore
	engine   Engine
	catalogs *Catalogs
	prefs    *Preferences

	// opts pin every session to one track catalog's regional buckets and a
	// catalog-radio playlist type; the orchestrator never varies them.
	opts recommend.SessionOptions
}

// Ensure returns a playlist session id known-valid to the engine at this
// instant. With regenerate=false a live stored session is reused as is; with
// regenerate=true (or when the stored session has expired) the member
// preferences are reconciled into the seed catalog first and the session is
// restarted or recreated from it.
func (s *Sessions) Ensure(ctx context.Context, room *model.Room, regenerate bool) (string, error) {
	const op = "room.session"
	if room.PlaylistSessionID != "" {
		err := s.engine.ResolveSession(ctx, room.PlaylistSessionID)
		switch {
		case err == nil && !regenerate:
			return room.PlaylistSessionID, nil
		case err == nil:
			catalogID, err := s.reweight(ctx, room)
			if err != nil {
				return "", err
			}
			if err := s.engine.RestartSession(ctx, room.PlaylistSessionID, catalogID, s.opts); err != nil {
				return "", E(KindExternal, op, err)
			}
			return room.PlaylistSessionID, nil
		case !errors.Is(err, recommend.ErrNotFound):
			return "", E(KindExternal, op, err)
		}
		// Stored session expired; fall through to a fresh one.
	}

	catalogID, err := s.reweight(ctx, room)
	if err != nil {
		return "", err
	}
	sessionID, err := s.engine.CreateSession(ctx, catalogID, s.opts)
	if err != nil {
		return "", E(KindExternal, op, err)
	}
	if err := s.rooms.SetPlaylistSession(ctx, room.ID, sessionID); err != nil {
		return "", coerce(op, err)
	}
	room.PlaylistSessionID = sessionID
	return sessionID, nil
}

// reweight pushes the room's current artist counts through the seed catalog
// and waits for the engine to absorb them.
func (s *Sessions) reweight(ctx context.Context, room *model.Room) (string, error) {
	catalogID, err := s.catalogs.Ensure(ctx, room)
	if err != nil {
		return "", err
	}
	counts, err := s.prefs.ArtistCounts(ctx, room.ID)
	if err != nil {
		return "", err
	}
	// An empty count set is submitted too: it clears stale weights left by
	// departed members.
	ticket, err := s.catalogs.UpdateWeights(ctx, catalogID, counts)
	if err != nil {
		return "", err
	}
	if err := s.catalogs.AwaitTicket(ctx, ticket); err != nil {
		return "", err
	}
	return catalogID, nil
}
