package room

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/musicroom/musicroom/internal/model"
	"github.com/musicroom/musicroom/internal/queue"
)

// Transitions moves rooms between tracks. Within one advance the order is
// fixed: feedback on the outgoing song (computed from the pre-reset votes),
// then next-track selection, then the song commit, then the rating reset,
// then the broadcast. Callers serialize advances per room.
type Transitions struct {
	rooms    RoomStore
	members  *Memberships
	prefs    *Preferences
	sessions *Sessions
	engine   Engine
	resolver TrackResolver
	bus      EventBus
	logger   *log.Logger
}

// Start arms a fresh room: it forces catalog reweighting from the current
// membership, then returns the first preview without publishing (there is no
// prior song to transition from).
func (t *Transitions) Start(ctx context.Context, room *model.Room) (model.Song, error) {
	const op = "room.start"
	if room.Status != model.RoomStatusCreated {
		return model.Song{}, Errorf(KindPrecondition, op, "room %s already started", room.ID)
	}
	n, err := t.members.Count(ctx, room.ID)
	if err != nil {
		return model.Song{}, err
	}
	if n == 0 {
		return model.Song{}, Errorf(KindPrecondition, op, "room %s has no members", room.ID)
	}

	if _, err := t.sessions.Ensure(ctx, room, true); err != nil {
		return model.Song{}, err
	}
	batch, err := t.engine.NextSongs(ctx, room.PlaylistSessionID, 0, 1)
	if err != nil {
		return model.Song{}, E(KindExternal, op, err)
	}
	if len(batch.Lookahead) == 0 {
		return model.Song{}, Errorf(KindExternal, op, "engine returned no lookahead")
	}
	preview, err := t.resolver.Resolve(ctx, batch.Lookahead[0])
	if err != nil {
		return model.Song{}, E(KindExternal, op, err)
	}

	if err := t.rooms.SetStatus(ctx, room.ID, model.RoomStatusActive); err != nil {
		return model.Song{}, coerce(op, err)
	}
	room.Status = model.RoomStatusActive
	return preview, nil
}

// Advance moves the room to its next track and returns the new current song
// plus the upcoming preview. The broadcast is fire-and-forget: a room
// durably on the new song without a notification is an accepted
// inconsistency, resolved by the next read.
func (t *Transitions) Advance(ctx context.Context, room *model.Room) (model.Song, model.Song, error) {
	const op = "room.advance"
	if room.Status != model.RoomStatusActive {
		return model.Song{}, model.Song{}, Errorf(KindPrecondition, op, "room %s has not been started", room.ID)
	}

	sessionID, err := t.sessions.Ensure(ctx, room, false)
	if err != nil {
		return model.Song{}, model.Song{}, err
	}

	n, err := t.members.Count(ctx, room.ID)
	if err != nil {
		return model.Song{}, model.Song{}, err
	}

	var prevScore int
	var hasScore bool
	if room.CurrentSong != nil && n > 0 {
		score, err := t.prefs.Score(ctx, room.ID)
		if err != nil {
			return model.Song{}, model.Song{}, err
		}
		if err := t.engine.Feedback(ctx, sessionID, room.CurrentSong.SongID, score); err != nil {
			return model.Song{}, model.Song{}, E(KindExternal, op, err)
		}
		prevScore, hasScore = score, true
	}

	batch, err := t.engine.NextSongs(ctx, sessionID, 1, 1)
	if err != nil {
		return model.Song{}, model.Song{}, E(KindExternal, op, err)
	}
	if len(batch.Songs) == 0 {
		return model.Song{}, model.Song{}, Errorf(KindExternal, op, "engine returned no songs")
	}
	current, err := t.resolver.Resolve(ctx, batch.Songs[0])
	if err != nil {
		return model.Song{}, model.Song{}, E(KindExternal, op, err)
	}
	var preview model.Song
	if len(batch.Lookahead) > 0 {
		preview, err = t.resolver.Resolve(ctx, batch.Lookahead[0])
		if err != nil {
			return model.Song{}, model.Song{}, E(KindExternal, op, err)
		}
	}

	if err := t.rooms.SetCurrentSong(ctx, room.ID, current); err != nil {
		return model.Song{}, model.Song{}, coerce(op, err)
	}
	room.CurrentSong = &current
	if err := t.prefs.ResetRatings(ctx, room.ID); err != nil {
		return model.Song{}, model.Song{}, err
	}

	if err := t.bus.PublishRoom(ctx, queue.RoomEvent{
		Room: room.ID,
		Name: queue.EventPlaying,
		Data: current,
	}); err != nil {
		t.logger.Warn("playing broadcast failed", "room", room.ID, "err", err)
	}
	if err := t.bus.PublishTransition(ctx, queue.TransitionEvent{
		Room:       room.ID,
		Song:       current,
		Score:      prevScore,
		HasScore:   hasScore,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		t.logger.Warn("transition audit publish failed", "room", room.ID, "err", err)
	}

	t.logger.Info("advanced", "room", room.ID, "song", current.SongID, "track", current.TrackID)
	return current, preview, nil
}
