// Package room is the room session orchestrator: it owns a room's
// lifecycle, membership, preference and rating aggregation, playlist-session
// acquisition against the external recommendation engine, and the protocol
// for advancing and broadcasting the currently playing track. It is the only
// component external callers invoke directly.
package room

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/musicroom/musicroom/internal/identity"
	"github.com/musicroom/musicroom/internal/model"
	"github.com/musicroom/musicroom/internal/queue"
	"github.com/musicroom/musicroom/internal/recommend"
	"github.com/musicroom/musicroom/internal/repository"
)

const (
	roomIDLength   = 8
	roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz"
	createAttempts = 10

	defaultPollInterval  = 100 * time.Millisecond
	defaultTicketTimeout = 15 * time.Second
)

// Deps are the orchestrator's injected collaborators.
type Deps struct {
	Rooms    RoomStore
	Users    UserStore
	Members  MemberStore
	Ratings  RatingStore
	Artists  ArtistStore
	Engine   Engine
	Resolver TrackResolver
	Identity IdentityProvider
	Bus      EventBus
	Logger   *log.Logger

	// SessionOptions pin playlist sessions to one provider's regional
	// buckets and playlist type.
	SessionOptions recommend.SessionOptions
	// TicketTimeout bounds the wait for asynchronous catalog updates.
	// Zero means the default.
	TicketTimeout time.Duration
}

// Service composes the room components. It holds no cross-call state beyond
// what is persisted; each inbound operation is an independent unit of work.
type Service struct {
	rooms       RoomStore
	users       UserStore
	memberships *Memberships
	prefs       *Preferences
	catalogs    *Catalogs
	sessions    *Sessions
	transitions *Transitions
	bus         EventBus
	logger      *log.Logger
	locks       *roomLocks
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	ticketTimeout := d.TicketTimeout
	if ticketTimeout <= 0 {
		ticketTimeout = defaultTicketTimeout
	}

	memberships := &Memberships{members: d.Members, ratings: d.Ratings}
	prefs := &Preferences{
		users:    d.Users,
		artists:  d.Artists,
		ratings:  d.Ratings,
		members:  d.Members,
		identity: d.Identity,
	}
	catalogs := &Catalogs{
		rooms:         d.Rooms,
		engine:        d.Engine,
		pollInterval:  defaultPollInterval,
		ticketTimeout: ticketTimeout,
	}
	sessions := &Sessions{
		rooms:    d.Rooms,
		engine:   d.Engine,
		catalogs: catalogs,
		prefs:    prefs,
		opts:     d.SessionOptions,
	}
	transitions := &Transitions{
		rooms:    d.Rooms,
		members:  memberships,
		prefs:    prefs,
		sessions: sessions,
		engine:   d.Engine,
		resolver: d.Resolver,
		bus:      d.Bus,
		logger:   logger,
	}
	return &Service{
		rooms:       d.Rooms,
		users:       d.Users,
		memberships: memberships,
		prefs:       prefs,
		catalogs:    catalogs,
		sessions:    sessions,
		transitions: transitions,
		bus:         d.Bus,
		logger:      logger,
		locks:       newRoomLocks(),
	}
}

// CreateRoom allocates an unused 8-character id, inserting-if-absent with a
// bounded number of attempts, and persists the room.
func (s *Service) CreateRoom(ctx context.Context, ownerID, name string, findable bool) (*model.Room, error) {
	const op = "room.create"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Errorf(KindInvalid, op, "name is required")
	}
	if _, err := s.users.Get(ctx, ownerID); err != nil {
		return nil, coerce(op, err)
	}

	for i := 0; i < createAttempts; i++ {
		id, err := newRoomID()
		if err != nil {
			return nil, E(KindUnknown, op, err)
		}
		room := &model.Room{
			ID:       id,
			Name:     name,
			Findable: findable,
			Status:   model.RoomStatusCreated,
			OwnerID:  ownerID,
		}
		err = s.rooms.Create(ctx, room)
		if errors.Is(err, repository.ErrDuplicateID) {
			continue
		}
		if err != nil {
			return nil, coerce(op, err)
		}
		s.logger.Info("room created", "room", id, "owner", ownerID, "findable", findable)
		return room, nil
	}
	return nil, Errorf(KindUnknown, op, "no unused room id after %d attempts", createAttempts)
}

// DeleteRoom removes the room, its memberships and ratings, and releases the
// external seed catalog. Owner only.
func (s *Service) DeleteRoom(ctx context.Context, roomID, callerID string) error {
	const op = "room.delete"
	release := s.locks.acquire(roomID)
	defer release()

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return coerce(op, err)
	}
	if room.OwnerID != callerID {
		return Errorf(KindForbidden, op, "user %s does not own room %s", callerID, roomID)
	}
	if err := s.catalogs.Release(ctx, room); err != nil {
		return err
	}
	if err := s.memberships.PurgeRoom(ctx, roomID); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return coerce(op, err)
	}
	s.logger.Info("room deleted", "room", roomID)
	return nil
}

// Room returns the room snapshot.
func (s *Service) Room(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, coerce("room.get", err)
	}
	return room, nil
}

// User returns the user record.
func (s *Service) User(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, coerce("user.get", err)
	}
	return user, nil
}

// Members lists the room's members.
func (s *Service) Members(ctx context.Context, roomID string) ([]model.User, error) {
	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return nil, coerce("room.members", err)
	}
	return s.memberships.Members(ctx, roomID)
}

// PublicRooms lists rooms created with findable=true.
func (s *Service) PublicRooms(ctx context.Context) ([]model.Room, error) {
	rooms, err := s.rooms.Findable(ctx)
	if err != nil {
		return nil, coerce("room.list", err)
	}
	return rooms, nil
}

// OwnedRooms lists rooms the user owns.
func (s *Service) OwnedRooms(ctx context.Context, userID string) ([]model.Room, error) {
	rooms, err := s.rooms.OwnedBy(ctx, userID)
	if err != nil {
		return nil, coerce("room.list", err)
	}
	return rooms, nil
}

// JoinedRooms lists rooms the user is a member of.
func (s *Service) JoinedRooms(ctx context.Context, userID string) ([]model.Room, error) {
	rooms, err := s.rooms.JoinedBy(ctx, userID)
	if err != nil {
		return nil, coerce("room.list", err)
	}
	return rooms, nil
}

// JoinRoom ensures membership and, on first join, notifies the room.
func (s *Service) JoinRoom(ctx context.Context, roomID, userID string) error {
	const op = "room.join"
	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return coerce(op, err)
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return coerce(op, err)
	}
	joined, err := s.memberships.Join(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if joined {
		if err := s.bus.PublishRoom(ctx, queue.RoomEvent{
			Room: roomID,
			Name: queue.EventJoined,
			Data: queue.JoinedData{Name: user.Name},
		}); err != nil {
			s.logger.Warn("joined broadcast failed", "room", roomID, "err", err)
		}
	}
	return nil
}

// LeaveRoom removes membership (idempotent).
func (s *Service) LeaveRoom(ctx context.Context, roomID, userID string) error {
	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return coerce("room.leave", err)
	}
	return s.memberships.Leave(ctx, roomID, userID)
}

// Rate records a member's vote on the current song. It shares the room lock
// with Advance so a vote is never split across a rating reset.
func (s *Service) Rate(ctx context.Context, roomID, userID string, value int) error {
	const op = "room.rate"
	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return coerce(op, err)
	}
	member, err := s.memberships.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !member {
		return Errorf(KindPrecondition, op, "user %s is not a member of room %s", userID, roomID)
	}

	release := s.locks.acquire(roomID)
	defer release()
	return s.prefs.Rate(ctx, roomID, userID, value)
}

// Start arms the room and returns the first preview track. Owner only.
func (s *Service) Start(ctx context.Context, roomID, callerID string) (model.Song, error) {
	const op = "room.start"
	release := s.locks.acquire(roomID)
	defer release()

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return model.Song{}, coerce(op, err)
	}
	if room.OwnerID != callerID {
		return model.Song{}, Errorf(KindForbidden, op, "user %s does not own room %s", callerID, roomID)
	}
	return s.transitions.Start(ctx, room)
}

// Advance moves the room to the next track, broadcasts it, and returns the
// new current song plus the upcoming preview. Owner only; serialized per
// room.
func (s *Service) Advance(ctx context.Context, roomID, callerID string) (model.Song, model.Song, error) {
	const op = "room.advance"
	release := s.locks.acquire(roomID)
	defer release()

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return model.Song{}, model.Song{}, coerce(op, err)
	}
	if room.OwnerID != callerID {
		return model.Song{}, model.Song{}, Errorf(KindForbidden, op, "user %s does not own room %s", callerID, roomID)
	}
	return s.transitions.Advance(ctx, room)
}

// EnsureUser resolves the provider token to a user, creating the row on
// first access and importing the liked-artist set when it has never been
// loaded. Returns the user.
func (s *Service) EnsureUser(ctx context.Context, token string) (*model.User, error) {
	const op = "user.login"
	profile, err := s.prefs.identity.Profile(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrTokenExpired) {
			return nil, E(KindAuthExpired, op, err)
		}
		return nil, E(KindExternal, op, err)
	}

	user, err := s.users.Get(ctx, profile.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &model.User{ID: profile.ID, Name: profile.Name}
		if err := s.users.Upsert(ctx, user); err != nil {
			return nil, coerce(op, err)
		}
	} else if err != nil {
		return nil, coerce(op, err)
	}

	if !user.Loaded {
		if err := s.prefs.Import(ctx, user.ID, nil, token); err != nil {
			return nil, err
		}
		user.Loaded = true
	}
	return user, nil
}

// ImportPreferences replaces a user's liked-artist set with an explicit
// collection, bypassing the identity provider (seeding and tests).
func (s *Service) ImportPreferences(ctx context.Context, userID string, artistIDs []string) error {
	const op = "user.import"
	if _, err := s.users.Get(ctx, userID); err != nil {
		return coerce(op, err)
	}
	if artistIDs == nil {
		artistIDs = []string{}
	}
	return s.prefs.Import(ctx, userID, artistIDs, "")
}

func newRoomID() (string, error) {
	max := big.NewInt(int64(len(roomIDAlphabet)))
	var b strings.Builder
	b.Grow(roomIDLength)
	for i := 0; i < roomIDLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(roomIDAlphabet[n.Int64()])
	}
	return b.String(), nil
}
