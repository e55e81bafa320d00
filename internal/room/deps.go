package room

import (
	"context"

	"github.com/musicroom/musicroom/internal/identity"
	"github.com/musicroom/musicroom/internal/model"
	"github.com/musicroom/musicroom/internal/queue"
	"github.com/musicroom/musicroom/internal/recommend"
)

// The orchestrator owns no state of its own; everything it touches comes in
// through these interfaces so tests can substitute doubles (and so no client
// is a process-wide singleton).

type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	Get(ctx context.Context, id string) (*model.Room, error)
	Delete(ctx context.Context, id string) error
	Findable(ctx context.Context) ([]model.Room, error)
	OwnedBy(ctx context.Context, userID string) ([]model.Room, error)
	JoinedBy(ctx context.Context, userID string) ([]model.Room, error)
	SetSeedCatalog(ctx context.Context, id, catalogID string) error
	SetPlaylistSession(ctx context.Context, id, sessionID string) error
	SetStatus(ctx context.Context, id, status string) error
	SetCurrentSong(ctx context.Context, id string, song model.Song) error
}

type UserStore interface {
	Get(ctx context.Context, id string) (*model.User, error)
	Upsert(ctx context.Context, u *model.User) error
	MarkLoaded(ctx context.Context, id string) error
}

type MemberStore interface {
	Add(ctx context.Context, roomID, userID string) error
	Remove(ctx context.Context, roomID, userID string) error
	Exists(ctx context.Context, roomID, userID string) (bool, error)
	List(ctx context.Context, roomID string) ([]model.User, error)
	Count(ctx context.Context, roomID string) (int, error)
	DeleteByRoom(ctx context.Context, roomID string) error
}

type RatingStore interface {
	Upsert(ctx context.Context, roomID, userID string, value int) error
	Sum(ctx context.Context, roomID string) (int, error)
	Delete(ctx context.Context, roomID, userID string) error
	DeleteByRoom(ctx context.Context, roomID string) error
}

type ArtistStore interface {
	Replace(ctx context.Context, userID string, artistIDs []string) error
	CountsByRoom(ctx context.Context, roomID string) (map[string]int, error)
}

// Engine is the external recommendation engine.
type Engine interface {
	ResolveCatalog(ctx context.Context, id string) error
	CreateCatalog(ctx context.Context, name, category string) (string, error)
	DeleteCatalog(ctx context.Context, id string) error
	UpdateCatalog(ctx context.Context, id string, items []recommend.CatalogItem) (string, error)
	TicketStatus(ctx context.Context, ticket string) (string, error)
	ResolveSession(ctx context.Context, sessionID string) error
	CreateSession(ctx context.Context, catalogID string, opts recommend.SessionOptions) (string, error)
	RestartSession(ctx context.Context, sessionID, catalogID string, opts recommend.SessionOptions) error
	NextSongs(ctx context.Context, sessionID string, results, lookahead int) (recommend.Batch, error)
	Feedback(ctx context.Context, sessionID, songID string, rating int) error
}

// TrackResolver is the external streaming catalog.
type TrackResolver interface {
	Resolve(ctx context.Context, song recommend.Song) (model.Song, error)
}

// IdentityProvider is the external social identity provider.
type IdentityProvider interface {
	Profile(ctx context.Context, token string) (identity.Profile, error)
	LikedArtists(ctx context.Context, token string) ([]string, error)
}

// EventBus fans out room events and records transition audit entries.
type EventBus interface {
	PublishRoom(ctx context.Context, ev queue.RoomEvent) error
	PublishTransition(ctx context.Context, ev queue.TransitionEvent) error
}
