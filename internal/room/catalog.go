package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/musicroom/musicroom/internal/model"
	"github.com/musicroom/musicroom/internal/recommend"
)

const catalogCategory = "general"

// Catalogs manages the engine-side seed catalog bound to each room: a
// weighted artist-preference object the playlist sessions are seeded from.
type Catalogs struct {
	rooms  RoomStore
	engine Engine

	pollInterval  time.Duration
	ticketTimeout time.Duration
}

// Ensure returns the room's seed catalog id, creating the external object if
// the room has none or the engine has dropped it. Idempotent and
// self-healing: a second call on the same room resolves the stored handle
// instead of creating again.
func (c *Catalogs) Ensure(ctx context.Context, room *model.Room) (string, error) {
	const op = "room.catalog"
	if room.SeedCatalogID != "" {
		err := c.engine.ResolveCatalog(ctx, room.SeedCatalogID)
		if err == nil {
			return room.SeedCatalogID, nil
		}
		if !errors.Is(err, recommend.ErrNotFound) {
			return "", E(KindExternal, op, err)
		}
		// The engine lost the catalog; recreate below.
	}

	id, err := c.engine.CreateCatalog(ctx, fmt.Sprintf("room-%s", room.ID), catalogCategory)
	if err != nil {
		return "", E(KindExternal, op, err)
	}
	if err := c.rooms.SetSeedCatalog(ctx, room.ID, id); err != nil {
		return "", coerce(op, err)
	}
	room.SeedCatalogID = id
	return id, nil
}

// UpdateWeights submits one weighted item per artist (play-count = member
// count) as an asynchronous catalog update and returns the ticket.
func (c *Catalogs) UpdateWeights(ctx context.Context, catalogID string, counts map[string]int) (string, error) {
	const op = "room.weights"
	items := make([]recommend.CatalogItem, 0, len(counts))
	for artist, n := range counts {
		items = append(items, recommend.CatalogItem{
			ItemID:    artist,
			ArtistID:  "social:artist:" + artist,
			PlayCount: n,
		})
	}
	ticket, err := c.engine.UpdateCatalog(ctx, catalogID, items)
	if err != nil {
		return "", E(KindExternal, op, err)
	}
	return ticket, nil
}

// AwaitTicket polls the update ticket until it completes. The wait is bound
// by the configured timeout and the caller's context; expiry surfaces as an
// external-service error.
func (c *Catalogs) AwaitTicket(ctx context.Context, ticket string) error {
	const op = "room.weights"
	ctx, cancel := context.WithTimeout(ctx, c.ticketTimeout)
	defer cancel()

	tick := time.NewTicker(c.pollInterval)
	defer tick.Stop()
	for {
		status, err := c.engine.TicketStatus(ctx, ticket)
		if err != nil {
			if ctx.Err() != nil {
				return Errorf(KindExternal, op, "ticket %s not complete before deadline: %v", ticket, ctx.Err())
			}
			return E(KindExternal, op, err)
		}
		if status == recommend.TicketComplete {
			return nil
		}
		select {
		case <-ctx.Done():
			return Errorf(KindExternal, op, "ticket %s not complete before deadline: %v", ticket, ctx.Err())
		case <-tick.C:
		}
	}
}

// Release deletes the room's external catalog on room deletion. A catalog
// the engine already dropped is not an error.
func (c *Catalogs) Release(ctx context.Context, room *model.Room) error {
	const op = "room.delete"
	if room.SeedCatalogID == "" {
		return nil
	}
	if err := c.engine.DeleteCatalog(ctx, room.SeedCatalogID); err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			return nil
		}
		return E(KindExternal, op, err)
	}
	return nil
}
