package room

import (
	"context"
	"testing"
	"time"

	"github.com/musicroom/musicroom/internal/model"
)

func newTestCatalogs(engine *fakeEngine) (*Catalogs, *fakeRoomStore) {
	rooms := newFakeRoomStore()
	return &Catalogs{
		rooms:         rooms,
		engine:        engine,
		pollInterval:  time.Millisecond,
		ticketTimeout: time.Second,
	}, rooms
}

func TestCatalogEnsureIsIdempotent(t *testing.T) {
	engine := newFakeEngine()
	catalogs, rooms := newTestCatalogs(engine)
	ctx := context.Background()

	r := &model.Room{ID: "abcdefgh", Name: "r", Status: model.RoomStatusCreated, OwnerID: "u1"}
	if err := rooms.Create(ctx, r); err != nil {
		t.Fatalf("seed room: %v", err)
	}

	first, err := catalogs.Ensure(ctx, r)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	second, err := catalogs.Ensure(ctx, r)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if first != second {
		t.Fatalf("ensure returned %q then %q, want identical ids", first, second)
	}
	if engine.createCatalogCalls != 1 {
		t.Fatalf("catalog creates = %d, want 1", engine.createCatalogCalls)
	}

	stored, _ := rooms.Get(ctx, r.ID)
	if stored.SeedCatalogID != first {
		t.Fatalf("stored catalog id = %q, want %q", stored.SeedCatalogID, first)
	}
}

func TestCatalogEnsureHealsDroppedObject(t *testing.T) {
	engine := newFakeEngine()
	catalogs, rooms := newTestCatalogs(engine)
	ctx := context.Background()

	r := &model.Room{ID: "abcdefgh", Name: "r", Status: model.RoomStatusCreated, OwnerID: "u1"}
	if err := rooms.Create(ctx, r); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	first, err := catalogs.Ensure(ctx, r)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	engine.mu.Lock()
	delete(engine.catalogs, first)
	engine.mu.Unlock()

	healed, err := catalogs.Ensure(ctx, r)
	if err != nil {
		t.Fatalf("ensure after drop: %v", err)
	}
	if healed == first {
		t.Fatalf("expected a fresh catalog id after the engine dropped %q", first)
	}
	if engine.createCatalogCalls != 2 {
		t.Fatalf("catalog creates = %d, want 2", engine.createCatalogCalls)
	}
	stored, _ := rooms.Get(ctx, r.ID)
	if stored.SeedCatalogID != healed {
		t.Fatalf("stored catalog id = %q, want %q", stored.SeedCatalogID, healed)
	}
}
