package room

import (
	"context"
	"errors"
	"math"

	"github.com/musicroom/musicroom/internal/identity"
)

// Preferences aggregates the social signal a room's playlist is driven by:
// each member's liked-artist set and the up/down votes on the current song.
type Preferences struct {
	users    UserStore
	artists  ArtistStore
	ratings  RatingStore
	members  MemberStore
	identity IdentityProvider
}

// Import replaces the user's entire liked-artist set and marks the user
// loaded. A nil artistIDs fetches the set from the identity provider with
// the given token; an explicit collection bypasses the provider (seeding and
// tests).
func (p *Preferences) Import(ctx context.Context, userID string, artistIDs []string, token string) error {
	const op = "user.import"
	if artistIDs == nil {
		ids, err := p.identity.LikedArtists(ctx, token)
		if err != nil {
			if errors.Is(err, identity.ErrTokenExpired) {
				return E(KindAuthExpired, op, err)
			}
			return E(KindExternal, op, err)
		}
		artistIDs = ids
	}
	if err := p.artists.Replace(ctx, userID, artistIDs); err != nil {
		return coerce(op, err)
	}
	if err := p.users.MarkLoaded(ctx, userID); err != nil {
		return coerce(op, err)
	}
	return nil
}

// ArtistCounts maps each artist to the number of distinct room members who
// like them. This is the weighting signal for catalog regeneration.
func (p *Preferences) ArtistCounts(ctx context.Context, roomID string) (map[string]int, error) {
	counts, err := p.artists.CountsByRoom(ctx, roomID)
	if err != nil {
		return nil, coerce("room.weights", err)
	}
	return counts, nil
}

// Rate records the user's vote on the room's current song. Only +1 and -1
// are accepted; a second vote replaces the first.
func (p *Preferences) Rate(ctx context.Context, roomID, userID string, value int) error {
	const op = "room.rate"
	if value != 1 && value != -1 {
		return Errorf(KindInvalid, op, "rating must be +1 or -1, got %d", value)
	}
	if err := p.ratings.Upsert(ctx, roomID, userID, value); err != nil {
		return coerce(op, err)
	}
	return nil
}

// Score condenses the room's votes on the current song into the engine's
// 0..10 scale: round(((sum/members)+1)*5), rounding half away from zero.
// Calling it with zero members is a caller bug; the precondition is checked
// rather than dividing by zero.
func (p *Preferences) Score(ctx context.Context, roomID string) (int, error) {
	const op = "room.score"
	n, err := p.members.Count(ctx, roomID)
	if err != nil {
		return 0, coerce(op, err)
	}
	if n == 0 {
		return 0, Errorf(KindPrecondition, op, "score undefined for a room with no members")
	}
	sum, err := p.ratings.Sum(ctx, roomID)
	if err != nil {
		return 0, coerce(op, err)
	}
	return int(math.Round((float64(sum)/float64(n) + 1) * 5)), nil
}

// ResetRatings opens a fresh voting window; called when the current song
// changes.
func (p *Preferences) ResetRatings(ctx context.Context, roomID string) error {
	if err := p.ratings.DeleteByRoom(ctx, roomID); err != nil {
		return coerce("room.rate", err)
	}
	return nil
}
