package room

import (
	"context"
	"testing"
)

// Score maps the vote sum onto the engine's 0..10 scale with
// round(((sum/members)+1)*5), rounding half away from zero.
func TestScore(t *testing.T) {
	cases := []struct {
		name    string
		members []string
		votes   map[string]int
		want    int
	}{
		{"unanimous up", []string{"u1"}, map[string]int{"u1": 1}, 10},
		{"unanimous down", []string{"u1"}, map[string]int{"u1": -1}, 0},
		{"split vote", []string{"u1", "u2"}, map[string]int{"u1": 1, "u2": -1}, 5},
		// 7.5 and 2.5 midpoints must round away from zero, not to even.
		{"half up", []string{"u1", "u2"}, map[string]int{"u1": 1}, 8},
		{"half down", []string{"u1", "u2"}, map[string]int{"u1": -1}, 3},
		{"no votes", []string{"u1", "u2"}, nil, 5},
		{"one of three up", []string{"u1", "u2", "u3"}, map[string]int{"u1": 1}, 7},
		{"one of three down", []string{"u1", "u2", "u3"}, map[string]int{"u1": -1}, 3},
		{"two of three up", []string{"u1", "u2", "u3"}, map[string]int{"u1": 1, "u2": 1}, 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := newFakeUserStore()
			members := newFakeMemberStore(users)
			ratings := newFakeRatingStore()
			prefs := &Preferences{
				users:   users,
				artists: newFakeArtistStore(members),
				ratings: ratings,
				members: members,
			}
			ctx := context.Background()
			for _, id := range tc.members {
				if err := members.Add(ctx, "room1", id); err != nil {
					t.Fatalf("add member: %v", err)
				}
			}
			for id, v := range tc.votes {
				if err := ratings.Upsert(ctx, "room1", id, v); err != nil {
					t.Fatalf("vote: %v", err)
				}
			}

			got, err := prefs.Score(ctx, "room1")
			if err != nil {
				t.Fatalf("score: %v", err)
			}
			if got != tc.want {
				t.Fatalf("score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScoreUndefinedForEmptyRoom(t *testing.T) {
	users := newFakeUserStore()
	members := newFakeMemberStore(users)
	prefs := &Preferences{
		users:   users,
		artists: newFakeArtistStore(members),
		ratings: newFakeRatingStore(),
		members: members,
	}
	_, err := prefs.Score(context.Background(), "empty")
	wantKind(t, err, KindPrecondition)
}

func TestArtistCountsAcrossMembers(t *testing.T) {
	users := newFakeUserStore()
	members := newFakeMemberStore(users)
	artists := newFakeArtistStore(members)
	prefs := &Preferences{
		users:   users,
		artists: artists,
		ratings: newFakeRatingStore(),
		members: members,
	}
	ctx := context.Background()

	for id, likes := range map[string][]string{
		"u1": {"a1", "a2"},
		"u2": {"a2"},
		"u3": {"a3"},
	} {
		if err := members.Add(ctx, "room1", id); err != nil {
			t.Fatalf("add member: %v", err)
		}
		if err := artists.Replace(ctx, id, likes); err != nil {
			t.Fatalf("seed likes: %v", err)
		}
	}

	counts, err := prefs.ArtistCounts(ctx, "room1")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	want := map[string]int{"a1": 1, "a2": 2, "a3": 1}
	if len(counts) != len(want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	for artist, n := range want {
		if counts[artist] != n {
			t.Fatalf("count[%s] = %d, want %d", artist, counts[artist], n)
		}
	}
}
