package streaming

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/musicroom/musicroom/internal/recommend"
)

func TestResolvePrefersRegionalTrackBucket(t *testing.T) {
	c := New("http://unused", "tok", "rdio-US")
	song := recommend.Song{
		ID:         "SO1",
		ArtistName: "Nina Simone",
		Title:      "Feeling Good",
		Tracks: []recommend.Track{
			{ForeignID: "rdio-SE:track:tSwedish"},
			{ForeignID: "rdio-US:track:tAmerican"},
		},
	}

	got, err := c.Resolve(context.Background(), song)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.TrackID != "tAmerican" {
		t.Fatalf("track id = %q, want tAmerican", got.TrackID)
	}
	if got.SongID != "SO1" || got.Artist != "Nina Simone" || got.Title != "Feeling Good" {
		t.Fatalf("song = %+v", got)
	}
}

func TestResolveFallsBackToSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search/tracks" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("artist") != "Etta James" || q.Get("title") != "At Last" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, `{"tracks":[{"key":"tFound"},{"key":"tSecond"}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "rdio-US")
	song := recommend.Song{
		ID:         "SO2",
		ArtistName: "Etta James",
		Title:      "At Last",
		Tracks:     []recommend.Track{{ForeignID: "rdio-SE:track:tWrongRegion"}},
	}

	got, err := c.Resolve(context.Background(), song)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.TrackID != "tFound" {
		t.Fatalf("track id = %q, want tFound", got.TrackID)
	}
}

func TestResolveErrorsWhenNothingMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tracks":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "rdio-US")
	_, err := c.Resolve(context.Background(), recommend.Song{ID: "SO3", ArtistName: "Nobody", Title: "Nothing"})
	if err == nil {
		t.Fatal("expected error for unresolvable song")
	}
}

func TestPlaybackToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/playback/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		fmt.Fprint(w, `{"result":"playback-secret"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "rdio-US")
	token, err := c.PlaybackToken(context.Background())
	if err != nil {
		t.Fatalf("playback token: %v", err)
	}
	if token != "playback-secret" {
		t.Fatalf("token = %q", token)
	}
}
