package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLikedArtistsFiltersNonMusicians(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/music" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		fmt.Fprint(w, `{"data":[
			{"id":"a1","name":"Nina Simone","category":"Musician/band"},
			{"id":"x1","name":"Some Venue","category":"Concert venue"},
			{"id":"a2","name":"Etta James","category":"Musician/band"}
		]}`)
	}))
	defer srv.Close()

	ids, err := New(srv.URL).LikedArtists(context.Background(), "tok")
	if err != nil {
		t.Fatalf("liked artists: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a1" || ids[1] != "a2" {
		t.Fatalf("ids = %v, want [a1 a2]", ids)
	}
}

func TestProfileRejectsExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Profile(context.Background(), "stale")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestProfileRequiresID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"No Id"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Profile(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error for profile without id")
	}
}
