// Package identity is the client for the social identity provider. It
// exposes the two calls the service needs: who a token belongs to, and which
// artists that person likes.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrTokenExpired is returned when the provider rejects the access token.
// The caller must re-authenticate; the call is not retriable.
var ErrTokenExpired = errors.New("identity: token expired")

// Profile is the provider's view of the authenticated user.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type musicEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type musicPage struct {
	Data []musicEntry `json:"data"`
}

// Client talks to the identity provider's graph API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Profile fetches the profile of the token's owner.
func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var p Profile
	if err := c.get(ctx, "/me", token, &p); err != nil {
		return Profile{}, err
	}
	if p.ID == "" {
		return Profile{}, fmt.Errorf("identity: profile response missing id")
	}
	return p, nil
}

// LikedArtists fetches the token owner's liked music entries and returns the
// ids of those categorized as musicians/bands.
func (c *Client) LikedArtists(ctx context.Context, token string) ([]string, error) {
	var page musicPage
	if err := c.get(ctx, "/me/music", token, &page); err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range page.Data {
		if e.Category == "Musician/band" {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("identity: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrTokenExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity: %s returned status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity: decode %s response: %w", endpoint, err)
	}
	return nil
}
