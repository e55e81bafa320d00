// Package streaming resolves abstract recommendations to playable tracks on
// the streaming-catalog provider and fetches the short-lived token the web
// player needs for playback.
package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/musicroom/musicroom/internal/model"
	"github.com/musicroom/musicroom/internal/recommend"
)

// Client talks to the streaming provider. Region is the provider bucket the
// playlist sessions are fixed to (e.g. "rdio-US"); recommendations carry
// per-region foreign ids shaped "<region>:track:<key>".
type Client struct {
	baseURL string
	token   string
	region  string
	http    *http.Client
}

func New(baseURL, token, region string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		region:  region,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Region returns the provider bucket this client resolves against.
func (c *Client) Region() string { return c.region }

// Resolve turns a recommendation into the room's current-song record. The
// track key normally comes from the song's regional track bucket; when the
// engine response carries no usable bucket, the provider's search endpoint is
// consulted instead.
func (c *Client) Resolve(ctx context.Context, song recommend.Song) (model.Song, error) {
	key := c.trackKey(song)
	if key == "" {
		var err error
		key, err = c.searchTrack(ctx, song.ArtistName, song.Title)
		if err != nil {
			return model.Song{}, err
		}
	}
	return model.Song{
		SongID:  song.ID,
		TrackID: key,
		Artist:  song.ArtistName,
		Title:   song.Title,
	}, nil
}

// PlaybackToken fetches the short-lived token the player exchanges for
// stream access.
func (c *Client) PlaybackToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/playback/token", nil)
	if err != nil {
		return "", fmt.Errorf("streaming: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("streaming: token request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("streaming: token request returned status %d", resp.StatusCode)
	}

	var body struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("streaming: decode token response: %w", err)
	}
	return body.Result, nil
}

func (c *Client) trackKey(song recommend.Song) string {
	prefix := c.region + ":"
	for _, t := range song.Tracks {
		if strings.HasPrefix(t.ForeignID, prefix) {
			parts := strings.Split(t.ForeignID, ":")
			return parts[len(parts)-1]
		}
	}
	return ""
}

func (c *Client) searchTrack(ctx context.Context, artist, title string) (string, error) {
	params := url.Values{"artist": {artist}, "title": {title}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/search/tracks?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("streaming: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("streaming: search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("streaming: search returned status %d", resp.StatusCode)
	}

	var body struct {
		Tracks []struct {
			Key string `json:"key"`
		} `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("streaming: decode search response: %w", err)
	}
	if len(body.Tracks) == 0 {
		return "", fmt.Errorf("streaming: no track found for %q by %q", title, artist)
	}
	return body.Tracks[0].Key, nil
}
