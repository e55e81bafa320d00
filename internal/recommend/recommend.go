// Package recommend is the client for the external recommendation engine.
//
// The engine hosts two kinds of objects: catalogs (weighted artist
// preference sets, updated asynchronously via tickets) and dynamic playlist
// sessions (regenerable track sequences seeded by a catalog). Both can expire
// server-side; "object does not exist" responses surface as ErrNotFound so
// callers can recreate the object.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the engine reports that the referenced
// catalog or session no longer exists.
var ErrNotFound = errors.New("recommend: object not found")

// TicketComplete is the terminal status of an asynchronous catalog update.
const TicketComplete = "complete"

// engine status codes carried in the response envelope
const statusUnknownObject = 5

// Track is a per-provider rendition of a song. ForeignID has the shape
// "<region>:track:<key>".
type Track struct {
	ForeignID string `json:"foreign_id"`
}

// Song is one recommendation out of a playlist session.
type Song struct {
	ID         string  `json:"id"`
	ArtistName string  `json:"artist_name"`
	Title      string  `json:"title"`
	Tracks     []Track `json:"tracks"`
}

// Batch is the result of a next-songs request: the songs to play now plus
// the lookahead the session would play next.
type Batch struct {
	Songs     []Song
	Lookahead []Song
}

// CatalogItem is one weighted preference entry in a catalog update.
type CatalogItem struct {
	ItemID    string `json:"item_id"`
	ArtistID  string `json:"artist_id"`
	PlayCount int    `json:"play_count"`
}

// SessionOptions fix a playlist session to one track catalog's regional
// buckets and a playlist type. The orchestrator treats these as a single
// opaque constant.
type SessionOptions struct {
	Buckets []string
	Type    string
}

type envelope struct {
	Response struct {
		Status struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"status"`
		ID           string `json:"id"`
		Ticket       string `json:"ticket"`
		TicketStatus string `json:"ticket_status"`
		SessionID    string `json:"session_id"`
		Songs        []Song `json:"songs"`
		Lookahead    []Song `json:"lookahead"`
	} `json:"response"`
}

// Client talks to the recommendation engine API. Calls are rate limited
// client-side to stay under the engine's per-key quota.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
	}
}

// ResolveCatalog checks that a catalog still exists on the engine.
func (c *Client) ResolveCatalog(ctx context.Context, id string) error {
	params := url.Values{"id": {id}}
	var env envelope
	return c.do(ctx, http.MethodGet, "/catalog/profile", params, &env)
}

// CreateCatalog creates a catalog and returns its engine-assigned id.
func (c *Client) CreateCatalog(ctx context.Context, name, category string) (string, error) {
	params := url.Values{"name": {name}, "type": {category}}
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/catalog/create", params, &env); err != nil {
		return "", err
	}
	if env.Response.ID == "" {
		return "", fmt.Errorf("recommend: catalog create response missing id")
	}
	return env.Response.ID, nil
}

// DeleteCatalog removes a catalog from the engine.
func (c *Client) DeleteCatalog(ctx context.Context, id string) error {
	params := url.Values{"id": {id}}
	var env envelope
	return c.do(ctx, http.MethodPost, "/catalog/delete", params, &env)
}

// UpdateCatalog submits weighted preference items as an asynchronous update
// and returns the ticket to poll.
func (c *Client) UpdateCatalog(ctx context.Context, id string, items []CatalogItem) (string, error) {
	type updateEntry struct {
		Item CatalogItem `json:"item"`
	}
	entries := make([]updateEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, updateEntry{Item: it})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("recommend: marshal catalog update: %w", err)
	}

	params := url.Values{"id": {id}, "data": {string(data)}}
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/catalog/update", params, &env); err != nil {
		return "", err
	}
	if env.Response.Ticket == "" {
		return "", fmt.Errorf("recommend: catalog update response missing ticket")
	}
	return env.Response.Ticket, nil
}

// TicketStatus reports the status of an asynchronous catalog update.
func (c *Client) TicketStatus(ctx context.Context, ticket string) (string, error) {
	params := url.Values{"ticket": {ticket}}
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/catalog/status", params, &env); err != nil {
		return "", err
	}
	return env.Response.TicketStatus, nil
}

// ResolveSession checks that a playlist session is still alive.
func (c *Client) ResolveSession(ctx context.Context, sessionID string) error {
	params := url.Values{"session_id": {sessionID}}
	var env envelope
	return c.do(ctx, http.MethodGet, "/playlist/dynamic/info", params, &env)
}

// CreateSession opens a playlist session seeded by the catalog and returns
// the session id.
func (c *Client) CreateSession(ctx context.Context, catalogID string, opts SessionOptions) (string, error) {
	params := sessionParams(catalogID, opts)
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/playlist/dynamic/create", params, &env); err != nil {
		return "", err
	}
	if env.Response.SessionID == "" {
		return "", fmt.Errorf("recommend: session create response missing session_id")
	}
	return env.Response.SessionID, nil
}

// RestartSession reseeds an existing session from the catalog's current
// weights without changing its id.
func (c *Client) RestartSession(ctx context.Context, sessionID, catalogID string, opts SessionOptions) error {
	params := sessionParams(catalogID, opts)
	params.Set("session_id", sessionID)
	var env envelope
	return c.do(ctx, http.MethodPost, "/playlist/dynamic/restart", params, &env)
}

// NextSongs advances the session, returning `results` songs to play and
// `lookahead` upcoming candidates.
func (c *Client) NextSongs(ctx context.Context, sessionID string, results, lookahead int) (Batch, error) {
	params := url.Values{
		"session_id": {sessionID},
		"results":    {strconv.Itoa(results)},
		"lookahead":  {strconv.Itoa(lookahead)},
	}
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/playlist/dynamic/next", params, &env); err != nil {
		return Batch{}, err
	}
	return Batch{Songs: env.Response.Songs, Lookahead: env.Response.Lookahead}, nil
}

// Feedback rates a song within a session so future picks account for it.
// Rating is the engine's 0..10 scale.
func (c *Client) Feedback(ctx context.Context, sessionID, songID string, rating int) error {
	params := url.Values{
		"session_id": {sessionID},
		"rate_song":  {fmt.Sprintf("%s^%d", songID, rating)},
	}
	var env envelope
	return c.do(ctx, http.MethodPost, "/playlist/dynamic/feedback", params, &env)
}

func sessionParams(catalogID string, opts SessionOptions) url.Values {
	params := url.Values{
		"seed_catalog": {catalogID},
		"type":         {opts.Type},
	}
	for _, b := range opts.Buckets {
		params.Add("bucket", b)
	}
	return params
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, env *envelope) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	var req *http.Request
	var err error
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, strings.NewReader(params.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("recommend: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("recommend: request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return fmt.Errorf("recommend: decode %s response (status %d): %w", endpoint, resp.StatusCode, err)
	}
	if code := env.Response.Status.Code; code != 0 {
		if code == statusUnknownObject {
			return fmt.Errorf("recommend: %s: %w", env.Response.Status.Message, ErrNotFound)
		}
		return fmt.Errorf("recommend: %s failed: %s (code %d)", endpoint, env.Response.Status.Message, code)
	}
	// An HTTP failure without an envelope error code is still a failure.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recommend: %s returned status %d", endpoint, resp.StatusCode)
	}
	return nil
}
