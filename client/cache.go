// Package client implements a read-side cache over the Fritter API. A frontend
// keeps one Cache per browsing session and refreshes it per store; the cache
// rebuilds its derived indexes wholesale on every refresh, so a lookup never
// observes a half-updated view.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Freet mirrors the freet records the API returns.
type Freet struct {
	ID        int       `json:"id"`
	AuthorID  int       `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Relation mirrors bookmarks and likes on the wire. Both carry the same three
// stringified ids.
type Relation struct {
	ID    string `json:"_id"`
	User  string `json:"user"`
	Freet string `json:"freet"`
}

// Event mirrors event announcements on the wire. All fields arrive as strings,
// including the cancelled flag, which is "true" or "false".
type Event struct {
	ID              string `json:"_id"`
	DateModified    string `json:"dateModified"`
	EventDate       string `json:"eventDate"`
	EventSubject    string `json:"eventSubject"`
	EventLocation   string `json:"eventLocation"`
	Cancelled       string `json:"cancelled"`
	AssociatedFreet string `json:"associatedFreet"`
}

// IsCancelled reports whether the event has been cancelled.
func (e Event) IsCancelled() bool {
	return e.Cancelled == "true"
}

// Cache holds the freet listing plus the derived indexes the frontend renders
// from: the acting user's bookmark and like memberships, per-freet like counts,
// and the event overlay. Refreshes of the same store can overlap; each store
// carries a refresh token, and a fetch that finishes after a newer refresh has
// begun is discarded rather than installed.
type Cache struct {
	baseURL  string
	username string
	client   *http.Client

	mu sync.Mutex

	freets []Freet

	bookmarkedFreetIDs map[string]bool
	freetToBookmarkID  map[string]string

	likedFreetIDs map[string]bool
	freetToLikeID map[string]string
	likeCounts    map[string]int

	events       []Event
	freetToEvent map[string]Event

	freetToken    uint64
	bookmarkToken uint64
	likeToken     uint64
	eventToken    uint64
}

// NewCache returns an empty cache for the given API base URL. The username is
// the acting user's; it scopes the bookmark and like membership indexes and
// may be empty for a guest session.
func NewCache(baseURL, username string, client *http.Client) *Cache {
	if client == nil {
		client = http.DefaultClient
	}
	return &Cache{
		baseURL:            strings.TrimRight(baseURL, "/"),
		username:           username,
		client:             client,
		bookmarkedFreetIDs: map[string]bool{},
		freetToBookmarkID:  map[string]string{},
		likedFreetIDs:      map[string]bool{},
		freetToLikeID:      map[string]string{},
		likeCounts:         map[string]int{},
		freetToEvent:       map[string]Event{},
	}
}

// RefreshFreets reloads the freet listing.
func (c *Cache) RefreshFreets(ctx context.Context) error {
	c.mu.Lock()
	c.freetToken++
	token := c.freetToken
	c.mu.Unlock()

	var freets []Freet
	if err := c.getJSON(ctx, "/api/freet", nil, &freets); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.freetToken {
		return nil
	}
	c.freets = freets
	return nil
}

// RefreshBookmarks reloads the acting user's bookmarks and rebuilds the
// membership indexes. A guest cache clears them instead.
func (c *Cache) RefreshBookmarks(ctx context.Context) error {
	c.mu.Lock()
	c.bookmarkToken++
	token := c.bookmarkToken
	c.mu.Unlock()

	var bookmarks []Relation
	if c.username != "" {
		query := url.Values{"username": {c.username}}
		if err := c.getJSON(ctx, "/api/bookmark", query, &bookmarks); err != nil {
			return err
		}
	}

	bookmarked := make(map[string]bool, len(bookmarks))
	toBookmark := make(map[string]string, len(bookmarks))
	for _, bookmark := range bookmarks {
		bookmarked[bookmark.Freet] = true
		toBookmark[bookmark.Freet] = bookmark.ID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.bookmarkToken {
		return nil
	}
	c.bookmarkedFreetIDs = bookmarked
	c.freetToBookmarkID = toBookmark
	return nil
}

// RefreshLikes reloads the acting user's likes and the like counts of every
// cached freet, then rebuilds all three like indexes together. The counts come
// from the batched counts endpoint in a single round trip. If either fetch
// fails nothing is installed and the previous indexes stay in place.
func (c *Cache) RefreshLikes(ctx context.Context) error {
	c.mu.Lock()
	c.likeToken++
	token := c.likeToken
	freetIds := make([]string, 0, len(c.freets))
	for _, freet := range c.freets {
		freetIds = append(freetIds, strconv.Itoa(freet.ID))
	}
	c.mu.Unlock()

	var likes []Relation
	if c.username != "" {
		query := url.Values{"username": {c.username}}
		if err := c.getJSON(ctx, "/api/like", query, &likes); err != nil {
			return err
		}
	}

	counts := map[string]int{}
	if len(freetIds) > 0 {
		var body struct {
			LikeCounts map[string]int `json:"likeCounts"`
		}
		query := url.Values{"freetIds": {strings.Join(freetIds, ",")}}
		if err := c.getJSON(ctx, "/api/like/counts", query, &body); err != nil {
			return err
		}
		counts = body.LikeCounts
	}

	liked := make(map[string]bool, len(likes))
	toLike := make(map[string]string, len(likes))
	for _, like := range likes {
		liked[like.Freet] = true
		toLike[like.Freet] = like.ID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.likeToken {
		return nil
	}
	c.likedFreetIDs = liked
	c.freetToLikeID = toLike
	c.likeCounts = counts
	return nil
}

// RefreshEvents reloads the event listing and rebuilds the freet-to-event
// overlay. Cancelled events stay in both; cancellation is state, not deletion.
func (c *Cache) RefreshEvents(ctx context.Context) error {
	c.mu.Lock()
	c.eventToken++
	token := c.eventToken
	c.mu.Unlock()

	var events []Event
	if err := c.getJSON(ctx, "/api/events", nil, &events); err != nil {
		return err
	}

	toEvent := make(map[string]Event, len(events))
	for _, event := range events {
		toEvent[event.AssociatedFreet] = event
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.eventToken {
		return nil
	}
	c.events = events
	c.freetToEvent = toEvent
	return nil
}

// Freets returns the cached freet listing.
func (c *Cache) Freets() []Freet {
	c.mu.Lock()
	defer c.mu.Unlock()
	freets := make([]Freet, len(c.freets))
	copy(freets, c.freets)
	return freets
}

// Events returns the cached event listing.
func (c *Cache) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := make([]Event, len(c.events))
	copy(events, c.events)
	return events
}

// IsBookmarked reports whether the acting user has bookmarked the freet.
func (c *Cache) IsBookmarked(freetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bookmarkedFreetIDs[freetID]
}

// BookmarkID returns the id of the acting user's bookmark on the freet. The
// frontend needs it to issue the unbookmark request.
func (c *Cache) BookmarkID(freetID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.freetToBookmarkID[freetID]
	return id, ok
}

// IsLiked reports whether the acting user has liked the freet.
func (c *Cache) IsLiked(freetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.likedFreetIDs[freetID]
}

// LikeID returns the id of the acting user's like on the freet.
func (c *Cache) LikeID(freetID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.freetToLikeID[freetID]
	return id, ok
}

// LikeCount returns the cached like count of the freet. Freets absent from the
// last refresh count zero.
func (c *Cache) LikeCount(freetID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.likeCounts[freetID]
}

// EventForFreet returns the event announcement backed by the freet, if any.
func (c *Cache) EventForFreet(freetID string) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	event, ok := c.freetToEvent[freetID]
	return event, ok
}

// getJSON issues a GET against the API and decodes the json response into out.
func (c *Cache) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
