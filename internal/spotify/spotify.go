// Client for the Spotify Web API.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultAuthURL  = "https://accounts.spotify.com/authorize"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultBaseURL  = "https://api.spotify.com/v1"

	defaultRequestsPerSecond = 10
	defaultRetryBackoff      = 500 * time.Millisecond
)

type followers struct {
	Total int `json:"total"`
}

// User represents a Spotify user profile.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
	Images      []Image   `json:"images"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// Track represents a Spotify track.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []Artist    `json:"artists"`
	Album       Album       `json:"album"`
	DurationMS  int         `json:"duration_ms"`
	Explicit    bool        `json:"explicit"`
	ExternalIDs externalIDs `json:"external_ids"`
	Popularity  int         `json:"popularity"`
	URI         string      `json:"uri"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []Image  `json:"images"`
	URI    string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Owner identifies the user owning a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type trackRef struct {
	Total int `json:"total"`
}

// Playlist represents a full Spotify playlist object.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Owner       Owner    `json:"owner"`
	Public      bool     `json:"public"`
	Tracks      trackRef `json:"tracks"`
	Images      []Image  `json:"images"`
	SnapshotID  string   `json:"snapshot_id"`
	URI         string   `json:"uri"`
}

// SimplePlaylist represents the simplified playlist object used in lists.
type SimplePlaylist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Owner       Owner    `json:"owner"`
	Public      bool     `json:"public"`
	Tracks      trackRef `json:"tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// PlaylistTrack represents a track within a playlist context.
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// SavedTrack represents a track saved in the user's library.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// snapshot is the response of bulk playlist mutations: the collection's
// version after the change.
type snapshot struct {
	SnapshotID string `json:"snapshot_id"`
}

// Client is a Spotify Web API client bound to one application's credentials
// and, at most, one user session at a time.
//
// Endpoint calls are blocking and strictly sequential; a paginated or
// batched method may block for as long as it takes to walk every page or
// issue every chunk. The client is safe for concurrent use: token refresh is
// serialized so two flows never race a refresh grant.
type Client struct {
	creds        Credentials
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *log.Logger
	baseURL      string
	authURL      string
	tokenURL     string
	retryBackoff time.Duration

	mu      sync.Mutex
	session *Session
	userID  string
}

// Opts contains optional configuration for creating a [Client]. Zero values
// select production defaults; overriding the URLs is how tests point the
// client at a fake service.
type Opts struct {
	HTTPClient        *http.Client
	Logger            *log.Logger
	BaseURL           string
	AuthURL           string
	TokenURL          string
	RequestsPerSecond float64
	RetryBackoff      time.Duration
}

// New creates a Client for the given credentials. Attach a user session with
// [Client.SetSession] or [Client.ExchangeCode] before issuing API calls.
func New(creds Credentials, opts Opts) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.AuthURL == "" {
		opts.AuthURL = defaultAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = defaultTokenURL
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}

	return &Client{
		creds:        creds,
		httpClient:   opts.HTTPClient,
		limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:       opts.Logger,
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		authURL:      opts.AuthURL,
		tokenURL:     opts.TokenURL,
		retryBackoff: opts.RetryBackoff,
	}
}

// SetSession attaches a user session, fully replacing any previous one. The
// cached user id is dropped so it re-resolves for the new user. Passing nil
// detaches the client.
func (c *Client) SetSession(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.userID = ""
}

// Session returns a copy of the attached session, or nil. The copy reflects
// any refresh performed so far, so callers can persist a rotated refresh
// token.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	session := *c.session
	return &session
}

// currentUserID resolves and caches the authenticated user's id. The lookup
// happens at most once per attached session.
func (c *Client) currentUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.userID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	user, err := c.Me(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.userID = user.ID
	c.mu.Unlock()
	return user.ID, nil
}

// pagerFor builds a lazy pager whose first fetch hits firstURL.
func pagerFor[T any](c *Client, ctx context.Context, firstURL string) *Pager[T] {
	return newPager(ctx, firstURL, func(ctx context.Context, pageURL string) (page[T], error) {
		var result page[T]
		if err := c.do(ctx, http.MethodGet, pageURL, nil, nil, &result); err != nil {
			return page[T]{}, err
		}
		return result, nil
	})
}

// chunkedIDs fetches a bulk-read endpoint once per chunk of ids and
// concatenates the results in input order.
func chunkedIDs[T any](c *Client, ctx context.Context, path, field string, ids []string, size int) ([]T, error) {
	var all []T
	for _, chunk := range chunkStrings(ids, size) {
		query := url.Values{"ids": {strings.Join(chunk, ",")}}

		var envelope map[string][]T
		if err := c.do(ctx, http.MethodGet, path, query, nil, &envelope); err != nil {
			return all, err
		}
		all = append(all, envelope[field]...)
	}
	return all, nil
}

// Me retrieves the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Playlist retrieves a playlist by ID.
func (c *Client) Playlist(ctx context.Context, playlistID string) (*Playlist, error) {
	var playlist Playlist
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/playlists/%s", playlistID), nil, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// Playlists walks the authenticated user's playlists. Each call starts a
// fresh cursor.
func (c *Client) Playlists(ctx context.Context) *Pager[SimplePlaylist] {
	return pagerFor[SimplePlaylist](c, ctx, fmt.Sprintf("/me/playlists?limit=%d", maxPageSize))
}

// UserPlaylists walks the public playlists of the given user.
func (c *Client) UserPlaylists(ctx context.Context, userID string) *Pager[SimplePlaylist] {
	return pagerFor[SimplePlaylist](c, ctx, fmt.Sprintf("/users/%s/playlists?limit=%d", userID, maxPageSize))
}

// PlaylistTracks walks every track of a playlist in playlist order.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) *Pager[PlaylistTrack] {
	return pagerFor[PlaylistTrack](c, ctx, fmt.Sprintf("/playlists/%s/tracks?limit=%d", playlistID, maxPageSize))
}

// SavedTracks walks the user's library in recency order.
func (c *Client) SavedTracks(ctx context.Context) *Pager[SavedTrack] {
	return pagerFor[SavedTrack](c, ctx, fmt.Sprintf("/me/tracks?limit=%d", maxPageSize))
}

// CreatePlaylist creates a playlist owned by the authenticated user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error) {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"name": name, "description": description, "public": public}

	var playlist Playlist
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%s/playlists", userID), nil, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddPlaylistTracks appends track URIs to a playlist, splitting the input
// into capped requests issued strictly in order so append positions stay
// well-defined. On a mid-batch failure the chunks already sent stay applied;
// the returned [BatchError] says how many. Returns the playlist snapshot id
// after the last chunk.
func (c *Client) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) (string, error) {
	path := fmt.Sprintf("/playlists/%s/tracks", playlistID)

	result, err := batched(uris, maxPlaylistTracksPerRequest, func(chunk []string) (snapshot, error) {
		var snap snapshot
		err := c.do(ctx, http.MethodPost, path, nil, map[string]any{"uris": chunk}, &snap)
		return snap, err
	})
	return result.SnapshotID, err
}

// RemovePlaylistTracks removes all occurrences of the given track URIs,
// chunked the same way as [Client.AddPlaylistTracks].
func (c *Client) RemovePlaylistTracks(ctx context.Context, playlistID string, uris []string) (string, error) {
	path := fmt.Sprintf("/playlists/%s/tracks", playlistID)

	result, err := batched(uris, maxPlaylistTracksPerRequest, func(chunk []string) (snapshot, error) {
		refs := make([]map[string]string, len(chunk))
		for i, uri := range chunk {
			refs[i] = map[string]string{"uri": uri}
		}

		var snap snapshot
		err := c.do(ctx, http.MethodDelete, path, nil, map[string]any{"tracks": refs}, &snap)
		return snap, err
	})
	return result.SnapshotID, err
}

// Track retrieves a single track by ID.
func (c *Client) Track(ctx context.Context, trackID string) (*Track, error) {
	var track Track
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tracks/%s", trackID), nil, nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// Tracks retrieves multiple tracks by ID, transparently splitting the request
// at the API's cap and preserving input order.
func (c *Client) Tracks(ctx context.Context, trackIDs []string) ([]Track, error) {
	return chunkedIDs[Track](c, ctx, "/tracks", "tracks", trackIDs, maxTrackIDsPerRequest)
}

// SaveTracks adds tracks to the user's library, chunked at the API's cap.
func (c *Client) SaveTracks(ctx context.Context, trackIDs []string) error {
	_, err := batched(trackIDs, maxTrackIDsPerRequest, func(chunk []string) (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPut, "/me/tracks", nil, map[string]any{"ids": chunk}, nil)
	})
	return err
}

// Artist retrieves a single artist by ID.
func (c *Client) Artist(ctx context.Context, artistID string) (*Artist, error) {
	var artist Artist
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/artists/%s", artistID), nil, nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// Artists retrieves multiple artists by ID, chunked at the API's cap.
func (c *Client) Artists(ctx context.Context, artistIDs []string) ([]Artist, error) {
	return chunkedIDs[Artist](c, ctx, "/artists", "artists", artistIDs, maxArtistIDsPerRequest)
}

// RelatedArtists retrieves artists similar to the given one.
func (c *Client) RelatedArtists(ctx context.Context, artistID string) ([]Artist, error) {
	var envelope struct {
		Artists []Artist `json:"artists"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/artists/%s/related-artists", artistID), nil, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Artists, nil
}

// Album retrieves a single album by ID.
func (c *Client) Album(ctx context.Context, albumID string) (*Album, error) {
	var album Album
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/albums/%s", albumID), nil, nil, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// Albums retrieves multiple albums by ID, chunked at the API's cap.
func (c *Client) Albums(ctx context.Context, albumIDs []string) ([]Album, error) {
	return chunkedIDs[Album](c, ctx, "/albums", "albums", albumIDs, maxAlbumIDsPerRequest)
}

// AlbumTracks walks an album's tracks in disc order.
func (c *Client) AlbumTracks(ctx context.Context, albumID string) *Pager[Track] {
	return pagerFor[Track](c, ctx, fmt.Sprintf("/albums/%s/tracks?limit=%d", albumID, maxPageSize))
}

// SearchTracks walks track search results for the given query.
func (c *Client) SearchTracks(ctx context.Context, query string) *Pager[Track] {
	params := url.Values{"q": {query}, "type": {"track"}, "limit": {fmt.Sprint(maxPageSize)}}

	return newPager(ctx, "/search?"+params.Encode(), func(ctx context.Context, pageURL string) (page[Track], error) {
		var envelope struct {
			Tracks page[Track] `json:"tracks"`
		}
		if err := c.do(ctx, http.MethodGet, pageURL, nil, nil, &envelope); err != nil {
			return page[Track]{}, err
		}
		return envelope.Tracks, nil
	})
}
