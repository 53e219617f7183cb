// OAuth2 authorization-code flow: credential resolution, session lifecycle,
// and the refresh-token grant.
//
// https://developer.spotify.com/documentation/web-api/concepts/authorization
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/spotlite/internal/shared"
	"golang.org/x/oauth2"
)

// Environment variable names checked when a credential is not supplied
// explicitly.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "SPOTIFY_REDIRECT_URI"
)

// expiryMargin is the safety window before the recorded expiry at which an
// access token is already considered stale.
const expiryMargin = 30 * time.Second

// ValidScopes lists the authorization scopes the Spotify accounts service
// documents. AuthURL rejects anything outside this list.
var ValidScopes = []string{
	"ugc-image-upload", "user-read-recently-played", "user-top-read",
	"user-read-playback-position", "user-read-playback-state",
	"user-modify-playback-state", "user-read-currently-playing",
	"app-remote-control", "streaming", "playlist-modify-public",
	"playlist-modify-private", "playlist-read-private",
	"playlist-read-collaborative", "user-follow-modify", "user-follow-read",
	"user-library-modify", "user-library-read", "user-read-email",
	"user-read-private",
}

// Credentials identify the client application. Immutable once constructed.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// ResolveCredentials builds [Credentials] from explicit values, falling back
// to the named environment variables for any empty field, in that priority
// order. Client id and secret are required; the redirect URI is only needed
// for authorization-URL construction and code exchange.
func ResolveCredentials(clientID, clientSecret, redirectURI string) (Credentials, error) {
	creds := Credentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
	}

	if creds.ClientID == "" {
		creds.ClientID = os.Getenv(EnvClientID)
	}
	if creds.ClientSecret == "" {
		creds.ClientSecret = os.Getenv(EnvClientSecret)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = os.Getenv(EnvRedirectURI)
	}

	if creds.ClientID == "" {
		return creds, fmt.Errorf("%w: client_id (or %s)", shared.ErrMissingCredentials, EnvClientID)
	}
	if creds.ClientSecret == "" {
		return creds, fmt.Errorf("%w: client_secret (or %s)", shared.ErrMissingCredentials, EnvClientSecret)
	}

	return creds, nil
}

// Session holds the tokens for one authorized user. Access token and expiry
// are ephemeral; only the refresh token is meant to be persisted across
// process restarts.
type Session struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// SessionFromRefreshToken constructs a detached session from a persisted
// refresh token. The first API call will mint an access token for it.
func SessionFromRefreshToken(refreshToken string) *Session {
	return &Session{RefreshToken: refreshToken}
}

// SessionFromToken converts an [oauth2.Token], e.g. the result of the
// authorization-code exchange, into a session.
func SessionFromToken(token *oauth2.Token) *Session {
	return &Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
}

// Token converts the session back into an [oauth2.Token].
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
	}
}

// fresh reports whether the access token can still be used without a refresh.
// A zero expiry means the provider never told us; assume usable and rely on
// the 401-refresh-retry path in the transport.
func (s *Session) fresh(now time.Time) bool {
	if s.AccessToken == "" {
		return false
	}
	return s.Expiry.IsZero() || s.Expiry.Sub(now) > expiryMargin
}

// ValidateScopes checks every scope against [ValidScopes].
func ValidateScopes(scopes []string) error {
	for _, scope := range scopes {
		known := false
		for _, valid := range ValidScopes {
			if scope == valid {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %s", shared.ErrInvalidScope, scope)
		}
	}
	return nil
}

// OAuthConfig returns the [oauth2.Config] for this client's credentials and
// the given scopes. The server package uses it to drive the loopback
// callback exchange.
func (c *Client) OAuthConfig(scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		RedirectURL:  c.creds.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.authURL,
			TokenURL: c.tokenURL,
		},
	}
}

// AuthURL crafts the URL to send an end user to for authorization. Pure
// construction, no network: the result carries response_type=code, the
// client id, the redirect URI, the space-joined scopes, and the state token.
// After granting access Spotify redirects to the redirect URI with a
// one-time code for [Client.ExchangeCode].
func (c *Client) AuthURL(state string, scopes []string) (string, error) {
	if c.creds.RedirectURI == "" {
		return "", fmt.Errorf("%w: redirect_uri (or %s)", shared.ErrMissingCredentials, EnvRedirectURI)
	}
	if err := ValidateScopes(scopes); err != nil {
		return "", err
	}

	return c.OAuthConfig(scopes...).AuthCodeURL(state), nil
}

// ExchangeCode trades a one-time authorization code for an initial session
// and attaches it to the client. This is the only path that produces a first
// refresh token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	if c.creds.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect_uri (or %s)", shared.ErrMissingCredentials, EnvRedirectURI)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.OAuthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
	}

	session := SessionFromToken(token)
	c.SetSession(session)
	return session, nil
}

// tokenResponse is the accounts service's token grant payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// ensureToken returns an access token that is valid for at least
// [expiryMargin], refreshing through the token endpoint when necessary.
// Callers holding no session get [shared.ErrNoSession].
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return "", shared.ErrNoSession
	}
	if c.session.fresh(time.Now()) {
		return c.session.AccessToken, nil
	}

	return c.refreshLocked(ctx)
}

// refreshAfter forces a refresh after the remote rejected staleToken. If
// another flow already replaced it the current token is returned without a
// second grant.
func (c *Client) refreshAfter(ctx context.Context, staleToken string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return "", shared.ErrNoSession
	}
	if c.session.AccessToken != "" && c.session.AccessToken != staleToken {
		return c.session.AccessToken, nil
	}

	return c.refreshLocked(ctx)
}

// refreshLocked performs the refresh-token grant. Caller must hold c.mu.
// On a definitive rejection the session is dropped: the caller has to
// re-authorize with a fresh code. The refresh token rotates only when the
// provider returns a new one.
func (c *Client) refreshLocked(ctx context.Context) (string, error) {
	if c.session.RefreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token", shared.ErrRefreshFailed)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.session.RefreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token refresh: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading refresh response: %v", shared.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.session = nil
		c.userID = ""
		return "", fmt.Errorf("%w: status %d: %s", shared.ErrRefreshFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var grant tokenResponse
	if err := json.Unmarshal(body, &grant); err != nil {
		return "", fmt.Errorf("%w: decoding refresh response: %v", shared.ErrRefreshFailed, err)
	}

	c.session.AccessToken = grant.AccessToken
	if grant.ExpiresIn > 0 {
		c.session.Expiry = time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	} else {
		c.session.Expiry = time.Time{}
	}
	if grant.RefreshToken != "" {
		c.session.RefreshToken = grant.RefreshToken
	}

	c.logger.Debug("access token refreshed", "expires_in", grant.ExpiresIn, "rotated", grant.RefreshToken != "")

	return c.session.AccessToken, nil
}
