package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/spotlite/internal/shared"
)

func TestResolveCredentials(t *testing.T) {
	t.Run("explicit values win over environment", func(t *testing.T) {
		t.Setenv(EnvClientID, "env-id")
		t.Setenv(EnvClientSecret, "env-secret")

		creds, err := ResolveCredentials("explicit-id", "explicit-secret", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.ClientID != "explicit-id" || creds.ClientSecret != "explicit-secret" {
			t.Errorf("unexpected credentials %+v", creds)
		}
	})

	t.Run("environment fills empty fields", func(t *testing.T) {
		t.Setenv(EnvClientID, "env-id")
		t.Setenv(EnvClientSecret, "env-secret")
		t.Setenv(EnvRedirectURI, "http://localhost:1337/callback")

		creds, err := ResolveCredentials("", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.ClientID != "env-id" || creds.ClientSecret != "env-secret" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		if creds.RedirectURI != "http://localhost:1337/callback" {
			t.Errorf("unexpected redirect URI %s", creds.RedirectURI)
		}
	})

	t.Run("missing client id", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		t.Setenv(EnvClientSecret, "secret")

		_, err := ResolveCredentials("", "", "")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Setenv(EnvClientID, "id")
		t.Setenv(EnvClientSecret, "")

		_, err := ResolveCredentials("", "", "")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestValidateScopes(t *testing.T) {
	t.Run("documented scopes pass", func(t *testing.T) {
		if err := ValidateScopes([]string{"user-read-private", "playlist-modify-public"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty list passes", func(t *testing.T) {
		if err := ValidateScopes(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown scope rejected", func(t *testing.T) {
		err := ValidateScopes([]string{"user-read-private", "user-read-thoughts"})
		if !errors.Is(err, shared.ErrInvalidScope) {
			t.Errorf("expected ErrInvalidScope, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "user-read-thoughts") {
			t.Errorf("expected the offending scope in the message, got %v", err)
		}
	})
}

func TestAuthURL(t *testing.T) {
	client := New(Credentials{
		ClientID:     "abc",
		ClientSecret: "shh",
		RedirectURI:  "http://localhost:1337/callback",
	}, Opts{})

	t.Run("carries the full authorization query", func(t *testing.T) {
		raw, err := client.AuthURL("state123", []string{"user-read-private", "playlist-modify-public"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		parsed, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("failed to parse auth URL: %v", err)
		}

		query := parsed.Query()
		checks := map[string]string{
			"response_type": "code",
			"client_id":     "abc",
			"redirect_uri":  "http://localhost:1337/callback",
			"scope":         "user-read-private playlist-modify-public",
			"state":         "state123",
		}
		for key, want := range checks {
			if got := query.Get(key); got != want {
				t.Errorf("%s: expected %q, got %q", key, want, got)
			}
		}
	})

	t.Run("performs no network calls", func(t *testing.T) {
		if _, err := client.AuthURL("state", nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects unknown scopes", func(t *testing.T) {
		_, err := client.AuthURL("state", []string{"not-a-scope"})
		if !errors.Is(err, shared.ErrInvalidScope) {
			t.Errorf("expected ErrInvalidScope, got %v", err)
		}
	})

	t.Run("requires a redirect URI", func(t *testing.T) {
		noRedirect := New(Credentials{ClientID: "abc", ClientSecret: "shh"}, Opts{})
		_, err := noRedirect.AuthURL("state", nil)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestSessionFresh(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		session Session
		want    bool
	}{
		{"no access token", Session{RefreshToken: "r"}, false},
		{"zero expiry assumed valid", Session{AccessToken: "a"}, true},
		{"well before expiry", Session{AccessToken: "a", Expiry: now.Add(time.Hour)}, true},
		{"inside the safety margin", Session{AccessToken: "a", Expiry: now.Add(10 * time.Second)}, false},
		{"already expired", Session{AccessToken: "a", Expiry: now.Add(-time.Minute)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.session.fresh(now); got != tc.want {
				t.Errorf("expected fresh=%t, got %t", tc.want, got)
			}
		})
	}
}

func TestExchangeCode(t *testing.T) {
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "authorization_code" {
			t.Errorf("expected authorization_code grant, got %q", got)
		}
		if got := r.Form.Get("code"); got != "one-time-code" {
			t.Errorf("unexpected code %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "initial-access",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "initial-refresh",
		})
	})

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), token)
	client.SetSession(nil)

	session, err := client.ExchangeCode(context.Background(), "one-time-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.AccessToken != "initial-access" || session.RefreshToken != "initial-refresh" {
		t.Errorf("unexpected session %+v", session)
	}
	if attached := client.Session(); attached == nil || attached.RefreshToken != "initial-refresh" {
		t.Error("expected the session to be attached to the client")
	}
}

func TestEnsureToken(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), nil)
		client.SetSession(nil)

		_, err := client.ensureToken(context.Background())
		if !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("fresh token skips the token endpoint", func(t *testing.T) {
		var grants atomic.Int32
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
			grantHandler(&grants, ""))

		token, err := client.ensureToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "valid-token" {
			t.Errorf("expected the cached token, got %s", token)
		}
		if grants.Load() != 0 {
			t.Errorf("expected no refresh grants, got %d", grants.Load())
		}
	})

	t.Run("expired token triggers one refresh", func(t *testing.T) {
		var grants atomic.Int32
		token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "abc" || pass != "shh" {
				t.Errorf("expected client credentials via basic auth, got %s:%s", user, pass)
			}
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse form: %v", err)
			}
			if got := r.Form.Get("grant_type"); got != "refresh_token" {
				t.Errorf("expected refresh_token grant, got %q", got)
			}
			if got := r.Form.Get("refresh_token"); got != "refresh-1" {
				t.Errorf("unexpected refresh token %q", got)
			}
			grantHandler(&grants, "").ServeHTTP(w, r)
		})

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), token)
		client.SetSession(&Session{
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(-time.Minute),
		})

		got, err := client.ensureToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "minted-1" {
			t.Errorf("expected the minted token, got %s", got)
		}
		if grants.Load() != 1 {
			t.Errorf("expected 1 refresh grant, got %d", grants.Load())
		}

		session := client.Session()
		if session.RefreshToken != "refresh-1" {
			t.Errorf("refresh token rotated without a replacement: %s", session.RefreshToken)
		}
		if remaining := time.Until(session.Expiry); remaining < 59*time.Minute {
			t.Errorf("expected expiry about an hour out, got %s", remaining)
		}
	})

	t.Run("token inside the safety margin is refreshed", func(t *testing.T) {
		var grants atomic.Int32
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
			grantHandler(&grants, ""))
		client.SetSession(&Session{
			AccessToken:  "nearly-stale",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(10 * time.Second),
		})

		if _, err := client.ensureToken(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if grants.Load() != 1 {
			t.Errorf("expected 1 refresh grant, got %d", grants.Load())
		}
	})

	t.Run("rotated refresh token replaces the stored one", func(t *testing.T) {
		var grants atomic.Int32
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
			grantHandler(&grants, "refresh-2"))
		client.SetSession(&Session{
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(-time.Minute),
		})

		if _, err := client.ensureToken(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := client.Session().RefreshToken; got != "refresh-2" {
			t.Errorf("expected rotated refresh token, got %s", got)
		}
	})

	t.Run("definitive rejection drops the session", func(t *testing.T) {
		token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
		})

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), token)
		client.SetSession(&Session{
			AccessToken:  "stale",
			RefreshToken: "revoked",
			Expiry:       time.Now().Add(-time.Minute),
		})

		_, err := client.ensureToken(context.Background())
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
		if client.Session() != nil {
			t.Error("expected the session to be dropped")
		}
	})

	t.Run("session without refresh token", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), nil)
		client.SetSession(&Session{AccessToken: "stale", Expiry: time.Now().Add(-time.Minute)})

		_, err := client.ensureToken(context.Background())
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})

	t.Run("concurrent callers share one refresh", func(t *testing.T) {
		var grants atomic.Int32
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
			grantHandler(&grants, ""))
		client.SetSession(&Session{
			AccessToken:  "stale",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(-time.Minute),
		})

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := client.ensureToken(context.Background()); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if grants.Load() != 1 {
			t.Errorf("expected a single refresh grant, got %d", grants.Load())
		}
	})
}
