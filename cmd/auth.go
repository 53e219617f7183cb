package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotlite/internal/server"
	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/desertthunder/spotlite/internal/spotify"
	"github.com/urfave/cli/v3"
)

// loginTimeout bounds how long the callback server waits for the user
// to approve access in the browser.
const loginTimeout = 2 * time.Minute

// defaultScopes cover profile, playlist and library access.
var defaultScopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-library-read",
	"user-library-modify",
}

// AuthLogin runs the authorization code flow: opens the consent page in a
// browser, waits for the redirect on the local callback server, then stores
// the refresh token for the active account.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	client, err := r.ensureClient()
	if err != nil {
		return err
	}

	repo, err := r.sessions()
	if err != nil {
		return err
	}

	scopes := cmd.StringSlice("scope")
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	authURL, err := client.AuthURL(state, scopes)
	if err != nil {
		return err
	}

	flow := server.NewFlow(client.OAuthConfig(scopes...), state, r.config.Server.Addr(), r.logger)
	flow.Start()

	r.logger.Info("waiting for authorization", "addr", r.config.Server.Addr())
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("could not open browser", "error", err)
		r.writePlain("Open this URL in your browser:\n\n  %s\n\n", authURL)
	}

	token, err := flow.Wait(ctx, loginTimeout)
	if err != nil {
		return err
	}

	client.SetSession(spotify.SessionFromToken(token))

	user, err := client.Me(ctx)
	if err != nil {
		return err
	}

	if err := repo.Save(r.account, token.RefreshToken, scopes); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	r.logger.Info("authorization complete", "user", user.ID, "account", r.account)
	return r.writePlain("✓ Logged in as %s (%s)\n", user.DisplayName, user.ID)
}

// AuthStatus verifies the stored session by fetching the user profile.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.sessions()
	if err != nil {
		return err
	}

	stored, err := repo.Get(r.account)
	if err != nil {
		return r.writePlain("✗ Not logged in (account %q)\n", r.account)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		user, err := client.Me(ctx)
		if err != nil {
			return fmt.Errorf("stored session is no longer valid: %w", err)
		}

		r.writePlain("✓ Logged in as %s (%s)\n", user.DisplayName, user.ID)
		if len(stored.Scopes) > 0 {
			r.writePlain("Scopes: %s\n", strings.Join(stored.Scopes, " "))
		}
		return nil
	})
}

// AuthLogout deletes the stored refresh token for the active account.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.sessions()
	if err != nil {
		return err
	}

	if err := repo.Delete(r.account); err != nil {
		return err
	}

	if r.client != nil {
		r.client.SetSession(nil)
	}

	r.logger.Info("logged out", "account", r.account)
	return r.writePlain("✓ Logged out (account %q)\n", r.account)
}

// Me prints the authenticated user's profile.
func (r *Runner) Me(ctx context.Context, cmd *cli.Command) error {
	return r.withClient(ctx, func(client *spotify.Client) error {
		user, err := client.Me(ctx)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(user, cmd.Bool("pretty"))
		}

		r.writePlain("%s (%s)\n", user.DisplayName, user.ID)
		if user.Email != "" {
			r.writePlain("Email: %s\n", user.Email)
		}
		if user.Country != "" {
			r.writePlain("Country: %s\n", user.Country)
		}
		if user.Followers.Total > 0 {
			r.writePlain("Followers: %d\n", user.Followers.Total)
		}
		return nil
	})
}
