package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/repositories"
	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/desertthunder/spotlite/internal/spotify"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	client  *spotify.Client
	logger  *log.Logger
	output  io.Writer
	db      *sql.DB
	account string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Client  *spotify.Client
	Logger  *log.Logger
	Output  io.Writer
	Account string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Account == "" {
		opts.Account = "default"
	}

	return &Runner{
		config:  opts.Config,
		client:  opts.Client,
		logger:  opts.Logger,
		output:  opts.Output,
		account: opts.Account,
	}
}

// SetLogger swaps the runner's logger; used by the TUI to move log lines
// into a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// ensureClient builds the API client from config and environment credentials
// on first use.
func (r *Runner) ensureClient() (*spotify.Client, error) {
	if r.client != nil {
		return r.client, nil
	}

	sc := r.config.Credentials.Spotify
	creds, err := spotify.ResolveCredentials(sc.ClientID, sc.ClientSecret, sc.RedirectURI)
	if err != nil {
		return nil, err
	}

	r.client = spotify.New(creds, spotify.Opts{Logger: r.logger})
	return r.client, nil
}

// database opens the SQLite store and applies migrations, once per process.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := repositories.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// sessions returns the refresh-token repository.
func (r *Runner) sessions() (*repositories.SessionRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewSessionRepository(db), nil
}

// playlistCache returns the cached-playlist repository.
func (r *Runner) playlistCache() (*repositories.PlaylistRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewPlaylistRepository(db), nil
}

// withClient runs fn against an authenticated client. The stored refresh
// token for the active account is attached first, and persisted again
// afterwards in case the provider rotated it during the call.
func (r *Runner) withClient(ctx context.Context, fn func(client *spotify.Client) error) error {
	client, err := r.ensureClient()
	if err != nil {
		return err
	}

	repo, err := r.sessions()
	if err != nil {
		return err
	}

	if client.Session() == nil {
		stored, err := repo.Get(r.account)
		if err != nil {
			return fmt.Errorf("%w: run 'spotlite auth login' first", shared.ErrNoSession)
		}
		client.SetSession(spotify.SessionFromRefreshToken(stored.RefreshToken))
	}

	before := client.Session().RefreshToken
	runErr := fn(client)

	if session := client.Session(); session != nil && session.RefreshToken != "" && session.RefreshToken != before {
		r.logger.Debug("refresh token rotated, persisting", "account", r.account)
		if err := repo.Save(r.account, session.RefreshToken, nil); err != nil {
			r.logger.Warn("failed to persist rotated refresh token", "error", err)
		}
	}

	return runErr
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
