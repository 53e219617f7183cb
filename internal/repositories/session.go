package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotlite/internal/shared"
)

// StoredSession is the persisted half of a user session: only the
// long-lived refresh token survives process restarts, access tokens are
// ephemeral and never written to disk.
type StoredSession struct {
	ID           string
	Account      string
	RefreshToken string
	Scopes       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionRepository persists refresh tokens keyed by account name.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a repository over the given database connection.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the refresh token for an account. Rotated refresh tokens
// overwrite the previous one.
func (r *SessionRepository) Save(account, refreshToken string, scopes []string) error {
	if account == "" || refreshToken == "" {
		return fmt.Errorf("%w: account and refresh token are required", shared.ErrInvalidArgument)
	}

	now := time.Now()
	query := `
		INSERT INTO sessions (id, account, refresh_token, scopes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			refresh_token = excluded.refresh_token,
			scopes = excluded.scopes,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, shared.GenerateID(), account, refreshToken, strings.Join(scopes, " "), now, now)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get retrieves the stored session for an account.
func (r *SessionRepository) Get(account string) (*StoredSession, error) {
	query := `
		SELECT id, account, refresh_token, scopes, created_at, updated_at
		FROM sessions
		WHERE account = ?
	`

	var (
		stored StoredSession
		scopes string
	)

	err := r.db.QueryRow(query, account).Scan(
		&stored.ID, &stored.Account, &stored.RefreshToken, &scopes, &stored.CreatedAt, &stored.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if scopes != "" {
		stored.Scopes = strings.Split(scopes, " ")
	}

	return &stored, nil
}

// Delete removes the stored session for an account.
func (r *SessionRepository) Delete(account string) error {
	result, err := r.db.Exec("DELETE FROM sessions WHERE account = ?", account)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, account)
	}

	return nil
}

// List returns every stored session, newest first.
func (r *SessionRepository) List() ([]*StoredSession, error) {
	query := `
		SELECT id, account, refresh_token, scopes, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*StoredSession
	for rows.Next() {
		var (
			stored StoredSession
			scopes string
		)
		if err := rows.Scan(&stored.ID, &stored.Account, &stored.RefreshToken, &scopes, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if scopes != "" {
			stored.Scopes = strings.Split(scopes, " ")
		}
		sessions = append(sessions, &stored)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}
