package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// CachedPlaylist is locally cached playlist metadata for offline listing.
type CachedPlaylist struct {
	SpotifyID   string
	Account     string
	Name        string
	Description string
	TrackCount  int
	Public      bool
	SyncedAt    time.Time
}

// PlaylistRepository caches playlist metadata fetched from the API, keyed by
// playlist id and account.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a repository over the given database connection.
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Upsert inserts or refreshes one cached playlist.
func (r *PlaylistRepository) Upsert(playlist CachedPlaylist) error {
	query := `
		INSERT INTO playlists (spotify_id, account, name, description, track_count, public, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spotify_id, account) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			track_count = excluded.track_count,
			public = excluded.public,
			synced_at = excluded.synced_at
	`

	_, err := r.db.Exec(query, playlist.SpotifyID, playlist.Account, playlist.Name,
		playlist.Description, playlist.TrackCount, playlist.Public, time.Now())
	if err != nil {
		return fmt.Errorf("failed to cache playlist: %w", err)
	}

	return nil
}

// ListByAccount returns the cached playlists for an account in name order.
func (r *PlaylistRepository) ListByAccount(account string) ([]CachedPlaylist, error) {
	query := `
		SELECT spotify_id, account, name, description, track_count, public, synced_at
		FROM playlists
		WHERE account = ?
		ORDER BY name ASC
	`

	rows, err := r.db.Query(query, account)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []CachedPlaylist
	for rows.Next() {
		var playlist CachedPlaylist
		if err := rows.Scan(&playlist.SpotifyID, &playlist.Account, &playlist.Name,
			&playlist.Description, &playlist.TrackCount, &playlist.Public, &playlist.SyncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// Clear drops every cached playlist for an account.
func (r *PlaylistRepository) Clear(account string) error {
	if _, err := r.db.Exec("DELETE FROM playlists WHERE account = ?", account); err != nil {
		return fmt.Errorf("failed to clear playlist cache: %w", err)
	}
	return nil
}
