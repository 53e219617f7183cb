// Package repositories implements SQLite persistence for CLI state.
//
// Only two things survive process restarts: refresh tokens per account
// ([SessionRepository]) and cached playlist metadata ([PlaylistRepository]).
// Access tokens and expiry timestamps are deliberately never persisted.
//
// Schema lives in embedded SQL migration files applied by [Migrate] and
// tracked in a schema_migrations table; [Rollback] undoes the most recent
// version.
package repositories
