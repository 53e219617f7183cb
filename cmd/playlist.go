package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotlite/internal/formatter"
	"github.com/desertthunder/spotlite/internal/repositories"
	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/desertthunder/spotlite/internal/spotify"
	"github.com/urfave/cli/v3"
)

// PlaylistList prints the authenticated user's playlists, walking every page.
// With --cached it reads the local cache instead of calling the API; a live
// listing refreshes the cache as a side effect.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	if cmd.Bool("cached") {
		return r.playlistListCached(cmd, limit)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		playlists, err := spotify.Collect(client.Playlists(ctx))
		if err != nil {
			return err
		}

		r.cachePlaylists(playlists)

		if limit > 0 && limit < len(playlists) {
			playlists = playlists[:limit]
		}

		if cmd.Bool("json") {
			return r.writeJSON(playlists, cmd.Bool("pretty"))
		}

		for _, pl := range playlists {
			r.writePlain("%s  %s (%d tracks)\n", pl.ID, pl.Name, pl.Tracks.Total)
		}
		return r.writePlainln("%d playlists", len(playlists))
	})
}

func (r *Runner) playlistListCached(cmd *cli.Command, limit int) error {
	cache, err := r.playlistCache()
	if err != nil {
		return err
	}

	playlists, err := cache.ListByAccount(r.account)
	if err != nil {
		return err
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	for _, pl := range playlists {
		r.writePlain("%s  %s (%d tracks, synced %s)\n",
			pl.SpotifyID, pl.Name, pl.TrackCount, pl.SyncedAt.Format("2006-01-02 15:04"))
	}
	return r.writePlainln("%d cached playlists", len(playlists))
}

// cachePlaylists refreshes the local metadata cache. Failures are logged,
// not returned; the cache is best effort.
func (r *Runner) cachePlaylists(playlists []spotify.SimplePlaylist) {
	cache, err := r.playlistCache()
	if err != nil {
		r.logger.Warn("playlist cache unavailable", "error", err)
		return
	}

	for _, pl := range playlists {
		err := cache.Upsert(repositories.CachedPlaylist{
			SpotifyID:   pl.ID,
			Account:     r.account,
			Name:        pl.Name,
			Description: pl.Description,
			TrackCount:  pl.Tracks.Total,
			Public:      pl.Public,
		})
		if err != nil {
			r.logger.Warn("failed to cache playlist", "id", pl.ID, "error", err)
			return
		}
	}
}

// PlaylistShow prints one playlist's metadata.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		playlist, err := client.Playlist(ctx, id)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(playlist, cmd.Bool("pretty"))
		}

		r.writePlain("%s\n", playlist.Name)
		if playlist.Description != "" {
			r.writePlain("%s\n", playlist.Description)
		}
		r.writePlain("Owner: %s\n", playlist.Owner.DisplayName)
		r.writePlain("Tracks: %d\n", playlist.Tracks.Total)
		r.writePlain("Public: %t\n", playlist.Public)
		return nil
	})
}

// PlaylistTracks prints every track in a playlist, walking every page.
func (r *Runner) PlaylistTracks(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		pager := client.PlaylistTracks(ctx, id)

		if cmd.Bool("json") {
			tracks, err := spotify.Collect(pager)
			if err != nil {
				return err
			}
			return r.writeJSON(tracks, cmd.Bool("pretty"))
		}

		count := 0
		for pager.Next() {
			item := pager.Item()
			count++
			r.writePlain("%4d. %s - %s\n", count, item.Track.Name, artistNames(item.Track.Artists))
		}
		if err := pager.Err(); err != nil {
			return err
		}
		return r.writePlainln("%d tracks", count)
	})
}

// PlaylistCreate creates a playlist for the authenticated user.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	return r.withClient(ctx, func(client *spotify.Client) error {
		playlist, err := client.CreatePlaylist(ctx, cmd.String("name"), cmd.String("description"), cmd.Bool("public"))
		if err != nil {
			return err
		}

		r.logger.Info("playlist created", "id", playlist.ID)
		return r.writePlain("✓ Created %q (%s)\n", playlist.Name, playlist.ID)
	})
}

// PlaylistAddTracks appends track URIs to a playlist. The client splits the
// list at the API's per-request cap; a partial failure reports how many
// chunks were applied.
func (r *Runner) PlaylistAddTracks(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	uris := cmd.StringSlice("uri")

	return r.withClient(ctx, func(client *spotify.Client) error {
		snapshotID, err := client.AddPlaylistTracks(ctx, id, uris)
		if err != nil {
			return describeBatchFailure(err)
		}

		r.logger.Info("tracks added", "playlist", id, "count", len(uris), "snapshot", snapshotID)
		return r.writePlain("✓ Added %d tracks (snapshot %s)\n", len(uris), snapshotID)
	})
}

// PlaylistExport fetches a playlist and its full track listing, renders it in
// the requested format and writes it to stdout or a file.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		playlist, err := client.Playlist(ctx, id)
		if err != nil {
			return err
		}

		tracks, err := spotify.Collect(client.PlaylistTracks(ctx, id))
		if err != nil {
			return err
		}

		data, err := formatter.Format(&formatter.Export{Playlist: *playlist, Tracks: tracks}, cmd.String("format"))
		if err != nil {
			return err
		}

		if path := cmd.String("output"); path != "" {
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			r.logger.Info("playlist exported", "id", id, "file", path)
			return r.writePlain("✓ Exported %q to %s\n", playlist.Name, path)
		}

		_, err = r.output.Write(data)
		return err
	})
}

// PlaylistRemoveTracks removes track URIs from a playlist.
func (r *Runner) PlaylistRemoveTracks(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	uris := cmd.StringSlice("uri")

	return r.withClient(ctx, func(client *spotify.Client) error {
		snapshotID, err := client.RemovePlaylistTracks(ctx, id, uris)
		if err != nil {
			return describeBatchFailure(err)
		}

		r.logger.Info("tracks removed", "playlist", id, "count", len(uris), "snapshot", snapshotID)
		return r.writePlain("✓ Removed %d tracks (snapshot %s)\n", len(uris), snapshotID)
	})
}
