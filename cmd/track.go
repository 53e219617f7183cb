package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/desertthunder/spotlite/internal/spotify"
	"github.com/urfave/cli/v3"
)

func artistNames(artists []spotify.Artist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// describeBatchFailure rewraps a partial bulk-write failure with a summary
// of how far the operation got before the failing chunk.
func describeBatchFailure(err error) error {
	var batchErr *spotify.BatchError
	if errors.As(err, &batchErr) {
		return fmt.Errorf("applied %d of %d chunks before chunk %d failed: %w",
			batchErr.Applied, batchErr.Chunks, batchErr.Chunk, err)
	}
	return err
}

// TrackGet fetches one or more tracks by ID. The client splits the list at
// the API's per-request cap.
func (r *Runner) TrackGet(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one track id", shared.ErrMissingArgument)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		tracks, err := client.Tracks(ctx, ids)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(tracks, cmd.Bool("pretty"))
		}

		for _, t := range tracks {
			r.writePlain("%s  %s - %s (%d:%02d)\n", t.ID, t.Name, artistNames(t.Artists),
				t.DurationMS/60000, t.DurationMS%60000/1000)
		}
		return nil
	})
}

// TrackSave saves tracks to the user's library.
func (r *Runner) TrackSave(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one track id", shared.ErrMissingArgument)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		if err := client.SaveTracks(ctx, ids); err != nil {
			return describeBatchFailure(err)
		}

		r.logger.Info("tracks saved", "count", len(ids))
		return r.writePlain("✓ Saved %d tracks\n", len(ids))
	})
}

// TrackSearch searches tracks and prints up to --limit results.
func (r *Runner) TrackSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	limit := cmd.Int("limit")

	return r.withClient(ctx, func(client *spotify.Client) error {
		pager := client.SearchTracks(ctx, query)

		var tracks []spotify.Track
		for pager.Next() {
			tracks = append(tracks, pager.Item())
			if limit > 0 && len(tracks) >= limit {
				break
			}
		}
		if err := pager.Err(); err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(tracks, true)
		}

		for i, t := range tracks {
			r.writePlain("%d. %s - %s (%s)\n", i+1, t.Name, artistNames(t.Artists), t.Album.Name)
		}
		return nil
	})
}
