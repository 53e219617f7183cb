package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/desertthunder/spotlite/internal/spotify"
	"github.com/urfave/cli/v3"
)

// ArtistGet fetches one or more artists by ID.
func (r *Runner) ArtistGet(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one artist id", shared.ErrMissingArgument)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		artists, err := client.Artists(ctx, ids)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(artists, cmd.Bool("pretty"))
		}

		for _, a := range artists {
			r.writePlain("%s  %s\n", a.ID, a.Name)
			if len(a.Genres) > 0 {
				r.writePlain("    %s\n", strings.Join(a.Genres, ", "))
			}
		}
		return nil
	})
}

// ArtistRelated lists artists related to the given one.
func (r *Runner) ArtistRelated(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}

	return r.withClient(ctx, func(client *spotify.Client) error {
		artists, err := client.RelatedArtists(ctx, id)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(artists, true)
		}

		for i, a := range artists {
			r.writePlain("%d. %s\n", i+1, a.Name)
		}
		return nil
	})
}
