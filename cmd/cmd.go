// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistCommand, trackCommand, artistCommand, meCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// setupCommand initializes the config file and local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify using OAuth2 and store the refresh token",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "scope",
						Usage: "Authorization scopes to request (repeatable)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check the stored session by fetching the user profile",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored refresh token",
				Action: r.AuthLogout,
			},
		},
	}
}

// playlistCommand handles playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the authenticated user's playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to print (0 = all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "List from the local cache without calling the API",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show one playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "tracks",
				Usage: "List every track in a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.PlaylistTracks,
			},
			{
				Name:  "create",
				Usage: "Create a playlist for the authenticated user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "add-tracks",
				Usage: "Append track URIs to a playlist (splits at the API's request cap)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "uri",
						Usage:    "Track URI to append (repeatable)",
						Required: true,
					},
				},
				Action: r.PlaylistAddTracks,
			},
			{
				Name:  "remove-tracks",
				Usage: "Remove track URIs from a playlist (splits at the API's request cap)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "uri",
						Usage:    "Track URI to remove (repeatable)",
						Required: true,
					},
				},
				Action: r.PlaylistRemoveTracks,
			},
			{
				Name:  "export",
				Usage: "Export a playlist's tracks to csv, markdown or text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, markdown or text",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// trackCommand handles track operations
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Track operations",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Fetch tracks by ID (splits at the API's request cap)",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "ids", Min: 1, Max: -1},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.TrackGet,
			},
			{
				Name:  "save",
				Usage: "Save tracks to the user's library",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "ids", Min: 1, Max: -1},
				},
				Action: r.TrackSave,
			},
			{
				Name:  "search",
				Usage: "Search tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum results to print", Value: 20},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.TrackSearch,
			},
		},
	}
}

// artistCommand handles artist operations
func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "Artist operations",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Fetch artists by ID",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "ids", Min: 1, Max: -1},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.ArtistGet,
			},
			{
				Name:  "related",
				Usage: "List artists related to the given one",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.ArtistRelated,
			},
		},
	}
}

// meCommand prints the authenticated user's profile.
func meCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "me",
		Usage: "Show the authenticated user's profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
		},
		Action: r.Me,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive playlist browser",
		Action:  r.TUI,
	}
}
