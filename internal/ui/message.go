package ui

import "github.com/desertthunder/spotlite/internal/spotify"

// playlistsLoadedMsg delivers the playlist fetch result to the update loop.
type playlistsLoadedMsg struct {
	playlists []spotify.SimplePlaylist
	err       error
}

// tracksLoadedMsg delivers the track fetch result for the selected playlist.
type tracksLoadedMsg struct {
	tracks []spotify.PlaylistTrack
	err    error
}
