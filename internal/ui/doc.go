// Package ui implements an interactive playlist browser using bubbletea's Elm architecture.
//
// Two views: [PlaylistListView] lists the authenticated user's playlists,
// [TrackListView] shows the tracks of the playlist opened with enter. Both
// fetches drain the client's lazy pagers inside tea.Cmd closures so the
// render loop never blocks on the network.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with
// contextual help from charmbracelet/bubbles/help.
package ui
