package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotlite/internal/spotify"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
)

// Model is the browser's state: a playlist list, and a track list for the
// playlist the user drilled into.
type Model struct {
	ctx    context.Context
	client *spotify.Client

	view     ViewState
	width    int
	height   int
	loading  bool
	err      error
	selected *spotify.SimplePlaylist

	playlistList list.Model
	trackList    list.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates the browser model. Playlists load on Init.
func NewModel(ctx context.Context, client *spotify.Client) Model {
	delegate := list.NewDefaultDelegate()

	playlists := list.New([]list.Item{}, delegate, 0, 0)
	playlists.Title = "Playlists"
	playlists.SetShowHelp(false)

	tracks := list.New([]list.Item{}, delegate, 0, 0)
	tracks.SetShowHelp(false)

	return Model{
		ctx:          ctx,
		client:       client,
		view:         PlaylistListView,
		loading:      true,
		playlistList: playlists,
		trackList:    tracks,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init kicks off the initial playlist fetch.
func (m Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// fetchPlaylists drains the playlist pager off the UI goroutine.
func (m Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := spotify.Collect(m.client.Playlists(m.ctx))
		return playlistsLoadedMsg{playlists: playlists, err: err}
	}
}

// fetchTracks drains the track pager for the selected playlist.
func (m Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := spotify.Collect(m.client.PlaylistTracks(m.ctx, playlistID))
		return tracksLoadedMsg{tracks: tracks, err: err}
	}
}

// Update implements the bubbletea update loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - 4
		m.playlistList.SetSize(m.width, listHeight)
		m.trackList.SetSize(m.width, listHeight)
		return m, nil

	case playlistsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.playlists))
		for i, playlist := range msg.playlists {
			items[i] = playlistItem{playlist: playlist}
		}
		return m, m.playlistList.SetItems(items)

	case tracksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track.Track}
		}
		m.view = TrackListView
		return m, m.trackList.SetItems(items)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateLists(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.back):
		if m.view == TrackListView {
			m.view = PlaylistListView
			m.selected = nil
			m.err = nil
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.refresh):
		m.loading = true
		m.err = nil
		if m.view == TrackListView && m.selected != nil {
			return m, m.fetchTracks(m.selected.ID)
		}
		return m, m.fetchPlaylists()

	case key.Matches(msg, m.keys.enter):
		if m.view == PlaylistListView {
			if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				playlist := item.playlist
				m.selected = &playlist
				m.trackList.Title = playlist.Name
				m.loading = true
				m.err = nil
				return m, m.fetchTracks(playlist.ID)
			}
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// View implements the bubbletea render loop.
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n",
			styles.err.Render(fmt.Sprintf("Error: %v", m.err)),
			styles.help.Render("r to retry • q to quit"))
	}

	if m.loading {
		return styles.title.Render("Loading…") + "\n"
	}

	var body string
	switch m.view {
	case PlaylistListView:
		body = m.playlistList.View()
	case TrackListView:
		body = m.trackList.View()
	}

	return body + "\n" + m.help.View(m.keys)
}
