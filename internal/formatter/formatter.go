// package formatter exports playlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spotlite/internal/spotify"
)

// Export bundles a playlist with its full track listing for serialization.
type Export struct {
	Playlist spotify.Playlist
	Tracks   []spotify.PlaylistTrack
}

func artistNames(artists []spotify.Artist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func formatDuration(ms int) string {
	return fmt.Sprintf("%d:%02d", ms/60000, ms%60000/1000)
}

// ToCSV converts an Export to CSV with columns: ID, Title, Artist, Album, Duration, ISRC
func ToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range export.Tracks {
		track := item.Track
		record := []string{
			track.ID,
			track.Name,
			artistNames(track.Artists),
			track.Album.Name,
			strconv.Itoa(track.DurationMS),
			track.ExternalIDs.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown converts an Export to a Markdown document with a track table.
func ToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Playlist.Name))

	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", export.Playlist.Description))
	}
	if export.Playlist.Owner.DisplayName != "" {
		buf.WriteString(fmt.Sprintf("Curated by %s\n\n", export.Playlist.Owner.DisplayName))
	}

	buf.WriteString(fmt.Sprintf("**%d tracks**\n\n", len(export.Tracks)))
	buf.WriteString("| # | Title | Artist | Album | Duration |\n")
	buf.WriteString("|---|-------|--------|-------|----------|\n")

	for i, item := range export.Tracks {
		track := item.Track
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, track.Name, artistNames(track.Artists), track.Album.Name,
			formatDuration(track.DurationMS)))
	}

	return buf.Bytes(), nil
}

// ToPlainText converts an Export to a numbered plain-text listing.
func ToPlainText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", export.Playlist.Name))
	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n", export.Playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("%d tracks\n\n", len(export.Tracks)))

	for i, item := range export.Tracks {
		track := item.Track
		buf.WriteString(fmt.Sprintf("%4d. %s - %s (%s) [%s]\n",
			i+1, track.Name, artistNames(track.Artists), track.Album.Name,
			formatDuration(track.DurationMS)))
	}

	return buf.Bytes(), nil
}

// Format renders an Export in the named format: "csv", "markdown" ("md") or
// "text" ("txt").
func Format(export *Export, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ToCSV(export)
	case "markdown", "md":
		return ToMarkdown(export)
	case "text", "txt", "":
		return ToPlainText(export)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
