package formatter

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/desertthunder/spotlite/internal/spotify"
)

func testExport() *Export {
	return &Export{
		Playlist: spotify.Playlist{
			ID:          "pl1",
			Name:        "Morning Mix",
			Description: "Coffee tunes",
			Owner:       spotify.Owner{ID: "user1", DisplayName: "Test User"},
		},
		Tracks: []spotify.PlaylistTrack{
			{Track: spotify.Track{
				ID:         "t1",
				Name:       "One More Time",
				Artists:    []spotify.Artist{{Name: "Daft Punk"}},
				Album:      spotify.Album{Name: "Discovery"},
				DurationMS: 320357,
			}},
			{Track: spotify.Track{
				ID:         "t2",
				Name:       "Midnight City",
				Artists:    []spotify.Artist{{Name: "M83"}},
				Album:      spotify.Album{Name: "Hurry Up, We're Dreaming"},
				DurationMS: 243960,
			}},
		},
	}
}

func TestToCSV(t *testing.T) {
	data, err := ToCSV(testExport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][1] != "Title" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][1] != "One More Time" || records[1][2] != "Daft Punk" {
		t.Errorf("unexpected first row %v", records[1])
	}
	if records[2][3] != "Hurry Up, We're Dreaming" {
		t.Errorf("expected album with comma to survive quoting, got %v", records[2])
	}
}

func TestToMarkdown(t *testing.T) {
	data, err := ToMarkdown(testExport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := string(data)
	for _, want := range []string{
		"# Morning Mix",
		"Coffee tunes",
		"Curated by Test User",
		"**2 tracks**",
		"| 1 | One More Time | Daft Punk | Discovery | 5:20 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestToPlainText(t *testing.T) {
	data, err := ToPlainText(testExport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "Morning Mix") {
		t.Errorf("expected the playlist name:\n%s", out)
	}
	if !strings.Contains(out, "2. Midnight City - M83") {
		t.Errorf("expected numbered track lines:\n%s", out)
	}
	if !strings.Contains(out, "[4:03]") {
		t.Errorf("expected formatted durations:\n%s", out)
	}
}

func TestFormat(t *testing.T) {
	export := testExport()

	t.Run("dispatches by name", func(t *testing.T) {
		cases := map[string]string{
			"csv":      "ID,Title",
			"markdown": "# Morning Mix",
			"md":       "# Morning Mix",
			"text":     "Morning Mix",
			"txt":      "Morning Mix",
			"":         "Morning Mix",
		}
		for format, marker := range cases {
			data, err := Format(export, format)
			if err != nil {
				t.Errorf("%q: unexpected error: %v", format, err)
				continue
			}
			if !strings.Contains(string(data), marker) {
				t.Errorf("%q: expected %q in output", format, marker)
			}
		}
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		if _, err := Format(export, "yaml"); err == nil {
			t.Error("expected an error")
		}
	})
}
