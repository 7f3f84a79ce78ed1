// package formatter exports extracted playlists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/spinsync/internal/descriptions"
	"github.com/desertthunder/spinsync/internal/models"
	"github.com/desertthunder/spinsync/internal/shared"
)

// Format names an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
	JSON     Format = "json"
)

// ParseFormat maps a flag value to a [Format]. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Export is an extracted episode with its playlist name and description.
//
// SpotifyIDs, when set, is aligned with Episode.Tracks; an empty entry marks an unmatched track.
type Export struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SourceURL   string          `json:"source_url"`
	Episode     *models.Episode `json:"episode"`
	SpotifyIDs  []string        `json:"spotify_ids,omitempty"`
}

func (e *Export) spotifyID(i int) string {
	if i < len(e.SpotifyIDs) {
		return e.SpotifyIDs[i]
	}
	return ""
}

func (e *Export) tracks() []models.Track {
	if e.Episode == nil {
		return nil
	}
	return e.Episode.Tracks
}

// Render converts export to the given format.
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export)
	case Text:
		return ExportToText(export)
	case JSON:
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// ExportToCSV converts an Export to CSV format with columns: Position, Artist, Title, Album, Cover Of, Spotify ID
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Artist", "Title", "Album", "Cover Of", "Spotify ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range export.tracks() {
		record := []string{
			strconv.Itoa(i + 1),
			track.Artist,
			track.Title,
			track.Album,
			track.CoverOf,
			export.spotifyID(i),
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

// ExportToMarkdown converts an Export to Markdown with a header block and a numbered track list
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Name)

	if export.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Description)
	}
	if export.SourceURL != "" {
		fmt.Fprintf(&buf, "**Source**: <%s>\n\n", export.SourceURL)
	}
	if ep := export.Episode; ep != nil && !ep.Datetime.IsZero() {
		fmt.Fprintf(&buf, "**Date**: %s\n\n", ep.Datetime.Format(descriptions.DateLayout))
	}

	tracks := export.tracks()
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s", i+1, track.Artist, track.Title)
		if track.Album != "" {
			fmt.Fprintf(&buf, " (%s)", track.Album)
		}
		if track.CoverOf != "" {
			fmt.Fprintf(&buf, " *%s cover*", track.CoverOf)
		}
		if id := export.spotifyID(i); id != "" {
			fmt.Fprintf(&buf, " [spotify](https://open.spotify.com/track/%s)", id)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Name)
	if export.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Description)
	}
	tracks := export.tracks()
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))

	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, track.String())
	}

	return buf.Bytes(), nil
}

// WriteExport renders export and writes it to path.
func WriteExport(export *Export, format Format, path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := Render(export, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}
