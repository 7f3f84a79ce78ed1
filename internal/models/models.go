package models

import (
	"fmt"
	"strings"
	"time"
)

// Episode is the canonical result of extracting one playlist page.
//
// Radio pages populate Station and DJ; concert pages populate Venue instead.
// Venue presence is what distinguishes the two.
type Episode struct {
	Title    string    `json:"title"`
	Datetime time.Time `json:"datetime"`
	Station  string    `json:"station,omitempty"`
	DJ       string    `json:"dj,omitempty"`
	Venue    string    `json:"venue,omitempty"`
	Tracks   []Track   `json:"tracks"`
}

// IsConcert reports whether the episode came from a concert setlist.
func (e Episode) IsConcert() bool {
	return e.Venue != ""
}

// HasTime reports whether the page published a time of day.
//
// A datetime at exactly midnight means only the date was published.
func (e Episode) HasTime() bool {
	if e.Datetime.IsZero() {
		return false
	}
	h, m, s := e.Datetime.Clock()
	return h != 0 || m != 0 || s != 0 || e.Datetime.Nanosecond() != 0
}

// Track is one playlist entry as extracted from a page.
type Track struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Album   string `json:"album,omitempty"`
	CoverOf string `json:"cover_of,omitempty"`
}

func (t Track) String() string {
	s := fmt.Sprintf("%s - %s", t.Artist, t.Title)
	if t.Album != "" {
		s += fmt.Sprintf(" (%s)", t.Album)
	}
	if t.CoverOf != "" {
		s += fmt.Sprintf(" [%s cover]", t.CoverOf)
	}
	return s
}

// TrackMatch is a cached resolution of an extracted [Track] to a Spotify track.
type TrackMatch struct {
	ID           string
	Track        Track
	SpotifyID    string
	MatchedTitle string
	MatchedAlbum string
	Confidence   float64
	CreatedAt    time.Time
}

// Validate checks required fields.
func (m TrackMatch) Validate() error {
	if strings.TrimSpace(m.Track.Artist) == "" || strings.TrimSpace(m.Track.Title) == "" {
		return fmt.Errorf("track match requires artist and title")
	}
	if m.SpotifyID == "" {
		return fmt.Errorf("track match requires a spotify id")
	}
	return nil
}

// PlaylistRecord is the history entry written after a playlist is created (or previewed).
type PlaylistRecord struct {
	ID           string
	SourceURL    string
	Domain       string
	SpotifyID    string
	Owner        string
	Name         string
	Description  string
	TrackCount   int
	MatchedCount int
	Public       bool
	CreatedAt    time.Time
}

// Validate checks required fields.
func (p PlaylistRecord) Validate() error {
	if p.SourceURL == "" {
		return fmt.Errorf("playlist record requires a source url")
	}
	if p.Name == "" {
		return fmt.Errorf("playlist record requires a name")
	}
	if p.MatchedCount > p.TrackCount {
		return fmt.Errorf("matched count %d exceeds track count %d", p.MatchedCount, p.TrackCount)
	}
	return nil
}
