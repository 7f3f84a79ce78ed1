// Package matcher resolves extracted tracks to remote catalogue tracks.
//
// Resolution sanitizes the track fields, searches with an exact-field query, retries with the
// cover's original artist when nothing is found, and ranks the candidates: a title that starts
// with the target title first, then an album equal to the target album, then search order.
package matcher

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/desertthunder/spinsync/internal/models"
)

// Candidate is one search result.
type Candidate struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Album  string `json:"album"`
	Artist string `json:"artist"`
}

// Searcher runs a catalogue query and returns candidates in relevance order.
type Searcher interface {
	SearchTracks(ctx context.Context, query string) ([]Candidate, error)
}

// Match is the chosen candidate for a track.
type Match struct {
	Candidate
	Query      string  `json:"query"`
	Cover      bool    `json:"cover"`
	Confidence float64 `json:"confidence"`
}

// unsafe matches anything other than letters, digits, marks, underscore, whitespace and . : / - =
// \p{Z} keeps Unicode spaces such as U+00A0, which \s does not cover.
var unsafe = regexp.MustCompile(`[^\p{L}\p{N}\p{M}\p{Z}_\s.:/=-]+`)

// Sanitize strips characters that break the search query syntax and collapses whitespace.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(unsafe.ReplaceAllString(s, "")), " ")
}

// Query builds an exact-field search for artist and title. Inputs are sanitized.
func Query(artist, title string) string {
	return fmt.Sprintf(`artist:"%s" track:"%s"`, Sanitize(artist), Sanitize(title))
}

// Resolve finds the best candidate for t.
//
// The boolean is false when neither the primary nor the cover search returns anything.
// Search errors are returned as is.
func Resolve(ctx context.Context, s Searcher, t models.Track) (Match, bool, error) {
	query := Query(t.Artist, t.Title)
	candidates, err := s.SearchTracks(ctx, query)
	if err != nil {
		return Match{}, false, err
	}

	cover := false
	if len(candidates) == 0 && strings.TrimSpace(t.CoverOf) != "" {
		query = Query(t.CoverOf, t.Title)
		candidates, err = s.SearchTracks(ctx, query)
		if err != nil {
			return Match{}, false, err
		}
		cover = true
	}

	if len(candidates) == 0 {
		return Match{}, false, nil
	}

	best := Rank(candidates, t.Title, t.Album)[0]
	artist := t.Artist
	if cover {
		artist = t.CoverOf
	}
	return Match{
		Candidate:  best,
		Query:      query,
		Cover:      cover,
		Confidence: Confidence(artist, t.Title, best),
	}, true, nil
}

// Rank returns a stably sorted copy of candidates, best first.
// An empty album never counts as an album match.
func Rank(candidates []Candidate, title, album string) []Candidate {
	target := strings.ToLower(Sanitize(title))
	targetAlbum := Sanitize(album)

	titleHit := func(c Candidate) bool {
		return strings.HasPrefix(strings.ToLower(Sanitize(c.Title)), target)
	}
	albumHit := func(c Candidate) bool {
		return targetAlbum != "" && strings.EqualFold(Sanitize(c.Album), targetAlbum)
	}

	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		if c := compareHit(titleHit(a), titleHit(b)); c != 0 {
			return c
		}
		return compareHit(albumHit(a), albumHit(b))
	})
	return ranked
}

// compareHit orders true before false.
func compareHit(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

// Confidence scores how closely c resembles the wanted artist and title, from 0 to 1.
// Candidates without an artist are scored on title alone.
func Confidence(artist, title string, c Candidate) float64 {
	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false

	score := strutil.Similarity(Sanitize(title), Sanitize(c.Title), jw)
	if c.Artist == "" {
		return score
	}
	return (score + strutil.Similarity(Sanitize(artist), Sanitize(c.Artist), jw)) / 2
}
