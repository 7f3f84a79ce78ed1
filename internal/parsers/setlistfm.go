package parsers

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/spinsync/internal/models"
)

const setlistFMName = "setlist.fm"

const (
	setlistHeadline = ".setlistHeadline h1 a"
	setlistSongs    = "li.setlistParts.song"
)

// SetlistFM reads setlist.fm concert pages. The performing artist is both the
// episode title and the artist of every song.
var SetlistFM = Layout{
	Label: setlistFMName,
	Title: textAt(setlistFMName, "title", setlistHeadline),
	Venue: func(doc *goquery.Document) (string, error) {
		links := doc.Find(setlistHeadline)
		if links.Length() < 2 {
			return "", missing(setlistFMName, "venue", setlistHeadline)
		}
		venue := clean(links.Eq(1).Text())
		if venue == "" {
			return "", missing(setlistFMName, "venue", setlistHeadline)
		}
		return venue, nil
	},
	Datetime: func(doc *goquery.Document) (time.Time, error) {
		block, err := requireSelection(doc.Selection, setlistFMName, "datetime", ".dateBlock")
		if err != nil {
			return time.Time{}, err
		}
		var parts []string
		for _, sel := range []string{".month", ".day", ".year"} {
			v := optionalText(block, sel)
			if v == "" {
				return time.Time{}, missing(setlistFMName, "datetime", ".dateBlock "+sel)
			}
			parts = append(parts, v)
		}
		return parseDate(setlistFMName, fmt.Sprintf("%s %s, %s", parts[0], parts[1], parts[2]))
	},
	Tracks: setlistTracks,
}

func setlistTracks(doc *goquery.Document) ([]models.Track, error) {
	artist, err := requireText(doc.Selection, setlistFMName, "artist", setlistHeadline)
	if err != nil {
		return nil, err
	}
	list, err := requireSelection(doc.Selection, setlistFMName, "tracks", ".setlistList")
	if err != nil {
		return nil, err
	}

	tracks := []models.Track{}
	list.Find(setlistSongs).Each(func(_ int, li *goquery.Selection) {
		if li.HasClass("unknown") {
			return
		}
		title := optionalText(li, ".songLabel")
		if title == "" || strings.EqualFold(title, "unknown") {
			return
		}

		t := models.Track{Artist: artist, Title: title}
		// song label, video link, then the original artist on covers
		if links := li.Find("a"); links.Length() >= 3 {
			t.CoverOf = clean(links.Eq(2).Text())
		}
		tracks = append(tracks, t)
	})
	return tracks, nil
}
