package parsers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/spinsync/internal/models"
)

const (
	spinitronV1Name = "Spinitron v1"
	spinitronV2Name = "Spinitron v2"
)

// SpinitronV1 reads the legacy playlist.php pages.
var SpinitronV1 = Layout{
	Label:   spinitronV1Name,
	Station: textAt(spinitronV1Name, "station", "#plheader .plstation a"),
	DJ:      textAt(spinitronV1Name, "dj", "#plheader .pldj a"),
	Title: func(doc *goquery.Document) (string, error) {
		title, err := requireText(doc.Selection, spinitronV1Name, "title", "#plheader .pltitle")
		if err != nil {
			return "", err
		}
		if title = unquote(title); title == "" {
			return "", missing(spinitronV1Name, "title", "#plheader .pltitle")
		}
		return title, nil
	},
	Datetime: dateAt(spinitronV1Name, "#plheader .pldate"),
	Tracks: rowTracks(spinitronV1Name, "#playlist", "div.f2", trackColumns{
		artist: ".aw",
		title:  ".sn",
		album:  ".dn",
	}),
}

// quotePairs maps an opening quote to the closing quote it pairs with.
var quotePairs = map[rune]rune{'"': '"', '“': '”', '\'': '\'', '‘': '’'}

// unquote removes one pair of surrounding quotes, leaving lone apostrophes alone.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) < 2 {
		return s
	}
	if closing, ok := quotePairs[r[0]]; ok && r[len(r)-1] == closing {
		return strings.TrimSpace(string(r[1 : len(r)-1]))
	}
	return s
}

// SpinitronV2 reads the current /pl/ pages.
var SpinitronV2 = Layout{
	Label:   spinitronV2Name,
	Station: textAt(spinitronV2Name, "station", "h1.station-name"),
	Title:   textAt(spinitronV2Name, "title", ".show-header h3.show-title"),
	DJ: func(doc *goquery.Document) (string, error) {
		dj, err := requireText(doc.Selection, spinitronV2Name, "dj", ".show-header p.dj-name")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(strings.TrimPrefix(dj, "with ")), nil
	},
	Datetime: dateAt(spinitronV2Name, ".show-header p.timeslot"),
	Tracks: rowTracks(spinitronV2Name, "table.spins", "tr.spin-item", trackColumns{
		artist: "span.artist",
		title:  "span.song",
		album:  "span.release",
	}),
}

// Spinitron serves both layouts; older stations still publish the legacy one.
var Spinitron = Family{
	Label:   "Spinitron",
	Layouts: []Parser{SpinitronV2, SpinitronV1},
}

// trackColumns names the selectors of one track row.
// album is optional; rows without an artist or title are skipped.
type trackColumns struct {
	artist string
	title  string
	album  string
}

// rowTracks requires container and reads a track from each row inside it.
func rowTracks(layout, container, row string, cols trackColumns) tracksStep {
	return func(doc *goquery.Document) ([]models.Track, error) {
		list, err := requireSelection(doc.Selection, layout, "tracks", container)
		if err != nil {
			return nil, err
		}

		tracks := []models.Track{}
		list.Find(row).Each(func(_ int, s *goquery.Selection) {
			t := models.Track{
				Artist: optionalText(s, cols.artist),
				Title:  optionalText(s, cols.title),
			}
			if cols.album != "" {
				t.Album = optionalText(s, cols.album)
			}
			if t.Artist == "" || t.Title == "" {
				return
			}
			tracks = append(tracks, t)
		})
		return tracks, nil
	}
}
