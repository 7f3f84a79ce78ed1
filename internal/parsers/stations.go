package parsers

const (
	wkduName = "WKDU"
	wprbName = "WPRB"
)

// WKDU reads wkdu.org program playlists. The station is not printed on the page.
var WKDU = Layout{
	Label:    wkduName,
	Station:  fixed("WKDU"),
	Title:    textAt(wkduName, "title", "h1.page-title"),
	DJ:       textAt(wkduName, "dj", ".field-name-field-dj a"),
	Datetime: dateAt(wkduName, "span.date-display-single"),
	Tracks: rowTracks(wkduName, "table.playlist", "tbody tr", trackColumns{
		artist: "td.views-field-field-artist",
		title:  "td.views-field-field-song",
		album:  "td.views-field-field-album",
	}),
}

// WPRB reads wprb.com playlists, which print times as "2.00pm".
var WPRB = Layout{
	Label:    wprbName,
	Station:  fixed("WPRB"),
	Title:    textAt(wprbName, "title", "#showinfo .showtitle"),
	DJ:       textAt(wprbName, "dj", "#showinfo .showdj"),
	Datetime: dateAt(wprbName, "#showinfo .showdate"),
	Tracks: rowTracks(wprbName, "table#playlist", "tr.song", trackColumns{
		artist: "td.artist",
		title:  "td.title",
		album:  "td.album",
	}),
}
