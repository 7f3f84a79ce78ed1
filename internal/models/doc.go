// Package models defines the records passed between extraction, matching and persistence.
//
// Two groups of types live here:
//
// 1. Extraction records: immutable values built once by a site parser
//   - [Episode] : one playlist page (show title, date, station/dj or venue, tracks)
//   - [Track] : one song entry as printed on the page
//
// 2. Persistent entities: rows kept in the local SQLite database
//   - [TrackMatch] : a resolved Spotify id for an extracted track
//   - [PlaylistRecord] : a playlist created from an episode page
//
// Optional string fields use the empty string for "absent"; an absent date is the zero [time.Time].
package models
