// Package parsers turns playlist pages from supported sites into [models.Episode] records.
//
// # Documents
//
// [Normalize] accepts raw markup (string, []byte, io.Reader) or an already parsed
// [goquery.Document] and always returns a document. Markup is parsed leniently by
// golang.org/x/net/html, and byte input is decoded using the charset the page declares.
//
// # Layouts
//
// Each supported page structure is a [Layout]: a table of extraction steps
// (title, station, dj, venue, datetime, tracks) bound to fixed selectors.
// A step that cannot find its element returns an error wrapping [shared.ErrExtraction]
// and the layout returns no episode at all.
//
//   - [SpinitronV1], [SpinitronV2] : spinitron.com, legacy and current playlist pages
//   - [WKDU] : wkdu.org program playlists
//   - [WPRB] : wprb.com playlists
//   - [SetlistFM] : setlist.fm concert setlists
//
// # Dispatch
//
// A [Dispatcher] maps a registrable domain to a [Parser]. spinitron.com maps to a [Family]
// that tries the current layout first and falls back to the legacy one, but only on
// extraction failures; any other error is returned as is.
//
// Errors are distinguishable with errors.Is:
//   - [shared.ErrUnsupportedSource] : the domain is not configured
//   - [shared.ErrUnrecognizedContent] : the page matched none of its source's layouts
//   - [shared.ErrExtraction] : wrapped inside ErrUnrecognizedContent, names the missing element
package parsers
