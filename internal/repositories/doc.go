// Package repositories implements SQLite persistence for spinsync.
//
// Key Implementations:
//   - [TrackMatchRepository] : resolved Spotify ids keyed by [TrackKey], so repeated
//     tracks across episodes skip the search API
//   - [PlaylistRepository] : history of created (and previewed) playlists
//   - [TrackCacheAdapter] : exposes TrackMatchRepository as the engine's track cache
//
// Schemas live in internal/shared/sql and are applied by [shared.RunMigrations].
// Rows use v4 UUID primary keys from [shared.GenerateID].
package repositories
