// Package tasks orchestrates playlist creation with real-time progress reporting.
//
// # Core Operations
//
//  1. [PlaylistEngine.Extract] : page to episode
//     - derives the domain from the URL and rejects unsupported sites before fetching
//     - fetches the page and dispatches it to the site's adapter
//     - builds the playlist title and description
//
//  2. [PlaylistEngine.Run] : page to playlist
//     - resolves every track in page order, cache first
//     - creates the playlist and adds matched tracks, unless DryRun
//     - records the run in the playlist history
//
//  3. [PlaylistEngine.RunBatch] : many pages through a small worker pool
//     - failures are collected per URL and never stop the batch
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Track Caching
//
// The optional [TrackCache] remembers resolved tracks. Only matches scoring at least
// EngineOpts.MinConfidence are stored; cache errors are logged and never fail a run.
package tasks
