// Package services implements the streaming side of playlist creation.
//
// # Service Interface
//
// [Service] combines the catalogue search used by the track matcher with the
// playlist operations the engine calls once tracks are resolved. [OAuthService]
// adds the authorization code flow used by `spinsync auth`.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2. OAuth2 is handled by
// golang.org/x/oauth2 with the endpoints from the spotify auth package; the token
// source refreshes expired access tokens and [SpotifyService.Token] exposes the
// refreshed token so the caller can persist it.
//
// Searches are throttled with a token bucket. Tracks are added 100 at a time,
// the most a single Spotify request accepts.
//
// # Error Handling
//
//   - [shared.ErrMissingCredentials] : client id or secret absent
//   - [shared.ErrNotAuthenticated] : no token yet
//   - [shared.ErrAPIRequest] : the Spotify API returned an error
package services
