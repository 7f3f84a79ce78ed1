package services

import (
	"context"

	"github.com/desertthunder/spinsync/internal/matcher"
	"golang.org/x/oauth2"
)

// Service is a streaming provider that can search its catalogue and build playlists.
type Service interface {
	matcher.Searcher

	// CreatePlaylist creates an empty playlist owned by user and returns its ID.
	CreatePlaylist(ctx context.Context, user, name, description string, public bool) (string, error)

	// AddTracks appends track IDs to a playlist in order.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// CurrentUser returns the ID of the authenticated account.
	CurrentUser(ctx context.Context) (string, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends [Service] with the authorization code flow.
type OAuthService interface {
	Service

	// AuthURL returns the URL the user visits to grant access.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token and authenticates with it.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Authenticate uses an existing token, refreshing it when expired.
	Authenticate(ctx context.Context, token *oauth2.Token) error

	// Token returns the current, possibly refreshed, token.
	Token() (*oauth2.Token, error)
}
