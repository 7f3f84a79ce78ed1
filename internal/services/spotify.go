package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spinsync/internal/matcher"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultRedirectURI = "http://127.0.0.1:3000/callback"
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	// maxTracksPerAdd is the Spotify limit for one add-items request.
	maxTracksPerAdd = 100
)

var scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// SpotifyOpts tunes a [SpotifyService]. Zero values use the defaults.
type SpotifyOpts struct {
	SearchLimit       int
	SearchesPerSecond float64
	Logger            *log.Logger

	// API, AuthURL and TokenURL replace the Spotify endpoints.
	API      string
	AuthURL  string
	TokenURL string
}

// SpotifyService implements [OAuthService] for Spotify.
type SpotifyService struct {
	config  *oauth2.Config
	limiter *rate.Limiter
	limit   int
	baseURL string
	logger  *log.Logger

	mu     sync.RWMutex
	source oauth2.TokenSource
	client *spotify.Client
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts SpotifyOpts) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	endpoint := oauth2.Endpoint{AuthURL: spotifyauth.AuthURL, TokenURL: spotifyauth.TokenURL}
	if opts.AuthURL != "" {
		endpoint.AuthURL = opts.AuthURL
	}
	if opts.TokenURL != "" {
		endpoint.TokenURL = opts.TokenURL
	}

	limit := opts.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	searchRate := rate.Inf
	if opts.SearchesPerSecond > 0 {
		searchRate = rate.Limit(opts.SearchesPerSecond)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		limiter: rate.NewLimiter(searchRate, 1),
		limit:   limit,
		baseURL: opts.API,
		logger:  shared.WithLogger(logger, "service", "spotify"),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the callback code for a token and authenticates with it.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	if err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Authenticate builds the API client around token. Expired tokens are refreshed on first use.
func (s *SpotifyService) Authenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: no token; run `spinsync auth`", shared.ErrNotAuthenticated)
	}

	source := oauth2.ReuseTokenSource(token, s.config.TokenSource(ctx, token))
	httpClient := oauth2.NewClient(ctx, source)

	var opts []spotify.ClientOption
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(strings.TrimSuffix(s.baseURL, "/")+"/"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	s.client = spotify.New(httpClient, opts...)
	return nil
}

// Token returns the token in use, refreshing it if it has expired.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	source := s.source
	s.mu.RUnlock()

	if source == nil {
		return nil, shared.ErrNotAuthenticated
	}
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

func (s *SpotifyService) authenticated() (*spotify.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.client, nil
}

// SearchTracks runs a track search and returns candidates in Spotify's relevance order.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string) ([]matcher.Candidate, error) {
	client, err := s.authenticated()
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(s.limit))
	if err != nil {
		return nil, apiError("search", err)
	}
	if res.Tracks == nil {
		return []matcher.Candidate{}, nil
	}

	s.logger.Debug("search", "query", query, "results", len(res.Tracks.Tracks))
	return lo.Map(res.Tracks.Tracks, func(t spotify.FullTrack, _ int) matcher.Candidate {
		return toCandidate(t)
	}), nil
}

// CreatePlaylist creates a playlist for user and returns its ID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, user, name, description string, public bool) (string, error) {
	if user == "" {
		return "", fmt.Errorf("%w: user", shared.ErrMissingArgument)
	}
	client, err := s.authenticated()
	if err != nil {
		return "", err
	}

	playlist, err := client.CreatePlaylistForUser(ctx, user, name, description, public, false)
	if err != nil {
		return "", apiError("create playlist", err)
	}

	s.logger.Info("created playlist", "id", playlist.ID, "name", name, "public", public)
	return playlist.ID.String(), nil
}

// AddTracks adds trackIDs to the playlist in batches of 100, preserving order.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	client, err := s.authenticated()
	if err != nil {
		return err
	}

	ids := lo.Map(trackIDs, func(id string, _ int) spotify.ID { return spotify.ID(id) })
	for i, batch := range lo.Chunk(ids, maxTracksPerAdd) {
		if _, err := client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...); err != nil {
			return apiError(fmt.Sprintf("add tracks (batch %d)", i+1), err)
		}
		s.logger.Debug("added tracks", "playlist", playlistID, "batch", i+1, "count", len(batch))
	}
	return nil
}

// CurrentUser returns the authenticated user's ID.
func (s *SpotifyService) CurrentUser(ctx context.Context) (string, error) {
	client, err := s.authenticated()
	if err != nil {
		return "", err
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return "", apiError("current user", err)
	}
	return user.ID, nil
}

func toCandidate(t spotify.FullTrack) matcher.Candidate {
	c := matcher.Candidate{ID: t.ID.String(), Title: t.Name, Album: t.Album.Name}
	if len(t.Artists) > 0 {
		c.Artist = t.Artists[0].Name
	}
	return c
}

func apiError(op string, err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %s: %d %s", shared.ErrAPIRequest, op, se.Status, se.Message)
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, op, err)
}
