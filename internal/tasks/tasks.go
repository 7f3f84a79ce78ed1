package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spinsync/internal/descriptions"
	"github.com/desertthunder/spinsync/internal/matcher"
	"github.com/desertthunder/spinsync/internal/models"
	"github.com/desertthunder/spinsync/internal/parsers"
	"github.com/desertthunder/spinsync/internal/retrieval"
	"github.com/desertthunder/spinsync/internal/services"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/samber/lo"
)

// Fetcher downloads a page as UTF-8 markup.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TrackCache remembers resolved tracks between runs.
type TrackCache interface {
	Lookup(ctx context.Context, track models.Track) (matcher.Match, bool, error)
	Store(ctx context.Context, track models.Track, match matcher.Match) error
}

// History records created playlists.
type History interface {
	Create(ctx context.Context, p *models.PlaylistRecord) error
}

// EngineOpts holds the engine's collaborators. Cache and History are optional.
type EngineOpts struct {
	Fetcher    Fetcher
	Service    services.Service
	Cache      TrackCache
	History    History
	Dispatcher *parsers.Dispatcher
	Clock      descriptions.Clock
	Logger     *log.Logger

	// MinConfidence is the score a match needs to be cached.
	// Weaker matches are still added to the playlist but resolved again next time.
	MinConfidence float64
}

// PlaylistEngine runs the page to playlist pipeline.
type PlaylistEngine struct {
	fetcher       Fetcher
	service       services.Service
	cache         TrackCache
	history       History
	dispatcher    *parsers.Dispatcher
	clock         descriptions.Clock
	logger        *log.Logger
	minConfidence float64
}

// NewPlaylistEngine creates a new PlaylistEngine from opts.
func NewPlaylistEngine(opts EngineOpts) *PlaylistEngine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = parsers.NewDispatcher()
	}

	return &PlaylistEngine{
		fetcher:       opts.Fetcher,
		service:       opts.Service,
		cache:         opts.Cache,
		history:       opts.History,
		dispatcher:    dispatcher,
		clock:         opts.Clock,
		logger:        shared.WithLogger(logger, "component", "engine"),
		minConfidence: opts.MinConfidence,
	}
}

// Extraction is a parsed page with its derived playlist name and description.
type Extraction struct {
	URL         string          `json:"url"`
	Domain      string          `json:"domain"`
	Episode     *models.Episode `json:"episode"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
}

// RunOptions controls playlist creation.
type RunOptions struct {
	Username string
	Public   bool
	DryRun   bool // resolve tracks but create nothing
}

// TrackResult is the resolution outcome for one track.
type TrackResult struct {
	Track  models.Track  `json:"track"`
	Match  matcher.Match `json:"match,omitzero"`
	Found  bool          `json:"found"`
	Cached bool          `json:"cached"`
	Err    error         `json:"-"`
}

// RunResult contains all data from a run.
type RunResult struct {
	Extraction
	PlaylistID string        `json:"playlist_id,omitempty"`
	Owner      string        `json:"owner,omitempty"`
	Tracks     []TrackResult `json:"tracks"`
	DryRun     bool          `json:"dry_run"`
}

// MatchedIDs returns the matched track IDs in on-page order.
func (r *RunResult) MatchedIDs() []string {
	return lo.FilterMap(r.Tracks, func(t TrackResult, _ int) (string, bool) {
		return t.Match.ID, t.Found && t.Match.ID != ""
	})
}

// Unmatched returns tracks that were not resolved.
func (r *RunResult) Unmatched() []models.Track {
	return lo.FilterMap(r.Tracks, func(t TrackResult, _ int) (models.Track, bool) {
		return t.Track, !t.Found
	})
}

// MatchPercentage is the share of tracks resolved, from 0 to 100.
func (r *RunResult) MatchPercentage() float64 {
	if len(r.Tracks) == 0 {
		return 0
	}
	return float64(len(r.MatchedIDs())) / float64(len(r.Tracks)) * 100
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Extract fetches url and parses it with the adapter for its domain.
func (e *PlaylistEngine) Extract(ctx context.Context, url string, progress chan<- ProgressUpdate) (*Extraction, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher not initialized", shared.ErrServiceUnavailable)
	}

	domain, err := retrieval.ParseDomain(url)
	if err != nil {
		return nil, err
	}
	if !e.dispatcher.Supports(domain) {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedSource, domain)
	}

	e.sendProgress(progress, fetchPageUpdate(url))
	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	ep, err := e.dispatcher.Dispatch(domain, string(body))
	if err != nil {
		return nil, err
	}

	e.logger.Debug("parsed page", "url", url, "domain", domain, "title", ep.Title, "tracks", len(ep.Tracks))
	e.sendProgress(progress, parsedPageUpdate(domain, ep))

	return &Extraction{
		URL:         url,
		Domain:      domain,
		Episode:     ep,
		Title:       descriptions.TitleAndDate(*ep, e.clock),
		Description: descriptions.Description(*ep),
	}, nil
}

// Resolve maps one track to a Spotify track, consulting the cache first.
//
// Cache failures are logged and ignored. Search failures are returned in the result.
func (e *PlaylistEngine) Resolve(ctx context.Context, track models.Track) TrackResult {
	res := TrackResult{Track: track}

	if e.cache != nil {
		m, ok, err := e.cache.Lookup(ctx, track)
		switch {
		case err != nil:
			e.logger.Warn("track cache lookup failed", "track", track.String(), "error", err)
		case ok:
			res.Match, res.Found, res.Cached = m, true, true
			return res
		}
	}

	m, ok, err := matcher.Resolve(ctx, e.service, track)
	if err != nil {
		res.Err = err
		return res
	}
	if !ok {
		e.logger.Debug("no match", "track", track.String())
		return res
	}

	res.Match, res.Found = m, true
	if m.Confidence < e.minConfidence {
		e.logger.Warn("low confidence match", "track", track.String(), "matched", m.Title, "confidence", fmt.Sprintf("%.2f", m.Confidence))
		return res
	}

	if e.cache != nil {
		if err := e.cache.Store(ctx, track, m); err != nil {
			e.logger.Warn("track cache store failed", "track", track.String(), "error", err)
		}
	}
	return res
}

// Run extracts url, resolves its tracks in page order and, unless opts.DryRun is set,
// creates the playlist for opts.Username and adds the matched tracks.
func (e *PlaylistEngine) Run(ctx context.Context, url string, opts RunOptions, progress chan<- ProgressUpdate) (*RunResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Username == "" && !opts.DryRun {
		return nil, fmt.Errorf("%w: no username", shared.ErrMissingCredentials)
	}

	ext, err := e.Extract(ctx, url, progress)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Extraction: *ext,
		Owner:      opts.Username,
		Tracks:     make([]TrackResult, 0, len(ext.Episode.Tracks)),
		DryRun:     opts.DryRun,
	}

	total := len(ext.Episode.Tracks)
	for i, track := range ext.Episode.Tracks {
		res := e.Resolve(ctx, track)
		if res.Err != nil {
			if ctx.Err() != nil || errors.Is(res.Err, shared.ErrNotAuthenticated) {
				return nil, res.Err
			}
			e.logger.Warn("track search failed", "track", track.String(), "error", res.Err)
		}
		result.Tracks = append(result.Tracks, res)
		e.sendProgress(progress, resolveTrackUpdate(i+1, total, res))
	}

	ids := result.MatchedIDs()
	e.logger.Info("resolved tracks", "url", url, "matched", len(ids), "total", total)

	if !opts.DryRun {
		id, err := e.service.CreatePlaylist(ctx, opts.Username, ext.Title, ext.Description, opts.Public)
		if err != nil {
			return nil, err
		}
		result.PlaylistID = id
		e.sendProgress(progress, createPlaylistUpdate(ext.Title, id))

		if err := e.service.AddTracks(ctx, id, ids); err != nil {
			return result, err
		}
		e.sendProgress(progress, addTracksUpdate(len(ids)))
	}

	e.record(ctx, result, opts)
	return result, nil
}

func (e *PlaylistEngine) record(ctx context.Context, result *RunResult, opts RunOptions) {
	if e.history == nil {
		return
	}

	err := e.history.Create(ctx, &models.PlaylistRecord{
		SourceURL:    result.URL,
		Domain:       result.Domain,
		SpotifyID:    result.PlaylistID,
		Owner:        opts.Username,
		Name:         result.Title,
		Description:  result.Description,
		TrackCount:   len(result.Tracks),
		MatchedCount: len(result.MatchedIDs()),
		Public:       opts.Public,
	})
	if err != nil {
		e.logger.Warn("failed to record playlist", "url", result.URL, "error", err)
	}
}
