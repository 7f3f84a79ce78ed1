package repositories

import (
	"context"

	"github.com/desertthunder/spinsync/internal/matcher"
	"github.com/desertthunder/spinsync/internal/models"
)

// TrackCacheAdapter implements tasks.TrackCache using [TrackMatchRepository].
type TrackCacheAdapter struct {
	repo *TrackMatchRepository
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackMatchRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// Lookup returns the cached match for track as a resolver result.
func (a *TrackCacheAdapter) Lookup(ctx context.Context, track models.Track) (matcher.Match, bool, error) {
	m, ok, err := a.repo.Lookup(ctx, track)
	if err != nil || !ok {
		return matcher.Match{}, false, err
	}

	return matcher.Match{
		Candidate: matcher.Candidate{
			ID:    m.SpotifyID,
			Title: m.MatchedTitle,
			Album: m.MatchedAlbum,
		},
		Confidence: m.Confidence,
	}, true, nil
}

// Store records a resolved match for track, replacing any previous one.
func (a *TrackCacheAdapter) Store(ctx context.Context, track models.Track, match matcher.Match) error {
	return a.repo.Upsert(ctx, &models.TrackMatch{
		Track:        track,
		SpotifyID:    match.ID,
		MatchedTitle: match.Title,
		MatchedAlbum: match.Album,
		Confidence:   match.Confidence,
	})
}
