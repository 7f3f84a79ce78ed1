package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spinsync/internal/descriptions"
	"github.com/desertthunder/spinsync/internal/repositories"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStats summarizes resolved tracks and created playlists.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	stats, err := repositories.NewTrackMatchRepository(db).Stats(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader("Cache")
	r.writePlain("Matches: %d\n", stats.Matches)
	if stats.Matches > 0 {
		r.writePlain("Average confidence: %.2f\n", stats.AverageConfidence)
		r.writePlain("Oldest match: %s\n", stats.Oldest.Format(descriptions.DateLayout))
	}
	r.writePlain("Playlists: %d\n", stats.Playlists)
	return nil
}

// CacheList prints cached track matches, newest first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	matches, err := repositories.NewTrackMatchRepository(db).List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(matches, true)
	}

	if len(matches) == 0 {
		return r.writePlain("No cached matches.\n")
	}
	for _, m := range matches {
		r.writePlain("%s → %s (%.2f)\n", m.Track.String(), m.SpotifyID, m.Confidence)
	}
	return nil
}

// CacheHistory lists created playlists, newest first.
func (r *Runner) CacheHistory(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	playlists, err := repositories.NewPlaylistRepository(db).List(ctx, map[string]any{
		"domain": cmd.String("domain"),
		"owner":  cmd.String("owner"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists recorded.\n")
	}
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   Source: %s\n", p.SourceURL)
		if p.SpotifyID == "" {
			r.writePlain("   %s\n", r.styles.Help("dry run"))
		} else {
			r.writePlain("   Spotify: %s (owner %s)\n", p.SpotifyID, p.Owner)
		}
		r.writePlain("   Matched: %d/%d\n", p.MatchedCount, p.TrackCount)
	}
	return nil
}

// CacheClear deletes every cached track match. Playlist history is kept.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to clear the track cache", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	n, err := repositories.NewTrackMatchRepository(db).Clear(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("track cache cleared", "rows", n)
	return r.writePlain("%s\n", r.styles.OK("✓ Cleared %d cached matches", n))
}
