package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spinsync/internal/models"
	"github.com/desertthunder/spinsync/internal/shared"
)

// TrackMatchRepository stores resolved tracks.
type TrackMatchRepository struct {
	db *sql.DB
}

// NewTrackMatchRepository creates a new TrackMatchRepository with the given database connection
func NewTrackMatchRepository(db *sql.DB) *TrackMatchRepository {
	return &TrackMatchRepository{db: db}
}

// CacheStats summarizes the track cache.
type CacheStats struct {
	Matches           int
	AverageConfidence float64
	Playlists         int
	Oldest            time.Time
}

const trackMatchColumns = `id, artist, title, album, cover_of, spotify_id, matched_title, matched_album, confidence, created_at`

// Upsert inserts match or replaces the existing row for the same track.
func (r *TrackMatchRepository) Upsert(ctx context.Context, match *models.TrackMatch) error {
	if err := match.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	if match.ID == "" {
		match.ID = shared.GenerateID()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO track_matches (id, track_key, artist, title, album, cover_of, spotify_id, matched_title, matched_album, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(track_key) DO UPDATE SET
			spotify_id = excluded.spotify_id,
			matched_title = excluded.matched_title,
			matched_album = excluded.matched_album,
			confidence = excluded.confidence,
			created_at = excluded.created_at
	`

	_, err := r.db.ExecContext(ctx, query,
		match.ID,
		TrackKey(match.Track),
		match.Track.Artist,
		match.Track.Title,
		match.Track.Album,
		match.Track.CoverOf,
		match.SpotifyID,
		match.MatchedTitle,
		match.MatchedAlbum,
		match.Confidence,
		match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert track match: %w", err)
	}
	return nil
}

// Lookup returns the stored match for track. The boolean is false when there is none.
func (r *TrackMatchRepository) Lookup(ctx context.Context, track models.Track) (*models.TrackMatch, bool, error) {
	query := `SELECT ` + trackMatchColumns + ` FROM track_matches WHERE track_key = ?`

	m, err := scanTrackMatch(r.db.QueryRowContext(ctx, query, TrackKey(track)))
	if err != nil {
		found, err := notFound(err, "track match")
		return nil, found, err
	}
	return m, true, nil
}

// List returns up to limit matches, newest first. A non-positive limit returns all rows.
func (r *TrackMatchRepository) List(ctx context.Context, limit int) ([]*models.TrackMatch, error) {
	query := `SELECT ` + trackMatchColumns + ` FROM track_matches ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.TrackMatch
	for rows.Next() {
		m, err := scanTrackMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating track matches: %w", err)
	}
	return matches, nil
}

// Stats counts cached matches and recorded playlists.
func (r *TrackMatchRepository) Stats(ctx context.Context) (CacheStats, error) {
	var (
		stats  CacheStats
		avg    sql.NullFloat64
		oldest sql.NullString
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(confidence), MIN(created_at) FROM track_matches`,
	).Scan(&stats.Matches, &avg, &oldest)
	if err != nil {
		return stats, fmt.Errorf("failed to read cache stats: %w", err)
	}
	stats.AverageConfidence = avg.Float64
	if oldest.Valid {
		stats.Oldest = parseTimestamp(oldest.String)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists`).Scan(&stats.Playlists); err != nil {
		return stats, fmt.Errorf("failed to count playlists: %w", err)
	}
	return stats, nil
}

// Clear deletes every cached match and returns how many were removed.
func (r *TrackMatchRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM track_matches`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear track matches: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func scanTrackMatch(s scanner) (*models.TrackMatch, error) {
	var m models.TrackMatch
	err := s.Scan(
		&m.ID,
		&m.Track.Artist,
		&m.Track.Title,
		&m.Track.Album,
		&m.Track.CoverOf,
		&m.SpotifyID,
		&m.MatchedTitle,
		&m.MatchedAlbum,
		&m.Confidence,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// parseTimestamp reads the text form go-sqlite3 writes for time.Time values.
// Aggregates such as MIN() come back as text rather than TIMESTAMP.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
