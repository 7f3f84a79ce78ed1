package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spinsync/internal/models"
	"github.com/desertthunder/spinsync/internal/shared"
)

// PlaylistRepository records playlists built from episode pages.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

const playlistColumns = `id, source_url, domain, spotify_id, owner, name, description, track_count, matched_count, public, created_at`

// Create inserts a new [models.PlaylistRecord] with a generated ID.
func (r *PlaylistRepository) Create(ctx context.Context, p *models.PlaylistRecord) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	p.ID = shared.GenerateID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO playlists (` + playlistColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.SourceURL,
		p.Domain,
		p.SpotifyID,
		p.Owner,
		p.Name,
		p.Description,
		p.TrackCount,
		p.MatchedCount,
		p.Public,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	return nil
}

// Get retrieves a playlist record by ID.
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.PlaylistRecord, bool, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ?`

	p, err := scanPlaylist(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		found, err := notFound(err, "playlist")
		return nil, found, err
	}
	return p, true, nil
}

// List retrieves playlist records matching the given criteria, newest first.
//
// Supported criteria: "domain", "owner", "source_url" (string) and "limit" (int).
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.PlaylistRecord, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE 1 = 1`
	args := []any{}

	for _, column := range []string{"domain", "owner", "source_url"} {
		if v, ok := criteria[column].(string); ok && v != "" {
			query += " AND " + column + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY created_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PlaylistRecord
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating playlists: %w", err)
	}
	return playlists, nil
}

func scanPlaylist(s scanner) (*models.PlaylistRecord, error) {
	var p models.PlaylistRecord
	err := s.Scan(
		&p.ID,
		&p.SourceURL,
		&p.Domain,
		&p.SpotifyID,
		&p.Owner,
		&p.Name,
		&p.Description,
		&p.TrackCount,
		&p.MatchedCount,
		&p.Public,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
