// package repositories provides the SQLite persistence layer for resolved tracks and playlist history.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/spinsync/internal/models"
	"github.com/desertthunder/spinsync/internal/shared"
)

// TrackKey is the cache key of an extracted track: every field, lowercased with whitespace collapsed.
func TrackKey(t models.Track) string {
	return shared.NormalizeTrackKey(t.Artist, t.Title, t.Album, t.CoverOf)
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// notFound maps [sql.ErrNoRows] to a (false, nil) lookup result.
func notFound(err error, what string) (bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("failed to scan %s: %w", what, err)
}
