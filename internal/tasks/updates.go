package tasks

import (
	"fmt"

	"github.com/desertthunder/spinsync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchPage Phase = iota
	ParsePage
	ResolveTracks
	CreatePlaylist
	AddTracks
	RecordHistory
	Batch
)

func (p Phase) String() string {
	switch p {
	case FetchPage:
		return "fetch_page"
	case ParsePage:
		return "parse_page"
	case ResolveTracks:
		return "resolve_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case RecordHistory:
		return "record_history"
	case Batch:
		return "batch"
	default:
		return ""
	}
}

func fetchPageUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s...", url),
	}
}

func parsedPageUpdate(domain string, ep *models.Episode) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParsePage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsed %s page: %s (%d tracks)", domain, ep.Title, len(ep.Tracks)),
		Data:    ep,
	}
}

func resolveTrackUpdate(step, total int, res TrackResult) ProgressUpdate {
	mark := "✗"
	switch {
	case res.Err != nil:
		mark = "!"
	case res.Found && res.Cached:
		mark = "≡"
	case res.Found:
		mark = "✓"
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, res.Track.Artist, res.Track.Title),
		Data:    res,
	}
}

func createPlaylistUpdate(name, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", name, id),
	}
}

func addTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("Added %d tracks", count),
	}
}

func batchUpdate(step, total int, url string, err error) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, url)
	if err != nil {
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, url, err)
	}
	return ProgressUpdate{
		Phase:   Batch,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}
