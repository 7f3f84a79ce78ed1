// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spinsync/internal/matcher"
)

// MockService is a test double for [services.Service].
//
// Searches answer from Results keyed by query; playlists get sequential ids.
type MockService struct {
	Results   map[string][]matcher.Candidate
	SearchErr error
	CreateErr error
	User      string

	mu        sync.Mutex
	Searches  []string
	Playlists []MockPlaylist
}

// MockPlaylist records one CreatePlaylist call and the tracks added to it.
type MockPlaylist struct {
	ID          string
	User        string
	Name        string
	Description string
	Public      bool
	TrackIDs    []string
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) SearchTracks(ctx context.Context, query string) ([]matcher.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches = append(m.Searches, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Results[query], nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, user, name, description string, public bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	id := "mock-" + string(rune('a'+len(m.Playlists)))
	m.Playlists = append(m.Playlists, MockPlaylist{ID: id, User: user, Name: name, Description: description, Public: public})
	return id, nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Playlists {
		if m.Playlists[i].ID == playlistID {
			m.Playlists[i].TrackIDs = append(m.Playlists[i].TrackIDs, trackIDs...)
			return nil
		}
	}
	return errors.New("unknown playlist " + playlistID)
}

func (m *MockService) CurrentUser(ctx context.Context) (string, error) {
	if m.User == "" {
		return "mock-user", nil
	}
	return m.User, nil
}

// MockFetcher serves pages from memory. Unknown URLs return Err or a generic failure.
type MockFetcher struct {
	Pages map[string]string
	Err   error
}

func (f *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if page, ok := f.Pages[url]; ok {
		return []byte(page), nil
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return nil, errors.New("no page for " + url)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
