package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spinsync/internal/matcher"
	"github.com/desertthunder/spinsync/internal/models"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/google/go-cmp/cmp"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestTrackKey(t *testing.T) {
	a := TrackKey(models.Track{Artist: "Big  Star", Title: "September Gurls"})
	b := TrackKey(models.Track{Artist: "big star", Title: " SEPTEMBER GURLS "})
	if a != b {
		t.Errorf("expected equal keys, got %q and %q", a, b)
	}

	cover := TrackKey(models.Track{Artist: "Big Star", Title: "September Gurls", CoverOf: "x"})
	if cover == a {
		t.Error("cover attribution must change the key")
	}
}

func TestTrackMatchRepository(t *testing.T) {
	ctx := context.Background()
	fuzz := models.Track{Artist: "Fuzz", Title: "Red Flag", Album: "ii"}

	t.Run("Upsert and Lookup", func(t *testing.T) {
		repo := NewTrackMatchRepository(setupTestDB(t))

		m := &models.TrackMatch{Track: fuzz, SpotifyID: "sp1", MatchedTitle: "Red Flag", MatchedAlbum: "II", Confidence: 0.98}
		if err := repo.Upsert(ctx, m); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if m.ID == "" {
			t.Error("ID should be set after upsert")
		}

		got, ok, err := repo.Lookup(ctx, models.Track{Artist: "FUZZ", Title: "red flag", Album: "II"})
		if err != nil || !ok {
			t.Fatalf("expected a cached match, got ok=%v err=%v", ok, err)
		}
		if got.SpotifyID != "sp1" || got.Confidence != 0.98 {
			t.Errorf("unexpected match %+v", got)
		}
		if diff := cmp.Diff(fuzz, got.Track); diff != "" {
			t.Errorf("stored track mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Upsert replaces", func(t *testing.T) {
		repo := NewTrackMatchRepository(setupTestDB(t))

		_ = repo.Upsert(ctx, &models.TrackMatch{Track: fuzz, SpotifyID: "old"})
		if err := repo.Upsert(ctx, &models.TrackMatch{Track: fuzz, SpotifyID: "new"}); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}

		got, _, _ := repo.Lookup(ctx, fuzz)
		if got.SpotifyID != "new" {
			t.Errorf("expected replaced id, got %s", got.SpotifyID)
		}
		all, _ := repo.List(ctx, 0)
		if len(all) != 1 {
			t.Errorf("expected a single row, got %d", len(all))
		}
	})

	t.Run("Lookup miss", func(t *testing.T) {
		repo := NewTrackMatchRepository(setupTestDB(t))
		got, ok, err := repo.Lookup(ctx, fuzz)
		if err != nil || ok || got != nil {
			t.Errorf("expected clean miss, got %v %v %v", got, ok, err)
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		repo := NewTrackMatchRepository(setupTestDB(t))
		err := repo.Upsert(ctx, &models.TrackMatch{Track: fuzz})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Stats and Clear", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackMatchRepository(db)

		old := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		_ = repo.Upsert(ctx, &models.TrackMatch{Track: fuzz, SpotifyID: "a", Confidence: 1, CreatedAt: old})
		_ = repo.Upsert(ctx, &models.TrackMatch{Track: models.Track{Artist: "Wand", Title: "Golem"}, SpotifyID: "b", Confidence: 0.5})
		_ = NewPlaylistRepository(db).Create(ctx, &models.PlaylistRecord{SourceURL: "u", Domain: "wkdu.org", Name: "n"})

		stats, err := repo.Stats(ctx)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if stats.Matches != 2 || stats.Playlists != 1 {
			t.Errorf("unexpected counts %+v", stats)
		}
		if stats.AverageConfidence != 0.75 {
			t.Errorf("expected average 0.75, got %f", stats.AverageConfidence)
		}
		if !stats.Oldest.Equal(old) {
			t.Errorf("expected oldest %v, got %v", old, stats.Oldest)
		}

		n, err := repo.Clear(ctx)
		if err != nil || n != 2 {
			t.Fatalf("expected 2 rows cleared, got %d, %v", n, err)
		}
		stats, _ = repo.Stats(ctx)
		if stats.Matches != 0 || stats.AverageConfidence != 0 {
			t.Errorf("expected empty cache, got %+v", stats)
		}
	})

	t.Run("List is newest first", func(t *testing.T) {
		repo := NewTrackMatchRepository(setupTestDB(t))
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, title := range []string{"one", "two", "three"} {
			_ = repo.Upsert(ctx, &models.TrackMatch{
				Track:     models.Track{Artist: "a", Title: title},
				SpotifyID: title,
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
			})
		}

		got, err := repo.List(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		ids := []string{got[0].SpotifyID, got[1].SpotifyID}
		if diff := cmp.Diff([]string{"three", "two"}, ids); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestTrackCacheAdapter(t *testing.T) {
	ctx := context.Background()
	cache := NewTrackCacheAdapter(NewTrackMatchRepository(setupTestDB(t)))
	track := models.Track{Artist: "The Lemonheads", Title: "The Outdoor Type", CoverOf: "Smudge"}

	if _, ok, err := cache.Lookup(ctx, track); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	match := matcher.Match{
		Candidate:  matcher.Candidate{ID: "sp9", Title: "The Outdoor Type", Album: "Car Button Cloth"},
		Confidence: 0.91,
	}
	if err := cache.Store(ctx, track, match); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	got, ok, err := cache.Lookup(ctx, track)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	want := matcher.Match{Candidate: match.Candidate, Confidence: 0.91}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("match mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		p := &models.PlaylistRecord{
			SourceURL:    "https://spinitron.com/WZBC/pl/50067/7DayWknd",
			Domain:       "spinitron.com",
			SpotifyID:    "pl1",
			Owner:        "lauree",
			Name:         "7DayWknd: August 02, 2016",
			Description:  "Tuesday at 2:00pm on WZBC 90.3 FM Newton with Nick",
			TrackCount:   16,
			MatchedCount: 14,
			Public:       true,
		}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if p.ID == "" || p.CreatedAt.IsZero() {
			t.Errorf("expected id and timestamp to be set, got %+v", p)
		}

		got, ok, err := repo.Get(ctx, p.ID)
		if err != nil || !ok {
			t.Fatalf("expected record, got ok=%v err=%v", ok, err)
		}
		if diff := cmp.Diff(*p, *got); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		if _, ok, err := repo.Get(ctx, "nonexistent-id"); ok || err != nil {
			t.Errorf("expected clean miss, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		err := repo.Create(ctx, &models.PlaylistRecord{Name: "no source"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("List with criteria", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		records := []models.PlaylistRecord{
			{SourceURL: "a", Domain: "wkdu.org", Owner: "x", Name: "A", CreatedAt: base},
			{SourceURL: "b", Domain: "wprb.com", Owner: "x", Name: "B", CreatedAt: base.Add(time.Hour)},
			{SourceURL: "c", Domain: "wkdu.org", Owner: "y", Name: "C", CreatedAt: base.Add(2 * time.Hour)},
		}
		for i := range records {
			if err := repo.Create(ctx, &records[i]); err != nil {
				t.Fatal(err)
			}
		}

		tt := []struct {
			name     string
			criteria map[string]any
			want     []string
		}{
			{"all", nil, []string{"C", "B", "A"}},
			{"domain", map[string]any{"domain": "wkdu.org"}, []string{"C", "A"}},
			{"owner", map[string]any{"owner": "x"}, []string{"B", "A"}},
			{"limit", map[string]any{"limit": 1}, []string{"C"}},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				got, err := repo.List(ctx, tc.criteria)
				if err != nil {
					t.Fatal(err)
				}
				names := []string{}
				for _, p := range got {
					names = append(names, p.Name)
				}
				if diff := cmp.Diff(tc.want, names); diff != "" {
					t.Errorf("names mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})
}
