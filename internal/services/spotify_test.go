package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/spinsync/internal/matcher"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var testCredentials = map[string]string{
	"client_id":     "test_client_id",
	"client_secret": "test_client_secret",
	"redirect_uri":  "http://127.0.0.1:3000/callback",
}

// fakeSpotify serves the subset of the Web API the service uses.
type fakeSpotify struct {
	mu       sync.Mutex
	queries  []string
	limits   []string
	batches  [][]string
	created  map[string]any
	searchFn func(q string) string
}

func (f *fakeSpotify) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		f.limits = append(f.limits, r.URL.Query().Get("limit"))
		f.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer access" {
			http.Error(w, `{"error":{"status":401,"message":"Invalid access token"}}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.searchFn(r.URL.Query().Get("q"))))
	})

	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.created = body
		f.created["user"] = strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/users/"), "/playlists")
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pl1","name":"Spin Cycle: August 27, 2021"}`))
	})

	mux.HandleFunc("/playlists/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.batches = append(f.batches, body.URIs)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"snapshot_id":"snap"}`))
	})

	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"lauree","display_name":"Lauree"}`))
	})

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`))
	})

	return mux
}

func newTestService(t *testing.T, f *fakeSpotify) *SpotifyService {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	s, err := NewSpotifyService(testCredentials, SpotifyOpts{
		SearchLimit: 5,
		API:         srv.URL,
		AuthURL:     srv.URL + "/authorize",
		TokenURL:    srv.URL + "/token",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return s
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("with valid credentials", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials, SpotifyOpts{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.Name() != "Spotify" {
			t.Errorf("expected service name 'Spotify', got %s", srv.Name())
		}
		if srv.limit != defaultSearchLimit {
			t.Errorf("expected default search limit, got %d", srv.limit)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		for _, key := range []string{"client_id", "client_secret"} {
			creds := map[string]string{"client_id": "id", "client_secret": "secret"}
			delete(creds, key)
			if _, err := NewSpotifyService(creds, SpotifyOpts{}); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("%s: expected ErrMissingCredentials, got %v", key, err)
			}
		}
	})

	t.Run("default redirect uri", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{"client_id": "id", "client_secret": "secret"}, SpotifyOpts{})
		if err != nil {
			t.Fatal(err)
		}
		if srv.config.RedirectURL != DefaultRedirectURI {
			t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
		}
	})

	t.Run("search limit is capped", func(t *testing.T) {
		srv, _ := NewSpotifyService(testCredentials, SpotifyOpts{SearchLimit: 500})
		if srv.limit != maxSearchLimit {
			t.Errorf("expected limit %d, got %d", maxSearchLimit, srv.limit)
		}
	})

	t.Run("search rate", func(t *testing.T) {
		srv, _ := NewSpotifyService(testCredentials, SpotifyOpts{SearchesPerSecond: 5})
		if got := srv.limiter.Limit(); got != 5 {
			t.Errorf("expected 5 searches per second, got %v", got)
		}

		unlimited, _ := NewSpotifyService(testCredentials, SpotifyOpts{})
		if got := unlimited.limiter.Limit(); got != rate.Inf {
			t.Errorf("expected unlimited searches, got %v", got)
		}
	})
}

func TestSpotifyAuth(t *testing.T) {
	t.Run("auth url", func(t *testing.T) {
		srv, _ := NewSpotifyService(testCredentials, SpotifyOpts{})
		u, err := url.Parse(srv.AuthURL("state-123"))
		if err != nil {
			t.Fatal(err)
		}
		q := u.Query()
		if q.Get("state") != "state-123" || q.Get("client_id") != "test_client_id" {
			t.Errorf("unexpected auth url query: %v", q)
		}
		for _, scope := range []string{"playlist-modify-public", "playlist-modify-private"} {
			if !strings.Contains(q.Get("scope"), scope) {
				t.Errorf("expected scope %s in %q", scope, q.Get("scope"))
			}
		}
	})

	t.Run("not authenticated", func(t *testing.T) {
		srv, _ := NewSpotifyService(testCredentials, SpotifyOpts{})
		ctx := context.Background()
		if _, err := srv.SearchTracks(ctx, "q"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if _, err := srv.Token(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if err := srv.Authenticate(ctx, nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated for nil token, got %v", err)
		}
	})

	t.Run("exchange", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{})
		token, err := srv.Exchange(context.Background(), "good-code")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", token)
		}
		current, err := srv.Token()
		if err != nil || current.AccessToken != "access" {
			t.Errorf("expected current token to be the exchanged one, got %+v, %v", current, err)
		}
	})

	t.Run("bad code", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{})
		if _, err := srv.Exchange(context.Background(), "bad"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if _, err := srv.Exchange(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSpotifyAPI(t *testing.T) {
	ctx := context.Background()
	token := &oauth2.Token{AccessToken: "access", TokenType: "Bearer"}

	t.Run("search tracks", func(t *testing.T) {
		f := &fakeSpotify{searchFn: func(string) string {
			return `{"tracks":{"items":[
				{"id":"t1","name":"Red Flag","album":{"name":"II"},"artists":[{"name":"Fuzz"}]},
				{"id":"t2","name":"Red Flag - Live","album":{"name":"Live"},"artists":[]}
			],"total":2,"limit":5,"offset":0}}`
		}}
		srv := newTestService(t, f)
		if err := srv.Authenticate(ctx, token); err != nil {
			t.Fatal(err)
		}

		got, err := srv.SearchTracks(ctx, matcher.Query("Fuzz", "Red Flag"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []matcher.Candidate{
			{ID: "t1", Title: "Red Flag", Album: "II", Artist: "Fuzz"},
			{ID: "t2", Title: "Red Flag - Live", Album: "Live"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("candidates mismatch (-want +got):\n%s", diff)
		}
		if f.queries[0] != `artist:"Fuzz" track:"Red Flag"` {
			t.Errorf("unexpected query %q", f.queries[0])
		}
		if f.limits[0] != "5" {
			t.Errorf("expected limit 5, got %q", f.limits[0])
		}
	})

	t.Run("empty search", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{searchFn: func(string) string {
			return `{"tracks":{"items":[],"total":0}}`
		}})
		_ = srv.Authenticate(ctx, token)

		got, err := srv.SearchTracks(ctx, "nothing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no candidates, got %v", got)
		}
	})

	t.Run("api errors are wrapped", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{searchFn: func(string) string { return "{}" }})
		_ = srv.Authenticate(ctx, &oauth2.Token{AccessToken: "expired-elsewhere"})

		if _, err := srv.SearchTracks(ctx, "q"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("create playlist", func(t *testing.T) {
		f := &fakeSpotify{}
		srv := newTestService(t, f)
		_ = srv.Authenticate(ctx, token)

		id, err := srv.CreatePlaylist(ctx, "lauree", "Spin Cycle: August 27, 2021", "Friday at 9:00am on WERA with Lauree", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "pl1" {
			t.Errorf("expected id pl1, got %s", id)
		}
		if f.created["user"] != "lauree" || f.created["public"] != true {
			t.Errorf("unexpected create request %v", f.created)
		}
		if f.created["description"] != "Friday at 9:00am on WERA with Lauree" {
			t.Errorf("unexpected description %v", f.created["description"])
		}

		if _, err := srv.CreatePlaylist(ctx, "", "x", "", false); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument for empty user, got %v", err)
		}
	})

	t.Run("add tracks in batches", func(t *testing.T) {
		f := &fakeSpotify{}
		srv := newTestService(t, f)
		_ = srv.Authenticate(ctx, token)

		ids := make([]string, 230)
		for i := range ids {
			ids[i] = "track" + strings.Repeat("x", i%3)
		}
		if err := srv.AddTracks(ctx, "pl1", ids); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sizes := []int{}
		for _, b := range f.batches {
			sizes = append(sizes, len(b))
		}
		if diff := cmp.Diff([]int{100, 100, 30}, sizes); diff != "" {
			t.Errorf("batch sizes mismatch (-want +got):\n%s", diff)
		}
		if f.batches[0][0] != "spotify:track:track" {
			t.Errorf("unexpected uri %q", f.batches[0][0])
		}
	})

	t.Run("add nothing", func(t *testing.T) {
		f := &fakeSpotify{}
		srv := newTestService(t, f)
		_ = srv.Authenticate(ctx, token)
		if err := srv.AddTracks(ctx, "pl1", nil); err != nil {
			t.Fatal(err)
		}
		if len(f.batches) != 0 {
			t.Errorf("expected no requests, got %d", len(f.batches))
		}
	})

	t.Run("current user", func(t *testing.T) {
		srv := newTestService(t, &fakeSpotify{})
		_ = srv.Authenticate(ctx, token)
		user, err := srv.CurrentUser(ctx)
		if err != nil || user != "lauree" {
			t.Errorf("expected lauree, got %q, %v", user, err)
		}
	})
}
