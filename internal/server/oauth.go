package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/spinsync/internal/shared"
	"golang.org/x/oauth2"
)

// Exchanger trades an authorization code for a token.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// OAuthResult is the outcome of one authorization callback.
type OAuthResult struct {
	Token *oauth2.Token
	Err   error
}

// OAuthHandler handles the authorization code redirect.
type OAuthHandler struct {
	exchanger Exchanger
	state     string
	path      string

	results chan OAuthResult
	once    sync.Once
	mu      sync.Mutex
	hit     bool
}

// NewOAuthHandler creates a handler serving path (default "/callback").
// state should be random; callbacks carrying any other state are rejected.
func NewOAuthHandler(exchanger Exchanger, state, path string) *OAuthHandler {
	if path == "" {
		path = "/callback"
	}
	return &OAuthHandler{
		exchanger: exchanger,
		state:     state,
		path:      path,
		results:   make(chan OAuthResult, 1),
	}
}

func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP validates the callback, exchanges the code and publishes the result.
// Only the first callback carrying the expected state is processed.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// A mismatched state does not consume the callback.
	q := r.URL.Query()
	if q.Get("state") != h.state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	code := q.Get("code")
	if code == "" {
		h.send(OAuthResult{Err: fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, q.Get("error"), q.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.send(OAuthResult{Err: err})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (h *OAuthHandler) send(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result receives exactly one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}

const successPage = `<!DOCTYPE html>
<html>
<head><title>spinsync</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; display: flex;
         align-items: center; justify-content: center; height: 100vh; margin: 0; background: #f5f5f5; }
  .box { text-align: center; background: white; padding: 2rem; border-radius: 8px; }
  h1 { color: #1DB954; margin: 0 0 1rem 0; }
</style>
</head>
<body><div class="box"><h1>✓ Authorized</h1><p>You can close this window and return to the terminal.</p></div></body>
</html>
`
