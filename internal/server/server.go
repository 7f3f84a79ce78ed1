package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spinsync/internal/shared"
	"golang.org/x/oauth2"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which paths it serves.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers [Handler] values on a [http.ServeMux] behind a middleware stack.
type Router struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouter creates a [Router] with the given middleware, applied in order.
func NewRouter(middleware ...Middleware) *Router {
	return &Router{mux: http.NewServeMux(), middlewares: middleware}
}

// Mount registers every route of handler.
func (r *Router) Mount(handler Handler) {
	wrapped := r.apply(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

// statusRecorder captures the status written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs each request at debug level. Query strings are omitted since they carry codes.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
		})
	}
}

// WaitForCallback serves handler on addr until it yields a result or ctx ends.
func WaitForCallback(ctx context.Context, addr string, handler *OAuthHandler, logger *log.Logger) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	router := NewRouter(RequestLogger(logger))
	router.Mount(handler)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server stopped", "error", err)
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Debug("waiting for oauth callback", "addr", ln.Addr().String())

	select {
	case res := <-handler.Result():
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Token, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: no authorization callback received: %v", shared.ErrTimeout, ctx.Err())
	}
}
