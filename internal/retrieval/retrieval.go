// Package retrieval fetches playlist pages and derives the dispatch domain from their URLs.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spinsync/internal/shared"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// maxBodySize caps how much of a page is read.
const maxBodySize = 10 << 20

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// ParseDomain returns the last two labels of the URL's host, e.g. "spinitron.com"
// for "https://sub.spinitron.com/WZBC/pl/1". URLs without a scheme are read as http.
func ParseDomain(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty url", shared.ErrMissingArgument)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		u, err = url.Parse("http://" + raw)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", shared.ErrInvalidArgument, raw, err)
		}
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", fmt.Errorf("%w: no host in %q", shared.ErrInvalidArgument, raw)
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host, nil
	}
	return strings.Join(labels[len(labels)-2:], "."), nil
}

// Fetcher downloads pages with browser-like headers, one request at a time per rate limit.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *log.Logger
}

// NewFetcher builds a [Fetcher] from cfg. A non-positive request rate disables throttling.
func NewFetcher(cfg shared.HTTPConfig, logger *log.Logger) *Fetcher {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout()},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: ua,
		logger:    shared.WithLogger(logger, "component", "fetcher"),
	}
}

// Fetch GETs rawURL and returns its body as UTF-8.
//
// The response charset comes from the Content-Type header, then the page's meta tags.
// Non-2xx responses and transport failures wrap [shared.ErrFetch].
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target := rawURL
	if u, err := url.Parse(rawURL); err != nil || u.Host == "" {
		target = "http://" + rawURL
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrFetch, rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrInvalidArgument, rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	f.logger.Debug("fetched page", "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: status %d", shared.ErrFetch, rawURL, resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if errors.Is(err, io.EOF) {
		return []byte{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %s: decoding body: %w", shared.ErrFetch, rawURL, err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %w", shared.ErrFetch, rawURL, err)
	}
	return data, nil
}
