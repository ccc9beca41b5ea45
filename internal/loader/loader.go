// Package loader fetches the graph document: a single request, a status check, and a
// JSON decode into an element list.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/corpix/uarand"

	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/lib"
)

// DefaultURL is the URL path the graph document is served at. It is a path on the
// serving host, not a file: join it to the host's base URL before passing it to Load,
// which reads bare paths from disk.
const DefaultURL = "/elements.json"

// Loader fetches graph documents. It never retries; timeouts come from the http.Client
// and the caller's context.
type Loader struct {
	client    *http.Client
	logger    *slog.Logger
	userAgent string
	randomUA  bool
}

type Option func(*Loader)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// WithUserAgent sets a fixed User-Agent header.
func WithUserAgent(ua string) Option {
	return func(ld *Loader) { ld.userAgent = ua }
}

// WithRandomUserAgent sends a random browser User-Agent on each request.
func WithRandomUserAgent() Option {
	return func(ld *Loader) { ld.randomUA = true }
}

func New(hc *http.Client, opts ...Option) *Loader {
	if hc == nil {
		hc = http.DefaultClient
	}
	l := &Loader{
		client:    hc,
		logger:    lib.DiscardLogger(),
		userAgent: "visualizer/" + lib.Version,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and decodes the document at urlStr. http and https URLs are fetched,
// file URLs and bare paths are read from disk.
//
// A status of 400 or above fails with *HTTPError. A body that does not decode as an
// element array fails with *ParseError. Transport failures are returned wrapped.
func (l *Loader) Load(ctx context.Context, urlStr string) (elements.List, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid document URL %q: %w", urlStr, err)
	}

	switch parsed.Scheme {
	case "http", "https":
		return l.fetch(ctx, urlStr)
	case "file":
		return l.readFile(urlStr, parsed.Path)
	case "":
		return l.readFile(urlStr, urlStr)
	}
	return nil, fmt.Errorf("unsupported document URL scheme %q", parsed.Scheme)
}

func (l *Loader) fetch(ctx context.Context, urlStr string) (elements.List, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if l.randomUA {
		req.Header.Set("User-Agent", uarand.GetRandom())
	} else {
		req.Header.Set("User-Agent", l.userAgent)
	}

	l.logger.Debug("Fetching graph document", "url", urlStr)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	l.logger.Debug("Graph document response", "url", urlStr, "status", resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newHTTPError(urlStr, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", urlStr, err)
	}

	return l.decode(urlStr, body)
}

func (l *Loader) readFile(urlStr, path string) (elements.List, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.decode(urlStr, body)
}

func (l *Loader) decode(urlStr string, body []byte) (elements.List, error) {
	list, err := elements.Decode(body)
	if err != nil {
		return nil, &ParseError{URL: urlStr, Err: err}
	}
	l.logger.Debug("Decoded graph document", "url", urlStr, "elements", len(list))
	return list, nil
}
