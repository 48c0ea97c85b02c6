// SPDX-License-Identifier: MPL-2.0

package accessor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/invowk/need/pkg/modpath"
)

// DefaultHTTPTimeout bounds a single request when no client is supplied.
const DefaultHTTPTimeout = 30 * time.Second

type (
	// HTTP fetches module content with GET requests below a base URL.
	// The module path "/lib/index.js" maps to "<base>/lib/index.js".
	HTTP struct {
		base    *url.URL
		client  *http.Client
		timeout *time.Duration
		noCache bool
		maxSize int64
	}

	// HTTPOption configures an HTTP accessor.
	HTTPOption func(*HTTP)
)

// NewHTTP creates an accessor rooted at baseURL, which must be an absolute
// http or https URL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidBaseURL, baseURL)
	}

	a := &HTTP{
		base:    base,
		client:  &http.Client{Timeout: DefaultHTTPTimeout},
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		return nil, ErrNilHTTPClient
	}
	if a.timeout != nil {
		c := *a.client
		c.Timeout = *a.timeout
		a.client = &c
	}
	return a, nil
}

// WithHTTPClient replaces the default client. The client is used as-is
// unless WithTimeout is also given, in which case a copy is used.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(a *HTTP) {
		a.client = c
	}
}

// WithTimeout sets the request timeout, regardless of option order.
func WithTimeout(d time.Duration) HTTPOption {
	return func(a *HTTP) {
		a.timeout = &d
	}
}

// WithNoCache asks intermediaries not to serve cached content.
func WithNoCache(noCache bool) HTTPOption {
	return func(a *HTTP) {
		a.noCache = noCache
	}
}

// WithHTTPMaxSize sets the largest response body the accessor will read.
func WithHTTPMaxSize(n int64) HTTPOption {
	return func(a *HTTP) {
		a.maxSize = n
	}
}

// URL returns the request URL for path.
func (a *HTTP) URL(path modpath.Path) string {
	return a.base.JoinPath(path.String()).String()
}

// Fetch GETs path. Any non-2xx status is an error.
func (a *HTTP) Fetch(ctx context.Context, path modpath.Path) (string, error) {
	target := a.URL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", err
	}
	if a.noCache {
		req.Header.Set("Pragma", "no-cache")
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", target, err)
	}
	if int64(len(body)) > a.maxSize {
		return "", tooLarge(target, int64(len(body)), a.maxSize)
	}
	return string(body), nil
}
