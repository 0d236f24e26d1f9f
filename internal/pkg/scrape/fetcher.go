package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/logger"
)

// FetchError reports that a page could not be retrieved within the retry
// budget. StatusCode is zero when the failure was at the transport level.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DefaultUserAgent mimics a desktop browser to reduce anti-bot rejection.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

const defaultMaxBodyBytes = 10 << 20

// Fetcher retrieves raw homepage HTML with bounded retries and browser-like
// headers. Redirects are followed by the underlying client.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	backoff     time.Duration
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxAttempts sets the total attempt budget.
func WithMaxAttempts(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithBackoff sets the fixed delay between attempts.
func WithBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoff = d
		}
	}
}

// NewFetcher creates a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent:   DefaultUserAgent,
		maxAttempts: 3,
		backoff:     time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the page body for rawURL. Non-2xx responses and transport
// errors are retried with a fixed backoff; after the budget is exhausted the
// last failure is returned as a FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	var lastErr *FetchError

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		body, fetchErr := f.fetchOnce(ctx, rawURL)
		if fetchErr == nil {
			return body, nil
		}
		lastErr = fetchErr

		logger.Warnw("fetch attempt failed",
			"url", rawURL,
			"attempt", attempt,
			"status", fetchErr.StatusCode,
			"error", fetchErr.Err,
		)

		if attempt < f.maxAttempts {
			select {
			case <-ctx.Done():
				return "", &FetchError{URL: rawURL, Err: ctx.Err()}
			case <-time.After(f.backoff):
			}
		}
	}

	return "", lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (string, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, defaultMaxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	return string(body), nil
}

func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
}
