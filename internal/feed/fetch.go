package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	appLog "afisha/internal/log"
	"afisha/internal/model"
)

const (
	defaultMaxAttempts  = 3
	defaultEmptyDelay   = 1 * time.Second
	defaultErrorDelay   = 2 * time.Second
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "afisha/1.0"
	maxBodyBytes        = 32 << 20
	singleflightFetchID = "fetch"
)

// ErrEmptyPayload is the cause reported when the feed answered with a valid
// but empty array (or a non-array document) on the last attempt.
var ErrEmptyPayload = errors.New("feed returned no events")

// FetchError is returned once the retry budget is exhausted.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("feed fetch failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return "unexpected HTTP status: " + e.Status
}

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// EmptyDelay is waited before retrying after an empty result.
	EmptyDelay time.Duration
	// ErrorDelay is waited before retrying after a transport/HTTP error.
	ErrorDelay time.Duration
	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration
	// Client overrides the HTTP client (its Timeout is left untouched).
	Client *http.Client
	// Sleep overrides the backoff wait; tests use it to observe delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Fetcher retrieves the event feed with a small fixed-delay retry loop.
// Concurrent Fetch calls share a single in-flight request.
type Fetcher struct {
	url    string
	client *http.Client
	opts   Options
	group  singleflight.Group
}

// NewFetcher creates a Fetcher for the given feed URL.
func NewFetcher(url string, opts Options) *Fetcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.EmptyDelay <= 0 {
		opts.EmptyDelay = defaultEmptyDelay
	}
	if opts.ErrorDelay <= 0 {
		opts.ErrorDelay = defaultErrorDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Fetcher{
		url:    url,
		client: client,
		opts:   opts,
	}
}

// URL returns the feed endpoint.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch downloads and decodes the feed. If a fetch is already running, the
// caller waits for it and receives the same result.
//
// The shared fetch is detached from the cancellation of whichever caller
// started it; each attempt is bounded by Options.Timeout instead. A caller
// whose ctx ends stops waiting without aborting the fetch for the others.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.Event, error) {
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(singleflightFetchID, func() (any, error) {
		return f.fetchWithRetry(shared)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			appLog.Debug("feed fetch coalesced", "url", redactURL(f.url))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		events := res.Val.([]model.Event)
		// Callers must not share the backing array.
		out := make([]model.Event, len(events))
		copy(out, events)
		return out, nil
	}
}

func (f *Fetcher) fetchWithRetry(ctx context.Context) ([]model.Event, error) {
	if f.url == "" {
		return nil, &FetchError{Attempts: 0, Err: errors.New("feed URL is empty")}
	}

	var lastErr error
	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		appLog.Info("feed fetch start", "url", redactURL(f.url), "attempt", attempt)

		events, err := f.fetchOnce(ctx)
		if err == nil && len(events) > 0 {
			appLog.Info("feed fetch success", "url", redactURL(f.url), "attempt", attempt, "event_count", len(events))
			return events, nil
		}

		delay := f.opts.ErrorDelay
		if err == nil {
			err = ErrEmptyPayload
			delay = f.opts.EmptyDelay
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, &FetchError{Attempts: attempt, Err: ctx.Err()}
		}
		if attempt == f.opts.MaxAttempts {
			break
		}

		appLog.Error("feed fetch attempt failed; retrying", err,
			"url", redactURL(f.url),
			"attempt", attempt,
			"delay", delay,
		)
		if err := f.opts.Sleep(ctx, delay); err != nil {
			return nil, &FetchError{Attempts: attempt, Err: err}
		}
	}

	return nil, &FetchError{Attempts: f.opts.MaxAttempts, Err: lastErr}
}

// fetchOnce performs a single GET. A nil error with zero events means the
// feed answered with an empty (or non-array) document.
func (f *Fetcher) fetchOnce(ctx context.Context) ([]model.Event, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	events, err := DecodeEvents(body)
	if err != nil {
		if errors.Is(err, ErrNotArray) {
			return nil, nil
		}
		return nil, err
	}
	return events, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// redactURL hides sensitive parts of a feed URL for logging purposes.
//
//	https://example.com/path/to/feed?token=abcd -> https://example.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "feed://...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}

	return u[:j] + redactedSuffix
}
