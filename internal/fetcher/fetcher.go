// Package fetcher performs bounded-concurrency HTTP GET requests. The
// retrying transport and request/timing shape follow the teacher's
// crawler/fetcher.stdHttpFetcher; this version adds a global in-flight
// semaphore and classifies outcomes instead of returning a raw response,
// per spec.md §4.5.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/rehttp"
)

// FailureKind categorizes why a fetch did not produce a usable page.
type FailureKind int

const (
	// FailureNone (the zero value) indicates success; it is the only kind
	// a successful Result carries.
	FailureNone FailureKind = iota
	FailureNetwork
	FailureTimeout
	FailureStatus
	FailureContentType
)

// Result is the outcome of a single fetch attempt.
type Result struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
	Elapsed     time.Duration
	Failure     FailureKind
	Err         error
}

// Fetcher performs GET requests with a shared retrying transport, a
// per-request timeout, and a global cap on simultaneous in-flight
// requests.
type Fetcher struct {
	userAgent string
	client    *http.Client
	maxBody   int64
	sem       chan struct{}
}

// Option configures a Fetcher at construction time.
type Option func(*Fetcher)

// WithMaxBodySize caps how many bytes of a response body are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) { f.maxBody = n }
}

const defaultMaxBody = 10 << 20 // 10 MiB

// New creates a Fetcher with the given user agent, per-request timeout,
// redirect limit, and maximum number of simultaneous in-flight requests.
// concurrency <= 0 means unbounded, matching the teacher's New.
func New(userAgent string, timeout time.Duration, maxRedirects, concurrency int, opts ...Option) *Fetcher {
	transport := rehttp.NewTransport(
		&http.Transport{
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: false},
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
		},
		rehttp.RetryAll(rehttp.RetryMaxRetries(3), rehttp.RetryTemporaryErr()),
		rehttp.ExpJitterDelay(200*time.Millisecond, 5*time.Second),
	)
	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	f := &Fetcher{
		userAgent: userAgent,
		client:    client,
		maxBody:   defaultMaxBody,
	}
	if concurrency > 0 {
		f.sem = make(chan struct{}, concurrency)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get performs a GET request against targetURL, blocking until a
// concurrency slot is available or ctx is cancelled. The caller is
// responsible for rejecting unacceptable content types; Get surfaces the
// Content-Type header verbatim and never returns FailureContentType. A
// body read that fails mid-stream is reported as FailureNetwork.
func (f *Fetcher) Get(ctx context.Context, targetURL string) Result {
	if f.sem != nil {
		select {
		case f.sem <- struct{}{}:
			defer func() { <-f.sem }()
		case <-ctx.Done():
			return Result{URL: targetURL, Failure: FailureNetwork, Err: ctx.Err()}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return Result{URL: targetURL, Failure: FailureNetwork, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		kind := FailureNetwork
		if ctx.Err() != nil {
			kind = FailureTimeout
		}
		return Result{URL: targetURL, Elapsed: elapsed, Failure: kind, Err: fmt.Errorf("fetching %s: %w", targetURL, err)}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode != http.StatusOK {
		return Result{
			URL:         targetURL,
			Status:      resp.StatusCode,
			ContentType: contentType,
			Elapsed:     elapsed,
			Failure:     FailureStatus,
			Err:         fmt.Errorf("fetching %s: unexpected status %s", targetURL, resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return Result{URL: targetURL, Status: resp.StatusCode, ContentType: contentType, Elapsed: elapsed, Failure: FailureNetwork, Err: fmt.Errorf("reading body of %s: %w", targetURL, err)}
	}

	return Result{
		URL:         targetURL,
		Status:      resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Elapsed:     elapsed,
		Failure:     FailureNone,
	}
}
