// Package fetcher implements C3: fetch(url) -> {body, content_type,
// status} or failure. No retry is performed here — spec §4.5 step 7 and
// §7 both fix "on failure, return; do not retry within task" as part of
// the crawl engine's contract, so this package never wraps itself in
// pkg/retry the way the teacher's fetcher does.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/pkg/failure"
)

const (
	// Timeout is the hard total per-request timeout (spec §4.3).
	Timeout = 10 * time.Second
	// MaxBodyBytes caps the response body read at 8 MiB (spec §4.3: "SHOULD
	// cap at a sensible value, e.g., 8 MiB").
	MaxBodyBytes = 8 * 1024 * 1024
)

type Fetcher interface {
	Fetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError)
}

// HTTPFetcher is the production C3 adapter. Its transport tolerates TLS
// certificate errors (spec §4.3: "crawler is read-only; operator may
// tighten later").
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	sink       obslog.Sink
}

func NewHTTPFetcher(sink obslog.Sink, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		userAgent: userAgent,
		sink:      sink,
	}
}

// NewHTTPFetcherWithClient allows tests to inject a client (e.g. pointed
// at an httptest.Server).
func NewHTTPFetcherWithClient(sink obslog.Sink, userAgent string, client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{httpClient: client, userAgent: userAgent, sink: sink}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError) {
	result, err := f.fetch(ctx, param)
	if err != nil && f.sink != nil {
		f.sink.RecordError("fetcher", "HTTPFetcher.Fetch", mapFetchErrorToObsCause(err), err,
			obslog.A(obslog.AttrURL, param.URL))
	}
	if err != nil {
		return FetchResult{}, err
	}
	if f.sink != nil {
		f.sink.RecordFetch(param.URL, result.StatusCode, time.Since(result.FetchedAt), result.ContentType, 0)
	}
	return result, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, param FetchParam) (FetchResult, *FetchError) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, param.URL, nil)
	if err != nil {
		return FetchResult{}, &FetchError{Message: err.Error(), Cause: ErrCausePreFetchFailure}
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, &FetchError{Message: err.Error(), Cause: ErrCauseNetworkFailure}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("non-2xx status %d for %s", resp.StatusCode, param.URL),
			Cause:   ErrCauseNonOKStatus,
		}
	}

	limited := io.LimitReader(resp.Body, MaxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return FetchResult{}, &FetchError{Message: err.Error(), Cause: ErrCauseBodyReadFailure}
	}
	if len(body) > MaxBodyBytes {
		body = body[:MaxBodyBytes]
	}

	return FetchResult{
		URL:         param.URL,
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   start,
	}, nil
}
