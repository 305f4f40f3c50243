package robots_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/internal/robots"
	"github.com/rohmanhakim/gridcrawl/internal/robots/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsFetcher404MeansNoRestrictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := robots.NewRobotsFetcherWithClient(obslog.NoopSink{}, "MyCrawlerBot/1.0", srv.Client(), nil)
	host := srv.Listener.Addr().String()
	result, err := fetcher.Fetch(context.Background(), "http", host)
	require.Nil(t, err)
	assert.True(t, result.Response.IsEmpty())
}

func TestRobotsFetcher429IsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	fetcher := robots.NewRobotsFetcherWithClient(obslog.NoopSink{}, "MyCrawlerBot/1.0", srv.Client(), nil)
	host := srv.Listener.Addr().String()
	_, err := fetcher.Fetch(context.Background(), "http", host)
	require.NotNil(t, err)
	assert.True(t, err.Retryable)
}

func TestRobotsFetcher5xxIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fetcher := robots.NewRobotsFetcherWithClient(obslog.NoopSink{}, "MyCrawlerBot/1.0", srv.Client(), nil)
	host := srv.Listener.Addr().String()
	_, err := fetcher.Fetch(context.Background(), "http", host)
	require.NotNil(t, err)
	assert.True(t, err.Retryable)
}

func TestRobotsFetcherCachesSuccessfulResult(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
	}))
	defer srv.Close()

	memCache := cache.NewMemoryCache()
	fetcher := robots.NewRobotsFetcherWithClient(obslog.NoopSink{}, "MyCrawlerBot/1.0", srv.Client(), memCache)
	host := srv.Listener.Addr().String()

	_, err := fetcher.Fetch(context.Background(), "http", host)
	require.Nil(t, err)
	_, err = fetcher.Fetch(context.Background(), "http", host)
	require.Nil(t, err)

	assert.Equal(t, 1, hits)
}
