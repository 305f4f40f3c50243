package fetcher_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rohmanhakim/gridcrawl/internal/fetcher"
	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "MyCrawlerBot/")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcherWithClient(obslog.NoopSink{}, "MyCrawlerBot/1.0", srv.Client())
	result, err := f.Fetch(t.Context(), fetcher.FetchParam{URL: srv.URL})
	require.Nil(t, err)
	assert.Equal(t, 200, result.StatusCode)
	assert.Contains(t, string(result.Body), "hi")
}

func TestHTTPFetcherNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcherWithClient(obslog.NoopSink{}, "MyCrawlerBot/1.0", srv.Client())
	_, err := f.Fetch(t.Context(), fetcher.FetchParam{URL: srv.URL})
	require.NotNil(t, err)
}

func TestHTTPFetcherCapsBodyAt8MiB(t *testing.T) {
	huge := strings.Repeat("a", fetcher.MaxBodyBytes+1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(huge))
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcherWithClient(obslog.NoopSink{}, "MyCrawlerBot/1.0", srv.Client())
	result, err := f.Fetch(t.Context(), fetcher.FetchParam{URL: srv.URL})
	require.Nil(t, err)
	assert.LessOrEqual(t, len(result.Body), fetcher.MaxBodyBytes)
}

func TestHTTPFetcherDoesNotRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcherWithClient(obslog.NoopSink{}, "MyCrawlerBot/1.0", srv.Client())
	_, err := f.Fetch(t.Context(), fetcher.FetchParam{URL: srv.URL})
	require.NotNil(t, err)
	assert.Equal(t, 1, attempts)
}
