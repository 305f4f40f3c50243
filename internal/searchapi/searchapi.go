// Package searchapi implements C10's HTTP surface: GET /api/search and
// GET /api/metrics.
package searchapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rohmanhakim/gridcrawl/internal/docstore"
	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/internal/searchindex"
	"github.com/rohmanhakim/gridcrawl/pkg/timeutil"
)

const defaultSize = 10

// Hit is the JSON shape returned by /api/search (spec §4.10: "url + text
// fields").
type Hit struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type API struct {
	index searchindex.Index
	store docstore.Store
	clock timeutil.Clock
	sink  obslog.Sink
}

func New(index searchindex.Index, store docstore.Store, clock timeutil.Clock, sink obslog.Sink) *API {
	return &API{index: index, store: store, clock: clock, sink: sink}
}

// Register mounts the API's routes onto an existing gin router.
func (a *API) Register(r gin.IRouter) {
	r.GET("/api/search", a.search)
	r.GET("/api/metrics", a.metrics)
}

func (a *API) search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	mode := searchindex.Mode(c.DefaultQuery("mode", string(searchindex.ModeMatch)))
	switch mode {
	case searchindex.ModeMatch, searchindex.ModePhrase, searchindex.ModeBoolean:
	default:
		mode = searchindex.ModeMatch
	}

	size := defaultSize
	if raw := c.Query("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			size = parsed
		}
	}

	results, err := a.index.Search(c.Request.Context(), mode, query, size)
	if errors.Is(err, searchindex.ErrIndexMissing) {
		c.JSON(http.StatusNotFound, []Hit{})
		return
	}
	if err != nil {
		if a.sink != nil {
			a.sink.RecordError("searchapi", "search", obslog.CauseNetworkFailure, err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	hits := make([]Hit, 0, len(results))
	urls := make([]string, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{URL: r.URL, Text: r.Text})
		urls = append(urls, r.URL)
	}

	if a.sink != nil {
		a.sink.RecordSearch(query, string(mode), size, len(hits))
	}
	_ = a.store.AppendSearchHistory(c.Request.Context(), docstore.SearchHistoryRecord{
		Keywords:  query,
		Mode:      string(mode),
		Size:      size,
		Results:   urls,
		Timestamp: a.clock.Now(),
	})

	c.JSON(http.StatusOK, hits)
}

func (a *API) metrics(c *gin.Context) {
	count, err := a.index.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "metrics unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexed_pages": count})
}
