// Package crawlengine implements C5: the per-task bounded-depth DFS
// traversal (spec §4.5). One Engine.RunTask call owns a task end-to-end —
// from the "queued"/"requeued" pickup transition through "completed" or
// "failed" — driving C1-C4, C6, and the document/blob stores along the
// way.
package crawlengine

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/gridcrawl/internal/blobstore"
	"github.com/rohmanhakim/gridcrawl/internal/docstore"
	"github.com/rohmanhakim/gridcrawl/internal/extractor"
	"github.com/rohmanhakim/gridcrawl/internal/fetcher"
	"github.com/rohmanhakim/gridcrawl/internal/indexer"
	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/internal/robots"
	"github.com/rohmanhakim/gridcrawl/internal/searchindex"
	"github.com/rohmanhakim/gridcrawl/internal/urlcanon"
	"github.com/rohmanhakim/gridcrawl/pkg/container"
	"github.com/rohmanhakim/gridcrawl/pkg/hashutil"
	"github.com/rohmanhakim/gridcrawl/pkg/timeutil"
)

type workItem struct {
	url            string
	depthRemaining int
}

// Engine runs crawl tasks. It holds only process-wide, stateless
// collaborators; everything that is scoped to a single task (visited set,
// robots cache) is constructed fresh inside RunTask.
type Engine struct {
	fetcher       fetcher.Fetcher
	robotsFetcher *robots.RobotsFetcher
	store         docstore.Store
	blob          blobstore.Store
	handoff       *indexer.Handoff
	clock         timeutil.Clock
	sink          obslog.Sink
	userAgent     string
}

func New(
	f fetcher.Fetcher,
	robotsFetcher *robots.RobotsFetcher,
	store docstore.Store,
	blob blobstore.Store,
	handoff *indexer.Handoff,
	clock timeutil.Clock,
	sink obslog.Sink,
	userAgent string,
) *Engine {
	return &Engine{
		fetcher:       f,
		robotsFetcher: robotsFetcher,
		store:         store,
		blob:          blob,
		handoff:       handoff,
		clock:         clock,
		sink:          sink,
		userAgent:     userAgent,
	}
}

// RunTask executes one crawl task to completion. It is idempotent against
// duplicate broker delivery: if the task has already moved past
// queued/requeued by the time this call attempts the pickup transition,
// RunTask returns immediately without traversing anything.
func (e *Engine) RunTask(ctx context.Context, taskID, seedURL string, depth int, politenessSeconds float64) error {
	if !e.pickUp(ctx, taskID) {
		return nil
	}

	seedDomain, domainErr := urlcanon.Normalize(seedURL)
	if domainErr != nil {
		return e.finish(ctx, taskID, fmt.Errorf("crawlengine: invalid seed url: %w", domainErr))
	}

	visited := container.NewSet[string]()
	robotsCache := robots.NewRobotsCache(e.robotsFetcher, e.userAgent, politenessDuration(politenessSeconds))
	stack := container.NewStack[workItem]()
	stack.Push(workItem{url: seedURL, depthRemaining: depth})

	traversalErr := e.traverse(ctx, stack, visited, robotsCache, seedDomain)
	return e.finish(ctx, taskID, traversalErr)
}

func (e *Engine) pickUp(ctx context.Context, taskID string) bool {
	now := e.clock.Now()
	for _, from := range []docstore.TaskStatus{docstore.StatusQueued, docstore.StatusRequeued} {
		ok, err := e.store.TransitionTaskStatus(ctx, taskID, from, docstore.StatusStarted, &now, nil, "")
		if err == nil && ok {
			return true
		}
	}
	return false
}

func (e *Engine) finish(ctx context.Context, taskID string, traversalErr error) error {
	finishedAt := e.clock.Now()
	if traversalErr != nil {
		_, _ = e.store.TransitionTaskStatus(ctx, taskID, docstore.StatusStarted, docstore.StatusFailed, nil, &finishedAt, traversalErr.Error())
		return traversalErr
	}
	_, err := e.store.TransitionTaskStatus(ctx, taskID, docstore.StatusStarted, docstore.StatusCompleted, nil, &finishedAt, "")
	return err
}

// traverse drains the work stack, recovering from any panic raised while
// visiting a single item and turning it into the task's "failed"
// transition (spec §4.5: "on uncaught exception from traversal, -> failed
// with error text").
func (e *Engine) traverse(ctx context.Context, stack *container.Stack[workItem], visited container.Set[string], robotsCache *robots.RobotsCache, seedDomain string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("crawlengine: panic during traversal: %v", r)
		}
	}()

	for {
		item, ok := stack.Pop()
		if !ok {
			return nil
		}
		e.visit(ctx, item, visited, robotsCache, seedDomain, stack)
	}
}

// visit implements the 11-step per-candidate algorithm of spec §4.5.
func (e *Engine) visit(ctx context.Context, item workItem, visited container.Set[string], robotsCache *robots.RobotsCache, seedDomain string, stack *container.Stack[workItem]) {
	// Step 1.
	if item.depthRemaining < 0 {
		return
	}

	// Step 2.
	normalized, err := urlcanon.Normalize(item.url)
	if err != nil {
		return
	}

	// Step 3.
	sameDomain, err := urlcanon.SameRegisteredDomain(normalized, seedDomain)
	if err != nil || !sameDomain {
		return
	}

	// Step 4.
	if !robotsCache.IsAllowed(ctx, normalized) {
		return
	}

	// Step 5.
	if visited.Contains(normalized) {
		return
	}
	visited.Add(normalized)

	// Step 6.
	e.clock.Sleep(ctx, robotsCache.DelayFor(ctx, normalized))

	// Step 7.
	fetchResult, fetchErr := e.fetcher.Fetch(ctx, fetcher.FetchParam{URL: normalized})
	if fetchErr != nil {
		return
	}

	// Step 8.
	extracted, err := extractor.Extract(normalized, fetchResult.Body)
	if err != nil {
		return
	}
	now := e.clock.Now()
	if err := e.store.UpsertPage(ctx, docstore.CrawledPage{
		URL:       normalized,
		Text:      extracted.Text,
		Depth:     item.depthRemaining,
		Timestamp: now,
	}); err != nil {
		if e.sink != nil {
			e.sink.RecordError("crawlengine", "visit.UpsertPage", obslog.CauseStorageFailure, err, obslog.A(obslog.AttrURL, normalized))
		}
	}

	// Step 9.
	docID := hashutil.DocID(normalized)
	if err := e.handoff.Submit(ctx, docID, searchindex.Doc{URL: normalized, Text: extracted.Text}); err != nil {
		if e.sink != nil {
			e.sink.RecordError("crawlengine", "visit.Submit", obslog.CauseIndexFailure, err, obslog.A(obslog.AttrDocID, docID))
		}
	}

	// Step 10.
	if err := e.blob.Put(ctx, docID, fetchResult.Body); err != nil {
		_ = e.store.AppendIndexFailure(ctx, docstore.IndexFailureRecord{
			DocID:     docID,
			Error:     "blob upload failed: " + err.Error(),
			Timestamp: e.clock.Now(),
		})
	}

	// Step 11. Push in reverse so the stack pops in document order.
	for i := len(extracted.Links) - 1; i >= 0; i-- {
		stack.Push(workItem{url: extracted.Links[i], depthRemaining: item.depthRemaining - 1})
	}
}

func politenessDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
