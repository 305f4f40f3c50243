// Package indexer implements C6: the indexing handoff between a crawled
// page and the full-text index. Submission is retried a fixed number of
// times with a fixed backoff; on exhaustion the document is dead-lettered
// to docstore's index_failures collection. A crawl task is "completed"
// once its submissions are enqueued here, not once they succeed (spec
// §4.6) — callers invoke Submit synchronously but never fail the owning
// task on its result.
package indexer

import (
	"context"
	"time"

	"github.com/rohmanhakim/gridcrawl/internal/docstore"
	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/internal/searchindex"
	"github.com/rohmanhakim/gridcrawl/pkg/failure"
	"github.com/rohmanhakim/gridcrawl/pkg/retry"
	"github.com/rohmanhakim/gridcrawl/pkg/timeutil"
)

const (
	MaxAttempts = 5
	// FixedBackoff is expressed through the same exponential-backoff
	// engine used elsewhere by giving it a Multiplier of 1.0, which always
	// yields InitialDuration regardless of attempt number.
	FixedBackoff = 60 * time.Second
)

// submitError adapts a plain searchindex.Index.Submit error into the
// failure.ClassifiedError shape pkg/retry drives retries from. Index
// submission failures (network blips, a momentarily unavailable cluster)
// are always worth retrying up to MaxAttempts.
type submitError struct{ err error }

func (e *submitError) Error() string             { return e.err.Error() }
func (e *submitError) Severity() failure.Severity { return failure.SeverityRecoverable }
func (e *submitError) IsRetryable() bool          { return true }

// Handoff performs the index submission with retry/backoff/dead-letter
// semantics (spec §4.6), built on pkg/retry's generic retry engine.
type Handoff struct {
	index      searchindex.Index
	store      docstore.Store
	sink       obslog.Sink
	clock      timeutil.Clock
	retryParam retry.RetryParam
}

func NewHandoff(index searchindex.Index, store docstore.Store, sink obslog.Sink, clock timeutil.Clock, randomSeed int64) *Handoff {
	backoff := timeutil.NewBackoffParam(FixedBackoff, 1.0, FixedBackoff)
	return &Handoff{
		index:      index,
		store:      store,
		sink:       sink,
		clock:      clock,
		retryParam: retry.NewRetryParam(FixedBackoff, 0, randomSeed, MaxAttempts, backoff),
	}
}

// Submit attempts to index doc under docID up to MaxAttempts times via
// pkg/retry, sleeping the fixed backoff (through the injected clock)
// between attempts. On success it returns nil. On exhaustion it writes an
// IndexFailureRecord to docstore and returns nil: a dead-lettered document
// is not itself an error the caller must propagate (spec §7: "index
// submission failure: no task effect").
func (h *Handoff) Submit(ctx context.Context, docID string, doc searchindex.Doc) error {
	attempt := 0
	result := retry.Retry(ctx, h.clock, h.retryParam, func() (struct{}, failure.ClassifiedError) {
		attempt++
		if err := h.index.Submit(ctx, docID, doc); err != nil {
			if h.sink != nil {
				h.sink.RecordError("indexer", "Handoff.Submit", obslog.CauseIndexFailure, err, obslog.A(obslog.AttrDocID, docID), obslog.A(obslog.AttrRetryCount, attempt))
			}
			return struct{}{}, &submitError{err: err}
		}
		return struct{}{}, nil
	})

	if result.IsSuccess() {
		return nil
	}

	return h.store.AppendIndexFailure(ctx, docstore.IndexFailureRecord{
		DocID:      docID,
		Body:       doc.Text,
		Error:      result.Err().Error(),
		RetryCount: result.Attempts(),
		Timestamp:  h.clock.Now(),
	})
}
