package indexer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/gridcrawl/internal/docstore"
	"github.com/rohmanhakim/gridcrawl/internal/indexer"
	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/internal/searchindex"
	"github.com/rohmanhakim/gridcrawl/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyIndex fails the first failUntil submissions then succeeds.
type flakyIndex struct {
	searchindex.Index
	failUntil int
	attempts  int
}

func (f *flakyIndex) Submit(_ context.Context, _ string, _ searchindex.Doc) error {
	f.attempts++
	if f.attempts <= f.failUntil {
		return errors.New("transient index failure")
	}
	return nil
}

type alwaysFailIndex struct {
	searchindex.Index
	attempts int
}

func (f *alwaysFailIndex) Submit(_ context.Context, _ string, _ searchindex.Doc) error {
	f.attempts++
	return errors.New("permanent index failure")
}

func TestSubmitSucceedsAfterTransientFailures(t *testing.T) {
	idx := &flakyIndex{failUntil: 2}
	store := docstore.NewMemStore()
	clock := timeutil.NewFakeClock(time.Now())

	h := indexer.NewHandoff(idx, store, obslog.NoopSink{}, clock, 1)
	err := h.Submit(context.Background(), "doc1", searchindex.Doc{URL: "https://a.com/", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.attempts)
	assert.Empty(t, store.IndexFailures())
}

func TestSubmitDeadLettersAfterExhaustingAttempts(t *testing.T) {
	idx := &alwaysFailIndex{}
	store := docstore.NewMemStore()
	clock := timeutil.NewFakeClock(time.Now())

	h := indexer.NewHandoff(idx, store, obslog.NoopSink{}, clock, 1)
	err := h.Submit(context.Background(), "doc1", searchindex.Doc{URL: "https://a.com/", Text: "hi"})
	require.NoError(t, err, "a dead-lettered submission is not itself an error")
	assert.Equal(t, indexer.MaxAttempts, idx.attempts)

	failures := store.IndexFailures()
	require.Len(t, failures, 1)
	assert.Equal(t, "doc1", failures[0].DocID)
	assert.Equal(t, indexer.MaxAttempts, failures[0].RetryCount)
}
