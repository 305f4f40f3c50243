package dispatcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/rohmanhakim/gridcrawl/internal/broker"
	"github.com/rohmanhakim/gridcrawl/internal/dispatcher"
	"github.com/rohmanhakim/gridcrawl/internal/docstore"
	"github.com/rohmanhakim/gridcrawl/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueCrawlReturnsTaskIDAndPersistsQueuedTask(t *testing.T) {
	b := broker.NewInMemoryBroker()
	store := docstore.NewMemStore()
	clock := timeutil.NewFakeClock(time.Now())
	d := dispatcher.New(b, store, clock)

	taskID, err := d.EnqueueCrawl(context.Background(), "https://example.com/", 2, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	task, err := store.GetTask(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, docstore.StatusQueued, task.Status)
	assert.Equal(t, "https://example.com/", task.SeedURL)
	assert.Equal(t, 1, b.Len())
}

func TestRequeueLinksOriginTaskID(t *testing.T) {
	b := broker.NewInMemoryBroker()
	store := docstore.NewMemStore()
	clock := timeutil.NewFakeClock(time.Now())
	d := dispatcher.New(b, store, clock)

	taskID, err := d.Requeue(context.Background(), "https://example.com/", 1, 1, "origin-task")
	require.NoError(t, err)

	task, err := store.GetTask(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, docstore.StatusRequeued, task.Status)
	assert.Equal(t, "origin-task", task.OriginTaskID)
}
