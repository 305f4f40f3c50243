// Package dispatcher implements C8: enqueue_crawl(url, depth, politeness)
// -> task_id. It allocates the task_id, enqueues the broker message, and
// inserts the queued lifecycle record, then returns immediately — it
// never waits for the crawl to run.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rohmanhakim/gridcrawl/internal/broker"
	"github.com/rohmanhakim/gridcrawl/internal/docstore"
	"github.com/rohmanhakim/gridcrawl/pkg/timeutil"
)

type Dispatcher struct {
	broker broker.Broker
	store  docstore.Store
	clock  timeutil.Clock
}

func New(b broker.Broker, store docstore.Store, clock timeutil.Clock) *Dispatcher {
	return &Dispatcher{broker: b, store: store, clock: clock}
}

// EnqueueCrawl allocates a task_id, enqueues {task_id, url, depth,
// politeness} to the broker, and inserts a queued CrawlTask.
func (d *Dispatcher) EnqueueCrawl(ctx context.Context, url string, depth int, politenessSeconds float64) (string, error) {
	return d.enqueue(ctx, url, depth, politenessSeconds, docstore.StatusQueued, "")
}

// Requeue is EnqueueCrawl's counterpart for the supervisor's stale-task
// scan: the new record's status is "requeued" and carries originTaskID so
// a chain of requeues stays traceable back to the task that went stale.
func (d *Dispatcher) Requeue(ctx context.Context, url string, depth int, politenessSeconds float64, originTaskID string) (string, error) {
	return d.enqueue(ctx, url, depth, politenessSeconds, docstore.StatusRequeued, originTaskID)
}

func (d *Dispatcher) enqueue(ctx context.Context, url string, depth int, politenessSeconds float64, status docstore.TaskStatus, originTaskID string) (string, error) {
	taskID := uuid.NewString()

	task := docstore.CrawlTask{
		TaskID:            taskID,
		SeedURL:           url,
		Depth:             depth,
		PolitenessSeconds: politenessSeconds,
		CreatedAt:         d.clock.Now(),
		Status:            status,
		OriginTaskID:      originTaskID,
	}
	if err := d.store.InsertTask(ctx, task); err != nil {
		return "", fmt.Errorf("dispatcher: insert task: %w", err)
	}

	msg := broker.CrawlMessage{TaskID: taskID, URL: url, Depth: depth, Politeness: politenessSeconds}
	if err := d.broker.Enqueue(ctx, msg); err != nil {
		return "", fmt.Errorf("dispatcher: enqueue message: %w", err)
	}

	return taskID, nil
}
