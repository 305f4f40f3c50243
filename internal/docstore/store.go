package docstore

import (
	"context"
	"time"
)

// Store is the port every C7-dependent component (dispatcher, crawl
// engine, supervisor, indexer, search API) talks to. It never deletes
// records; requeues insert a new CrawlTask linked via OriginTaskID.
type Store interface {
	InsertTask(ctx context.Context, task CrawlTask) error
	GetTask(ctx context.Context, taskID string) (CrawlTask, error)

	// TransitionTaskStatus moves a task from an expected prior status to a
	// new one. It is the guard behind the lifecycle's "first expected
	// writer wins": if the task's current status does not equal
	// fromStatus, the call is a no-op and ok is false. finishedAt is only
	// applied when set (non-nil); startedAt likewise.
	TransitionTaskStatus(ctx context.Context, taskID string, fromStatus, toStatus TaskStatus, startedAt, finishedAt *time.Time, errMsg string) (ok bool, err error)

	QueryByStatusAndAge(ctx context.Context, statuses []TaskStatus, olderThan time.Time) ([]CrawlTask, error)
	CountByStatus(ctx context.Context, status TaskStatus) (int, error)

	UpsertPage(ctx context.Context, page CrawledPage) error
	CountPages(ctx context.Context) (int, error)

	AppendIndexFailure(ctx context.Context, rec IndexFailureRecord) error
	UpsertNodeHeartbeat(ctx context.Context, hb NodeHeartbeat) error
	AppendSearchHistory(ctx context.Context, rec SearchHistoryRecord) error
}
