// Package docstore implements C7: the durable task lifecycle store, plus
// the rest of the document-store-backed data model (crawled pages, index
// failures, node heartbeats, search history).
package docstore

import "time"

type TaskStatus string

const (
	StatusQueued    TaskStatus = "queued"
	StatusStarted   TaskStatus = "started"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
	StatusTimeout   TaskStatus = "timeout"
	StatusRequeued  TaskStatus = "requeued"
)

// CrawlTask is the durable lifecycle record for one crawl task (spec §3,
// CrawlTask). Never deleted; requeues create a new record linked back via
// OriginTaskID.
type CrawlTask struct {
	TaskID            string
	SeedURL           string
	Depth             int
	PolitenessSeconds float64
	CreatedAt         time.Time
	StartedAt         *time.Time
	FinishedAt        *time.Time
	Status            TaskStatus
	Error             string
	OriginTaskID      string
}

// CrawledPage is upserted by URL (spec §3, CrawledPage).
type CrawledPage struct {
	URL       string
	Text      string
	Depth     int
	Timestamp time.Time
}

// IndexFailureRecord is the dead-letter entry written after exhausting
// index submission retries (spec §3, IndexFailure).
type IndexFailureRecord struct {
	DocID      string
	Body       string
	Error      string
	RetryCount int
	Timestamp  time.Time
}

// NodeHeartbeat is the observational record the supervisor writes on every
// heartbeat tick (spec §3, NodeHeartbeat).
type NodeHeartbeat struct {
	NodeID   string
	Active   bool
	LastSeen time.Time
}

// SearchHistoryRecord captures one GET /api/search invocation (spec §4.10).
type SearchHistoryRecord struct {
	Keywords  string
	Mode      string
	Size      int
	Results   []string
	Timestamp time.Time
}
