// Package broker implements the at-least-once message channel the
// dispatcher enqueues crawl tasks onto and workers consume from (spec §5,
// Broker). It is abstracted behind an interface so the crawl engine and
// supervisor never depend on the wire format of a specific message queue.
package broker

import "context"

// CrawlMessage is the JSON payload carried on the "crawl" queue.
type CrawlMessage struct {
	TaskID     string  `json:"task_id"`
	URL        string  `json:"url"`
	Depth      int     `json:"depth"`
	Politeness float64 `json:"politeness"`
}

// Broker is the port every producer (dispatcher, supervisor requeue) and
// consumer (worker) depends on.
type Broker interface {
	Enqueue(ctx context.Context, msg CrawlMessage) error
	// Consume delivers messages to handler until ctx is cancelled or
	// handler returns a non-nil error, at which point Consume returns.
	Consume(ctx context.Context, handler func(context.Context, CrawlMessage) error) error
	// Ping verifies connectivity to the broker (spec §4.9, Heartbeat).
	Ping(ctx context.Context) error
}
