package broker

import (
	"context"
	"sync"
)

// InMemoryBroker is the in-memory Broker fake used in tests and
// single-process development runs (spec Design Notes §9).
type InMemoryBroker struct {
	mu       sync.Mutex
	messages []CrawlMessage
	notify   chan struct{}
	closed   bool
}

func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{notify: make(chan struct{}, 1)}
}

func (b *InMemoryBroker) Enqueue(_ context.Context, msg CrawlMessage) error {
	b.mu.Lock()
	b.messages = append(b.messages, msg)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

func (b *InMemoryBroker) pop() (CrawlMessage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return CrawlMessage{}, false
	}
	msg := b.messages[0]
	b.messages = b.messages[1:]
	return msg, true
}

func (b *InMemoryBroker) Consume(ctx context.Context, handler func(context.Context, CrawlMessage) error) error {
	for {
		msg, ok := b.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-b.notify:
				continue
			}
		}
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

func (b *InMemoryBroker) Ping(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	return nil
}

func (b *InMemoryBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Len reports how many messages are currently queued (test helper).
func (b *InMemoryBroker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}
