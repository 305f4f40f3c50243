// Package supervisor implements C9: two cooperating long-running
// routines, heartbeat and stale-task scan, that observe and repair the
// task lifecycle store.
package supervisor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/gridcrawl/internal/broker"
	"github.com/rohmanhakim/gridcrawl/internal/dispatcher"
	"github.com/rohmanhakim/gridcrawl/internal/docstore"
	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/internal/searchindex"
	"github.com/rohmanhakim/gridcrawl/pkg/timeutil"
)

type Supervisor struct {
	broker     broker.Broker
	index      searchindex.Index
	store      docstore.Store
	dispatcher *dispatcher.Dispatcher
	clock      timeutil.Clock
	sink       obslog.Sink

	heartbeatInterval time.Duration
	staleScanInterval time.Duration
	staleAfter        time.Duration

	nodeID string
}

func New(
	b broker.Broker,
	index searchindex.Index,
	store docstore.Store,
	d *dispatcher.Dispatcher,
	clock timeutil.Clock,
	sink obslog.Sink,
	heartbeatInterval, staleScanInterval, staleAfter time.Duration,
) *Supervisor {
	return &Supervisor{
		broker:            b,
		index:             index,
		store:             store,
		dispatcher:        d,
		clock:             clock,
		sink:              sink,
		heartbeatInterval: heartbeatInterval,
		staleScanInterval: staleScanInterval,
		staleAfter:        staleAfter,
		nodeID:            uuid.NewString(),
	}
}

// Run starts both routines and blocks until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	done := make(chan struct{}, 2)
	go func() { s.heartbeatLoop(ctx); done <- struct{}{} }()
	go func() { s.staleScanLoop(ctx); done <- struct{}{} }()
	<-done
	<-done
}

func (s *Supervisor) heartbeatLoop(ctx context.Context) {
	for {
		s.heartbeatOnce(ctx)
		if waitOrDone(ctx, s.clock, s.heartbeatInterval) {
			return
		}
	}
}

// heartbeatOnce is purely observational (spec §4.9): it pings the broker
// and the index endpoint. The broker result is stored as this node's
// heartbeat; the index result is not stored, and a failed index ping is
// only reported to the sink.
func (s *Supervisor) heartbeatOnce(ctx context.Context) {
	active := s.broker.Ping(ctx) == nil
	_ = s.store.UpsertNodeHeartbeat(ctx, docstore.NodeHeartbeat{
		NodeID:   s.nodeID,
		Active:   active,
		LastSeen: s.clock.Now(),
	})

	if err := s.index.Ping(ctx); err != nil && s.sink != nil {
		s.sink.RecordError("supervisor", "heartbeatOnce.indexPing", obslog.CauseNetworkFailure, err)
	}
}

func (s *Supervisor) staleScanLoop(ctx context.Context) {
	for {
		s.staleScanOnce(ctx)
		if waitOrDone(ctx, s.clock, s.staleScanInterval) {
			return
		}
	}
}

// staleScanOnce implements spec §4.9's stale task scan: any task stuck in
// queued/started older than staleAfter is marked timeout and requeued as
// a fresh, linked task record.
func (s *Supervisor) staleScanOnce(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.staleAfter)
	stale, err := s.store.QueryByStatusAndAge(ctx, []docstore.TaskStatus{docstore.StatusQueued, docstore.StatusStarted}, cutoff)
	if err != nil {
		if s.sink != nil {
			s.sink.RecordError("supervisor", "staleScanOnce.Query", obslog.CauseStorageFailure, err)
		}
		return
	}

	for _, task := range stale {
		finishedAt := s.clock.Now()
		ok, err := s.store.TransitionTaskStatus(ctx, task.TaskID, task.Status, docstore.StatusTimeout, nil, &finishedAt, "")
		if err != nil || !ok {
			continue
		}

		if _, err := s.dispatcher.Requeue(ctx, task.SeedURL, task.Depth, task.PolitenessSeconds, task.TaskID); err != nil && s.sink != nil {
			s.sink.RecordError("supervisor", "staleScanOnce.Requeue", obslog.CauseInvariantViolation, err, obslog.A(obslog.AttrTaskID, task.TaskID))
		}
	}
}

// waitOrDone sleeps for d via the injectable clock, returning true if ctx
// was cancelled first.
func waitOrDone(ctx context.Context, clock timeutil.Clock, d time.Duration) bool {
	clock.Sleep(ctx, d)
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// StaleScanOnceForTest exposes staleScanOnce to external tests, mirroring
// this repo's Set*ForTest convention for exercising unexported behavior
// without running the full Run loop.
func StaleScanOnceForTest(s *Supervisor, ctx context.Context) {
	s.staleScanOnce(ctx)
}

// HeartbeatOnceForTest exposes heartbeatOnce to external tests.
func HeartbeatOnceForTest(s *Supervisor, ctx context.Context) {
	s.heartbeatOnce(ctx)
}
