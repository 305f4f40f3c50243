package docstore

import (
	"context"
	"sync"
	"time"
)

// MemStore is the in-memory Store fake used in tests and single-process
// development runs (spec Design Notes §9: "dependency-injected handles,
// not singletons").
type MemStore struct {
	mu             sync.Mutex
	tasks          map[string]CrawlTask
	pages          map[string]CrawledPage
	indexFailures  []IndexFailureRecord
	heartbeats     map[string]NodeHeartbeat
	searchHistory  []SearchHistoryRecord
}

func NewMemStore() *MemStore {
	return &MemStore{
		tasks:      make(map[string]CrawlTask),
		pages:      make(map[string]CrawledPage),
		heartbeats: make(map[string]NodeHeartbeat),
	}
}

func (s *MemStore) InsertTask(_ context.Context, task CrawlTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.TaskID]; exists {
		return ErrTaskExists
	}
	s.tasks[task.TaskID] = task
	return nil
}

func (s *MemStore) GetTask(_ context.Context, taskID string) (CrawlTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return CrawlTask{}, ErrTaskNotFound
	}
	return task, nil
}

func (s *MemStore) TransitionTaskStatus(_ context.Context, taskID string, fromStatus, toStatus TaskStatus, startedAt, finishedAt *time.Time, errMsg string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return false, ErrTaskNotFound
	}
	if task.Status != fromStatus {
		// Another writer already moved this task past fromStatus: the
		// first expected writer wins, this call is a no-op.
		return false, nil
	}

	task.Status = toStatus
	if startedAt != nil {
		task.StartedAt = startedAt
	}
	if finishedAt != nil {
		task.FinishedAt = finishedAt
	}
	if errMsg != "" {
		task.Error = errMsg
	}
	s.tasks[taskID] = task
	return true, nil
}

func (s *MemStore) QueryByStatusAndAge(_ context.Context, statuses []TaskStatus, olderThan time.Time) ([]CrawlTask, error) {
	want := make(map[TaskStatus]struct{}, len(statuses))
	for _, st := range statuses {
		want[st] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CrawlTask
	for _, task := range s.tasks {
		if _, ok := want[task.Status]; !ok {
			continue
		}
		if task.CreatedAt.Before(olderThan) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *MemStore) CountByStatus(_ context.Context, status TaskStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, task := range s.tasks {
		if task.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) UpsertPage(_ context.Context, page CrawledPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.URL] = page
	return nil
}

func (s *MemStore) CountPages(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages), nil
}

func (s *MemStore) AppendIndexFailure(_ context.Context, rec IndexFailureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexFailures = append(s.indexFailures, rec)
	return nil
}

func (s *MemStore) IndexFailures() []IndexFailureRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]IndexFailureRecord, len(s.indexFailures))
	copy(out, s.indexFailures)
	return out
}

func (s *MemStore) UpsertNodeHeartbeat(_ context.Context, hb NodeHeartbeat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats[hb.NodeID] = hb
	return nil
}

func (s *MemStore) AppendSearchHistory(_ context.Context, rec SearchHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchHistory = append(s.searchHistory, rec)
	return nil
}

func (s *MemStore) SearchHistory() []SearchHistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SearchHistoryRecord, len(s.searchHistory))
	copy(out, s.searchHistory)
	return out
}
