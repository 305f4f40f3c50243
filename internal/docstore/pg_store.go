package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the production Store adapter backed by Postgres via pgx.
// Schema (no migration files ship with this repository):
//
//	task_status(task_id pk, seed_url, depth, politeness_seconds, created_at,
//	  started_at, finished_at, status, error, origin_task_id)
//	crawled_pages(url pk, text, depth, timestamp)
//	index_failures(doc_id, body, error, retry_count, timestamp)
//	node_status(node_id pk, active, last_seen)
//	search_history(keywords, mode, size, results, timestamp)
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(ctx context.Context, connString string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("docstore: connect: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

func (s *PGStore) InsertTask(ctx context.Context, task CrawlTask) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO task_status
			(task_id, seed_url, depth, politeness_seconds, created_at, status, origin_task_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, task.TaskID, task.SeedURL, task.Depth, task.PolitenessSeconds, task.CreatedAt, task.Status, nullableString(task.OriginTaskID))
	if err != nil {
		return fmt.Errorf("docstore: insert task: %w", err)
	}
	return nil
}

func (s *PGStore) GetTask(ctx context.Context, taskID string) (CrawlTask, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT task_id, seed_url, depth, politeness_seconds, created_at,
		       started_at, finished_at, status, error, origin_task_id
		FROM task_status WHERE task_id = $1
	`, taskID)

	var task CrawlTask
	var errMsg, originTaskID *string
	err := row.Scan(&task.TaskID, &task.SeedURL, &task.Depth, &task.PolitenessSeconds,
		&task.CreatedAt, &task.StartedAt, &task.FinishedAt, &task.Status, &errMsg, &originTaskID)
	if err == pgx.ErrNoRows {
		return CrawlTask{}, ErrTaskNotFound
	}
	if err != nil {
		return CrawlTask{}, fmt.Errorf("docstore: get task: %w", err)
	}
	if errMsg != nil {
		task.Error = *errMsg
	}
	if originTaskID != nil {
		task.OriginTaskID = *originTaskID
	}
	return task, nil
}

func (s *PGStore) TransitionTaskStatus(ctx context.Context, taskID string, fromStatus, toStatus TaskStatus, startedAt, finishedAt *time.Time, errMsg string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE task_status
		SET status = $1,
		    started_at = COALESCE($2, started_at),
		    finished_at = COALESCE($3, finished_at),
		    error = COALESCE(NULLIF($4, ''), error)
		WHERE task_id = $5 AND status = $6
	`, toStatus, startedAt, finishedAt, errMsg, taskID, fromStatus)
	if err != nil {
		return false, fmt.Errorf("docstore: transition task: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) QueryByStatusAndAge(ctx context.Context, statuses []TaskStatus, olderThan time.Time) ([]CrawlTask, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT task_id, seed_url, depth, politeness_seconds, created_at,
		       started_at, finished_at, status, error, origin_task_id
		FROM task_status
		WHERE status = ANY($1) AND created_at < $2
	`, statuses, olderThan)
	if err != nil {
		return nil, fmt.Errorf("docstore: query stale tasks: %w", err)
	}
	defer rows.Close()

	var out []CrawlTask
	for rows.Next() {
		var task CrawlTask
		var errMsg, originTaskID *string
		if err := rows.Scan(&task.TaskID, &task.SeedURL, &task.Depth, &task.PolitenessSeconds,
			&task.CreatedAt, &task.StartedAt, &task.FinishedAt, &task.Status, &errMsg, &originTaskID); err != nil {
			return nil, fmt.Errorf("docstore: scan stale task: %w", err)
		}
		if errMsg != nil {
			task.Error = *errMsg
		}
		if originTaskID != nil {
			task.OriginTaskID = *originTaskID
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (s *PGStore) CountByStatus(ctx context.Context, status TaskStatus) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM task_status WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("docstore: count by status: %w", err)
	}
	return count, nil
}

func (s *PGStore) UpsertPage(ctx context.Context, page CrawledPage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO crawled_pages (url, text, depth, timestamp)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO UPDATE SET text = $2, depth = $3, timestamp = $4
	`, page.URL, page.Text, page.Depth, page.Timestamp)
	if err != nil {
		return fmt.Errorf("docstore: upsert page: %w", err)
	}
	return nil
}

func (s *PGStore) CountPages(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM crawled_pages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("docstore: count pages: %w", err)
	}
	return count, nil
}

func (s *PGStore) AppendIndexFailure(ctx context.Context, rec IndexFailureRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO index_failures (doc_id, body, error, retry_count, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.DocID, rec.Body, rec.Error, rec.RetryCount, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("docstore: append index failure: %w", err)
	}
	return nil
}

func (s *PGStore) UpsertNodeHeartbeat(ctx context.Context, hb NodeHeartbeat) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO node_status (node_id, active, last_seen)
		VALUES ($1, $2, $3)
		ON CONFLICT (node_id) DO UPDATE SET active = $2, last_seen = $3
	`, hb.NodeID, hb.Active, hb.LastSeen)
	if err != nil {
		return fmt.Errorf("docstore: upsert heartbeat: %w", err)
	}
	return nil
}

func (s *PGStore) AppendSearchHistory(ctx context.Context, rec SearchHistoryRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_history (keywords, mode, size, results, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.Keywords, rec.Mode, rec.Size, rec.Results, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("docstore: append search history: %w", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
