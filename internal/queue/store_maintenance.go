package queue

import (
	"context"
	"fmt"
	"time"
)

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM render_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates job counts for summary output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch {
		case status == StatusPending:
			health.Pending += count
		case status == StatusFailed, status == StatusCancelled:
			health.Failed += count
		case status == StatusCompleted:
			health.Completed += count
		case status.IsProcessing():
			health.Processing += count
		}
	}
	return health, nil
}

// FailInterrupted marks jobs still in a processing status as failed unless
// active reports that their render is still running. A nil active treats
// every processing job as abandoned.
func (s *Store) FailInterrupted(ctx context.Context, active func(*Job) bool) (int64, error) {
	statuses := []Status{StatusPreparing, StatusRecording, StatusFinalizing}
	jobs, err := s.List(ctx, statuses...)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}
	var failed int64
	for _, job := range jobs {
		if active != nil && active(job) {
			continue
		}
		args := []any{StatusFailed, InterruptedReason, time.Now().UTC().Format(time.RFC3339Nano), job.ID}
		for _, status := range statuses {
			args = append(args, status)
		}
		res, err := s.execWithRetry(
			ctx,
			`UPDATE render_jobs SET status = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND status IN (`+makePlaceholders(len(statuses))+`)`,
			args...,
		)
		if err != nil {
			return failed, fmt.Errorf("fail interrupted job %d: %w", job.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return failed, err
		}
		failed += n
	}
	return failed, nil
}

// Remove deletes a single job. Processing jobs are left in place.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM render_jobs WHERE id = ? AND status NOT IN (?, ?, ?)`,
		id, StatusPreparing, StatusRecording, StatusFinalizing,
	)
	if err != nil {
		return false, fmt.Errorf("remove job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ClearFinished deletes completed, failed, and cancelled jobs.
func (s *Store) ClearFinished(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM render_jobs WHERE status IN (?, ?, ?)`,
		StatusCompleted, StatusFailed, StatusCancelled,
	)
	if err != nil {
		return 0, fmt.Errorf("clear finished jobs: %w", err)
	}
	return res.RowsAffected()
}

// ClearAll deletes every job regardless of status.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM render_jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}
