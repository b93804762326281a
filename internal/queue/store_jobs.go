package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrJobNotFound is returned when an update targets a missing job.
var ErrJobNotFound = errors.New("job not found")

// NewJob inserts a pending render job.
func (s *Store) NewJob(ctx context.Context, params NewJobParams) (*Job, error) {
	if strings.TrimSpace(params.OutputPath) == "" {
		return nil, errors.New("new job: output path required")
	}
	timingMode := params.TimingMode
	if timingMode == "" {
		timingMode = TimingPerScene
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO render_jobs (
            title, composition_path, output_path, status, scene_count, captions,
            timing_mode, correlation_id, progress_stage, progress_percent,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(params.Title),
		nullableString(params.CompositionPath),
		params.OutputPath,
		StatusPending,
		params.SceneCount,
		boolToInt(params.Captions),
		timingMode,
		nullableString(params.CorrelationID),
		"Queued",
		0.0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. A missing job yields (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM render_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM render_jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateProgress records a progress sample. The first transition into a
// processing status stamps started_at.
func (s *Store) UpdateProgress(ctx context.Context, id int64, progress Progress) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs
         SET status = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
             updated_at = ?,
             started_at = CASE WHEN started_at IS NULL AND ? = 1 THEN ? ELSE started_at END
         WHERE id = ?`,
		progress.Status,
		nullableString(progress.Stage),
		clampPercent(progress.Percent),
		nullableString(progress.Message),
		now,
		boolToInt(progress.Status.IsProcessing()),
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return requireRow(res, id)
}

// MarkCompleted records a finished render.
func (s *Store) MarkCompleted(ctx context.Context, id int64, outcome Outcome) error {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs
         SET status = ?, output_path = COALESCE(?, output_path), progress_stage = ?,
             progress_percent = 100, progress_message = NULL, error_message = NULL,
             frames_rendered = ?, placeholder_count = ?, truncated = ?,
             timings_json = ?, updated_at = ?, completed_at = ?
         WHERE id = ?`,
		StatusCompleted,
		nullableString(outcome.OutputPath),
		"Complete",
		outcome.FramesRendered,
		outcome.PlaceholderCount,
		boolToInt(outcome.Truncated),
		nullableString(outcome.TimingsJSON),
		now.Format(time.RFC3339Nano),
		nullableTime(&now),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return requireRow(res, id)
}

// MarkFailed records a failed or cancelled render. The stage string keeps the
// last reported stage so callers can see where the render stopped.
func (s *Store) MarkFailed(ctx context.Context, id int64, status Status, message string) error {
	if status != StatusFailed && status != StatusCancelled {
		return fmt.Errorf("mark failed: unexpected status %q", status)
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs
         SET status = ?, error_message = ?, progress_message = ?, updated_at = ?, completed_at = ?
         WHERE id = ?`,
		status,
		nullableString(message),
		nullableString(message),
		now.Format(time.RFC3339Nano),
		nullableTime(&now),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrJobNotFound, id)
	}
	return nil
}

func clampPercent(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}
