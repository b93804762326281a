package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, title, composition_path, output_path, status, scene_count, captions, timing_mode, correlation_id, progress_stage, progress_percent, progress_message, error_message, frames_rendered, placeholder_count, truncated, timings_json, created_at, updated_at, started_at, completed_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id               int64
		title            sql.NullString
		compositionPath  sql.NullString
		outputPath       sql.NullString
		statusStr        string
		sceneCount       sql.NullInt64
		captions         sql.NullInt64
		timingMode       sql.NullString
		correlationID    sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		errorMessage     sql.NullString
		framesRendered   sql.NullInt64
		placeholderCount sql.NullInt64
		truncated        sql.NullInt64
		timingsJSON      sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		startedRaw       sql.NullString
		completedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&compositionPath,
		&outputPath,
		&statusStr,
		&sceneCount,
		&captions,
		&timingMode,
		&correlationID,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&errorMessage,
		&framesRendered,
		&placeholderCount,
		&truncated,
		&timingsJSON,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:               id,
		Title:            title.String,
		CompositionPath:  compositionPath.String,
		OutputPath:       outputPath.String,
		Status:           Status(statusStr),
		SceneCount:       int(sceneCount.Int64),
		Captions:         captions.Valid && captions.Int64 != 0,
		TimingMode:       timingMode.String,
		CorrelationID:    correlationID.String,
		ProgressStage:    progressStage.String,
		ProgressPercent:  progressPercent.Float64,
		ProgressMessage:  progressMessage.String,
		ErrorMessage:     errorMessage.String,
		FramesRendered:   int(framesRendered.Int64),
		PlaceholderCount: int(placeholderCount.Int64),
		Truncated:        truncated.Valid && truncated.Int64 != 0,
		TimingsJSON:      timingsJSON.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
