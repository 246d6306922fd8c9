package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const recordColumns = "id, job_id, class, scene_name, entry_point, quality, frame_rate, format, command, state, artifact_path, error_message, created_at, updated_at, completed_at"

// NewJob describes a job at dispatch time.
type NewJob struct {
	Class      string
	SceneName  string
	EntryPoint string
	Quality    string
	FrameRate  int
	Format     string
	Command    string
}

// Begin inserts a running record for a freshly dispatched job and returns it.
// The generated job identifier doubles as the external handle for the job.
func (s *Store) Begin(ctx context.Context, job NewJob) (*Record, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	jobID := uuid.NewString()

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO job_history (
            job_id, class, scene_name, entry_point, quality, frame_rate,
            format, command, state, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		jobID,
		job.Class,
		nullableString(job.SceneName),
		nullableString(job.EntryPoint),
		nullableString(job.Quality),
		job.FrameRate,
		nullableString(job.Format),
		nullableString(job.Command),
		StateRunning,
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

// Finish transitions a job to a terminal state, recording the artifact or
// error alongside the completion timestamp.
func (s *Store) Finish(ctx context.Context, jobID string, state State, artifactPath, errorMessage string) error {
	if !state.Terminal() {
		return fmt.Errorf("state %q is not terminal", state)
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE job_history SET state = ?, artifact_path = ?, error_message = ?, updated_at = ?, completed_at = ?
         WHERE job_id = ?`,
		state,
		nullableString(artifactPath),
		nullableString(errorMessage),
		timestamp,
		timestamp,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}
	return nil
}

// GetByID fetches a record by row identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM job_history WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// GetByJobID fetches a record by job identifier.
func (s *Store) GetByJobID(ctx context.Context, jobID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM job_history WHERE job_id = ?`, jobID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record by job id: %w", err)
	}
	return record, nil
}

// List returns the most recent records, newest first. A limit <= 0 returns
// everything.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM job_history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Running returns all records still in the running state.
func (s *Store) Running(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM job_history WHERE state = ? ORDER BY id`, StateRunning)
	if err != nil {
		return nil, fmt.Errorf("list running records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CloseStale fails every record still marked running. Called at daemon
// startup and shutdown so a crash never leaves phantom running jobs behind.
func (s *Store) CloseStale(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE job_history SET state = ?, error_message = ?, updated_at = ?, completed_at = ?
         WHERE state = ?`,
		StateFailed,
		DaemonStopMessage,
		timestamp,
		timestamp,
		StateRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("close stale records: %w", err)
	}
	return res.RowsAffected()
}

// Summarize aggregates record counts per lifecycle state.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(1) FROM job_history GROUP BY state`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize records: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var (
			state State
			count int
		)
		if err := rows.Scan(&state, &count); err != nil {
			return Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		summary.Total += count
		switch state {
		case StateRunning:
			summary.Running = count
		case StateSucceeded:
			summary.Succeeded = count
		case StateFailed:
			summary.Failed = count
		case StateTimedOut:
			summary.TimedOut = count
		case StateCancelled:
			summary.Cancelled = count
		}
	}
	return summary, rows.Err()
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.execWithRetry(ctx, `DELETE FROM job_history`)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		jobID        string
		class        string
		sceneName    sql.NullString
		entryPoint   sql.NullString
		quality      sql.NullString
		frameRate    sql.NullInt64
		format       sql.NullString
		command      sql.NullString
		stateStr     string
		artifactPath sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobID,
		&class,
		&sceneName,
		&entryPoint,
		&quality,
		&frameRate,
		&format,
		&command,
		&stateStr,
		&artifactPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:           id,
		JobID:        jobID,
		Class:        class,
		SceneName:    sceneName.String,
		EntryPoint:   entryPoint.String,
		Quality:      quality.String,
		FrameRate:    int(frameRate.Int64),
		Format:       format.String,
		Command:      command.String,
		State:        State(stateStr),
		ArtifactPath: artifactPath.String,
		ErrorMessage: errorMessage.String,
		CreatedAt:    parseTimestamp(createdRaw),
		UpdatedAt:    parseTimestamp(updatedRaw),
		CompletedAt:  parseTimestamp(completedRaw),
	}
	return record, nil
}

func parseTimestamp(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
