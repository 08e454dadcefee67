package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/teachkit/packgen/ent"
	"github.com/teachkit/packgen/internal/job"
)

// jobRepo implements JobRepo. The full job, result included, is stored
// as a JSON payload; status and timestamps are lifted into columns for
// listing without decoding.
type jobRepo struct {
	client *ent.Client
	db     *sql.DB
}

func (r *jobRepo) ArchiveJob(ctx context.Context, j job.Job) error {
	if !j.Status.Terminal() {
		return fmt.Errorf("refusing to archive non-terminal job %s (%s)", j.ID, j.Status)
	}

	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", j.ID, err)
	}

	_, err = r.client.JobRecord.Create().
		SetJobID(j.ID).
		SetStatus(string(j.Status)).
		SetPayload(string(payload)).
		SetCreatedAt(j.CreatedAt).
		SetCompletedAt(j.CompletedAt).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save job record: %w", err)
	}
	return nil
}

func (r *jobRepo) GetJob(ctx context.Context, jobID string) (*job.Job, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		"SELECT payload FROM job_records WHERE job_id = ?", jobID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job record: %w", err)
	}

	var j job.Job
	if err := json.Unmarshal([]byte(payload), &j); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &j, nil
}

func (r *jobRepo) ListJobs(ctx context.Context, limit int) ([]JobSummary, error) {
	query := "SELECT job_id, status, created_at, completed_at FROM job_records ORDER BY created_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list job records: %w", err)
	}
	defer rows.Close()

	var out []JobSummary
	for rows.Next() {
		var s JobSummary
		if err := rows.Scan(&s.JobID, &s.Status, &s.CreatedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
