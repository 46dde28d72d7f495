package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Job statuses advanced by the follow-up subsystem.
const (
	JobStatusApplied    = "applied"
	JobStatusFollowedUp = "followed_up"
	JobStatusClosed     = "closed"
)

// Job is a persisted job application.
type Job struct {
	ID            int64
	Company       string
	Role          string
	JDHash        string
	FitScore      sql.NullInt64
	ResumeUsed    string
	DriveLink     string
	Status        string
	FollowUpCount int
	CreatedAt     string
	UpdatedAt     string
}

// InsertJobParams are the optional fields of a new job row.
type InsertJobParams struct {
	FitScore   *int
	ResumeUsed string
	DriveLink  string
}

// InsertJob inserts a new job row and returns its id.
func (s *Store) InsertJob(ctx context.Context, company, role, jdHash string, params InsertJobParams) (int64, error) {
	now := nowISO()
	var fitScore any
	if params.FitScore != nil {
		fitScore = *params.FitScore
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (company, role, jd_hash, fit_score, resume_used, drive_link, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		company, role, jdHash, fitScore, params.ResumeUsed, params.DriveLink, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert job: %w", err)
	}
	return res.LastInsertId()
}

// GetJob fetches a single job by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetJob(ctx context.Context, jobID int64) (Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, role, jd_hash, fit_score, COALESCE(resume_used, ''),
		        COALESCE(drive_link, ''), status, follow_up_count, created_at, updated_at
		   FROM jobs WHERE id = ?`, jobID)
	return scanJob(row)
}

// JobsNeedingFollowup returns jobs still in 'applied' status created at
// least minAge ago, oldest first.
func (s *Store) JobsNeedingFollowup(ctx context.Context, minAge time.Duration) ([]Job, error) {
	cutoff := time.Now().UTC().Add(-minAge).Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, role, jd_hash, fit_score, COALESCE(resume_used, ''),
		        COALESCE(drive_link, ''), status, follow_up_count, created_at, updated_at
		   FROM jobs
		  WHERE status = ? AND created_at <= ?
		  ORDER BY created_at ASC`, JobStatusApplied, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-up jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJob updates the given columns on a job row. Allowed keys: status,
// follow_up_count, fit_score, drive_link, resume_used.
func (s *Store) UpdateJob(ctx context.Context, jobID int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"status": true, "follow_up_count": true, "fit_score": true,
		"drive_link": true, "resume_used": true,
	}
	setClauses := make([]string, 0, len(fields)+1)
	values := make([]any, 0, len(fields)+2)
	for key, value := range fields {
		if !allowed[key] {
			return fmt.Errorf("refusing to update column %q", key)
		}
		setClauses = append(setClauses, key+" = ?")
		values = append(values, value)
	}
	setClauses = append(setClauses, "updated_at = ?")
	values = append(values, nowISO(), jobID)

	_, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET "+strings.Join(setClauses, ", ")+" WHERE id = ?", values...)
	if err != nil {
		return fmt.Errorf("failed to update job %d: %w", jobID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	err := row.Scan(&job.ID, &job.Company, &job.Role, &job.JDHash, &job.FitScore,
		&job.ResumeUsed, &job.DriveLink, &job.Status, &job.FollowUpCount,
		&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return Job{}, err
	}
	return job, nil
}
