// Package followup scans persisted applications and drafts check-in notes
// for the ones that have gone quiet.
package followup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/karan/inbox-agent/internal/llm"
	"github.com/karan/inbox-agent/internal/prompts"
	"github.com/karan/inbox-agent/internal/store"
)

const (
	// DefaultMinAge is how long an application sits before the first
	// follow-up.
	DefaultMinAge = 7 * 24 * time.Hour

	// MaxFollowups per job; after this the job is closed out rather than
	// nagged forever.
	MaxFollowups = 2
)

// Note is one drafted follow-up for a due job.
type Note struct {
	JobID   int64
	Company string
	Role    string
	Text    string
	Usage   llm.Usage
}

// Scanner finds due jobs and drafts their follow-up notes.
type Scanner struct {
	Store  *store.Store
	Client llm.Client
	MinAge time.Duration
	Logger zerolog.Logger
}

// Scan drafts a note for every job still in 'applied' older than MinAge,
// advancing follow_up_count as it goes. Jobs at the follow-up ceiling are
// closed instead. A draft failure skips that job and moves on.
func (s *Scanner) Scan(ctx context.Context) ([]Note, error) {
	minAge := s.MinAge
	if minAge <= 0 {
		minAge = DefaultMinAge
	}

	jobs, err := s.Store.JobsNeedingFollowup(ctx, minAge)
	if err != nil {
		return nil, fmt.Errorf("follow-up scan failed: %w", err)
	}

	var notes []Note
	for _, job := range jobs {
		if job.FollowUpCount >= MaxFollowups {
			if err := s.Store.UpdateJob(ctx, job.ID, map[string]any{"status": store.JobStatusClosed}); err != nil {
				s.Logger.Error().Err(err).Int64("job_id", job.ID).Msg("failed to close job")
			}
			continue
		}

		note, err := s.draftNote(ctx, job)
		if err != nil {
			s.Logger.Error().Err(err).Int64("job_id", job.ID).Msg("follow-up draft failed")
			continue
		}

		err = s.Store.UpdateJob(ctx, job.ID, map[string]any{
			"status":          store.JobStatusFollowedUp,
			"follow_up_count": job.FollowUpCount + 1,
		})
		if err != nil {
			s.Logger.Error().Err(err).Int64("job_id", job.ID).Msg("failed to record follow-up")
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (s *Scanner) draftNote(ctx context.Context, job store.Job) (Note, error) {
	system := prompts.MustLoad("drafts.json", "followup_note", 1)
	age := "over a week"
	if t, err := time.Parse(time.RFC3339, job.CreatedAt); err == nil {
		age = fmt.Sprintf("%d days", int(time.Since(t).Hours()/24))
	}
	user := fmt.Sprintf("Company: %s\nRole: %s\nApplied: %s ago\nFollow-ups already sent: %d\n",
		job.Company, job.Role, age, job.FollowUpCount)

	resp, err := s.Client.Complete(ctx, system, user, false)
	if err != nil {
		return Note{}, err
	}
	return Note{
		JobID:   job.ID,
		Company: job.Company,
		Role:    job.Role,
		Text:    resp.Text,
		Usage:   resp.Usage,
	}, nil
}
