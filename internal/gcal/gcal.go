// Package gcal creates follow-up reminders on Google Calendar after an
// application is submitted.
package gcal

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// DefaultReminderDelay is how far out the follow-up reminder lands.
const DefaultReminderDelay = 7 * 24 * time.Hour

// Scheduler books follow-up reminders.
type Scheduler interface {
	ScheduleFollowup(ctx context.Context, company, role string, when time.Time) (string, error)
}

// CalendarScheduler implements Scheduler against Google Calendar.
type CalendarScheduler struct {
	service    *calendar.Service
	calendarID string
}

// NewCalendarScheduler builds a Calendar client from a service-account
// credentials file. calendarID defaults to "primary".
func NewCalendarScheduler(ctx context.Context, credentialsPath, calendarID string) (*CalendarScheduler, error) {
	credentials, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentials, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &CalendarScheduler{service: service, calendarID: calendarID}, nil
}

// ScheduleFollowup creates a 30-minute reminder event and returns its link.
func (s *CalendarScheduler) ScheduleFollowup(ctx context.Context, company, role string, when time.Time) (string, error) {
	event := &calendar.Event{
		Summary:     fmt.Sprintf("Follow up: %s at %s", role, company),
		Description: fmt.Sprintf("Check in on the %s application at %s.", role, company),
		Start:       &calendar.EventDateTime{DateTime: when.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: when.Add(30 * time.Minute).Format(time.RFC3339)},
	}

	created, err := s.service.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return created.HtmlLink, nil
}
