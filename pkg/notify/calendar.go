package notify

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const parisTZ = "Europe/Paris"

// GoogleCalendar books callbacks as events on the advisors' shared calendar.
type GoogleCalendar struct {
	svc        *calendar.Service
	calendarID string
}

// NewGoogleCalendar builds a scheduler authenticated with a service account
// credentials file. calendarID is the shared advisor calendar, typically a
// group calendar address.
func NewGoogleCalendar(ctx context.Context, credentialsFile, calendarID string) (*GoogleCalendar, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &GoogleCalendar{svc: svc, calendarID: calendarID}, nil
}

var _ Scheduler = (*GoogleCalendar)(nil)

func (g *GoogleCalendar) Schedule(ctx context.Context, cb Callback) (string, error) {
	dur := cb.Duration
	if dur <= 0 {
		dur = 30 * time.Minute
	}
	event := &calendar.Event{
		Summary:     fmt.Sprintf("Rappel conseiller — %s", cb.ClientName),
		Description: fmt.Sprintf("Motif : %s\nTéléphone : %s", cb.Reason, cb.Phone),
		Start: &calendar.EventDateTime{
			DateTime: cb.At.Format(time.RFC3339),
			TimeZone: parisTZ,
		},
		End: &calendar.EventDateTime{
			DateTime: cb.At.Add(dur).Format(time.RFC3339),
			TimeZone: parisTZ,
		},
	}
	if cb.ClientEmail != "" {
		event.Attendees = []*calendar.EventAttendee{{Email: cb.ClientEmail}}
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar insert: %w", err)
	}
	return created.Id, nil
}
