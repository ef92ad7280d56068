package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// CalendarReminders writes follow-up reminders as all-day events.
type CalendarReminders struct {
	svc        *calendar.Service
	calendarID string
	timeZone   string
}

func NewCalendarReminders(svc *calendar.Service, calendarID, timeZone string) *CalendarReminders {
	return &CalendarReminders{svc: svc, calendarID: calendarID, timeZone: timeZone}
}

func (c *CalendarReminders) CreateReminder(ctx context.Context, summary string, day time.Time) (string, error) {
	ev := &calendar.Event{
		Summary: summary,
		Start:   &calendar.EventDateTime{Date: day.Format("2006-01-02"), TimeZone: c.timeZone},
		End:     &calendar.EventDateTime{Date: day.AddDate(0, 0, 1).Format("2006-01-02"), TimeZone: c.timeZone},
	}
	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event %q: %w", summary, err)
	}
	return created.HtmlLink, nil
}

// CancelReminders deletes events whose summary matches exactly. The text
// search narrows the listing; the exact comparison avoids deleting
// "Call Juana" when cancelling "Call Juan".
func (c *CalendarReminders) CancelReminders(ctx context.Context, summary string) (int, error) {
	list, err := c.svc.Events.List(c.calendarID).Q(summary).SingleEvents(true).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("list events %q: %w", summary, err)
	}
	n := 0
	for _, ev := range list.Items {
		if ev.Summary != summary {
			continue
		}
		if err := c.svc.Events.Delete(c.calendarID, ev.Id).Context(ctx).Do(); err != nil {
			return n, fmt.Errorf("delete event %s: %w", ev.Id, err)
		}
		n++
	}
	return n, nil
}
