// Package calendarexport turns extracted announcement events into Google
// Calendar entries.
package calendarexport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"print-bot/api/internal/analyze"
)

const (
	untitledEvent  = "（無題）"
	fullTextHeader = "\n\n【プリント原文】\n"
)

// Start times arrive as whatever the model read off the page; these are the
// accepted spellings, tightest first.
var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("calendarexport: unrecognized date/time %q", s)
}

// BuildEvent converts one extracted event into a calendar entry. The title
// falls back to a placeholder when empty; a missing end defaults to one hour
// after the start; fullText, when present, is appended to the notes under a
// fixed header. reminders holds up to two relative offsets in minutes
// (0 = at event time, negative = minutes before); extra entries are ignored.
func BuildEvent(ev analyze.Event, fullText string, reminders []int64) (*calendar.Event, error) {
	start, err := parseWhen(ev.Start)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Hour)
	if ev.End != "" {
		if end, err = parseWhen(ev.End); err != nil {
			return nil, err
		}
	}

	title := strings.TrimSpace(ev.Name)
	if title == "" {
		title = untitledEvent
	}

	notes := strings.TrimSpace(ev.Memo)
	if fullText != "" {
		notes += fullTextHeader + fullText
	}

	out := &calendar.Event{
		Summary:     title,
		Description: notes,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}

	if len(reminders) > 0 {
		if len(reminders) > 2 {
			reminders = reminders[:2]
		}
		overrides := make([]*calendar.EventReminder, 0, len(reminders))
		for _, offset := range reminders {
			// the API counts minutes before the start, so offsets negate
			overrides = append(overrides, &calendar.EventReminder{
				Method:  "popup",
				Minutes: -offset,
			})
		}
		out.Reminders = &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}
	return out, nil
}

// Writer inserts built events into one calendar.
type Writer struct {
	Service    *calendar.Service
	CalendarID string
}

func NewWriter(svc *calendar.Service, calendarID string) *Writer {
	if strings.TrimSpace(calendarID) == "" {
		calendarID = "primary"
	}
	return &Writer{Service: svc, CalendarID: calendarID}
}

// Insert writes the events one by one and returns how many landed before the
// first failure.
func (w *Writer) Insert(ctx context.Context, events []*calendar.Event) (int, error) {
	for i, ev := range events {
		if _, err := w.Service.Events.Insert(w.CalendarID, ev).Context(ctx).Do(); err != nil {
			return i, fmt.Errorf("calendarexport: insert %q: %w", ev.Summary, err)
		}
	}
	return len(events), nil
}
