package calendar

import (
	"net/url"
	"time"

	"eventmemo/internal/models"
)

// fallbackWindow pads the missing side of a start/deadline pair when
// building a calendar link.
const fallbackWindow = time.Hour

// GoogleCalendarURL builds a Google Calendar event-template deep link for
// the event. When only one of start/deadline is set, the other side of the
// window is synthesized an hour away.
func GoogleCalendarURL(event models.Event) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", event.Title)
	q.Set("details", event.Description)
	q.Set("location", string(event.Category))

	if start, end, ok := window(event); ok {
		q.Set("dates", googleTime(start)+"/"+googleTime(end))
	}

	return "https://calendar.google.com/calendar/render?" + q.Encode()
}

// OutlookCalendarURL builds an Outlook web compose deep link for the event.
func OutlookCalendarURL(event models.Event) string {
	q := url.Values{}
	q.Set("subject", event.Title)
	q.Set("body", event.Description)
	q.Set("location", string(event.Category))

	if start, end, ok := window(event); ok {
		q.Set("startdt", start.UTC().Format(time.RFC3339))
		q.Set("enddt", end.UTC().Format(time.RFC3339))
	}

	return "https://outlook.live.com/calendar/0/deeplink/compose?" + q.Encode()
}

// window derives the [start, end] pair from the event's schedule.
func window(event models.Event) (time.Time, time.Time, bool) {
	switch {
	case event.StartTime != nil && event.Deadline != nil:
		return *event.StartTime, *event.Deadline, true
	case event.StartTime != nil:
		return *event.StartTime, event.StartTime.Add(fallbackWindow), true
	case event.Deadline != nil:
		return event.Deadline.Add(-fallbackWindow), *event.Deadline, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// googleTime renders a timestamp in the compact UTC form Google Calendar
// expects (20231210T143000Z).
func googleTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
