package calendar

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmemo/internal/models"
)

var calNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func timed(t time.Time) *time.Time { return &t }

func TestGenerateICSEmitsEnabledRemindersOnly(t *testing.T) {
	event := models.Event{
		ID: "e1", Title: "Ship container", Category: models.CategoryShipping,
		StartTime: timed(calNow), StartReminderEnabled: true,
		Deadline: timed(calNow.Add(time.Hour)), DeadlineReminderEnabled: false,
		Steps: []models.Step{
			{ID: "s1", Content: "Issue the PI", Order: 0, ScheduledTime: timed(calNow), ReminderEnabled: true},
			{ID: "s2", Content: "No alarm", Order: 1, ScheduledTime: timed(calNow)},
			{ID: "s3", Content: "No schedule", Order: 2, ReminderEnabled: true},
		},
	}

	ics := GenerateICS([]models.Event{event})

	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Contains(t, ics, "UID:e1-start@eventmemo")
	assert.Contains(t, ics, "UID:e1-step-s1@eventmemo")
	assert.NotContains(t, ics, "e1-deadline")
	assert.Contains(t, ics, "SUMMARY:Ship container - start")
	assert.Contains(t, ics, "CATEGORIES:shipping")
	assert.Contains(t, ics, "TRIGGER:-PT15M")
	assert.Contains(t, ics, "BEGIN:VALARM")
}

func TestGenerateICSEmptyCollection(t *testing.T) {
	ics := GenerateICS(nil)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.NotContains(t, ics, "BEGIN:VEVENT")
}

func TestGenerateSingleEventICS(t *testing.T) {
	event := models.Event{
		ID: "e1", Title: "Review", Category: models.CategoryMeeting,
		Deadline: timed(calNow), DeadlineReminderEnabled: true,
	}

	ics := GenerateSingleEventICS(event)
	assert.Equal(t, 1, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Contains(t, ics, "UID:e1-deadline@eventmemo")
}

func TestGoogleCalendarURL(t *testing.T) {
	event := models.Event{
		Title: "Review", Description: "Agenda", Category: models.CategoryMeeting,
		StartTime: timed(calNow), Deadline: timed(calNow.Add(time.Hour)),
	}

	raw := GoogleCalendarURL(event)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "calendar.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Review", q.Get("text"))
	assert.Equal(t, "meeting", q.Get("location"))
	assert.Equal(t, "20250615T120000Z/20250615T130000Z", q.Get("dates"))
}

func TestCalendarURLSynthesizedWindow(t *testing.T) {
	startOnly := models.Event{Title: "Start only", StartTime: timed(calNow)}
	u, err := url.Parse(GoogleCalendarURL(startOnly))
	require.NoError(t, err)
	assert.Equal(t, "20250615T120000Z/20250615T130000Z", u.Query().Get("dates"))

	deadlineOnly := models.Event{Title: "Deadline only", Deadline: timed(calNow)}
	u, err = url.Parse(OutlookCalendarURL(deadlineOnly))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15T11:00:00Z", u.Query().Get("startdt"))
	assert.Equal(t, "2025-06-15T12:00:00Z", u.Query().Get("enddt"))
}

func TestCalendarURLNoSchedule(t *testing.T) {
	event := models.Event{Title: "Unscheduled"}

	u, err := url.Parse(GoogleCalendarURL(event))
	require.NoError(t, err)
	assert.Empty(t, u.Query().Get("dates"))
	assert.Equal(t, "Unscheduled", u.Query().Get("text"))
}
