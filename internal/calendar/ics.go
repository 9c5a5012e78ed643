// Package calendar renders read-only snapshots of the event store as ICS
// documents and calendar deep links. It never mutates the store.
package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventmemo/internal/models"
)

// entryDuration is the default VEVENT duration for point-in-time reminders.
const entryDuration = 30 * time.Minute

// alarmTrigger fires the calendar alarm 15 minutes before the entry.
const alarmTrigger = "-PT15M"

// GenerateICS builds an ICS document with one VEVENT per enabled reminder
// source: event start, event deadline, and scheduled steps.
func GenerateICS(events []models.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//eventmemo//EN")
	cal.SetCalscale("GREGORIAN")

	for _, event := range events {
		if event.StartTime != nil && event.StartReminderEnabled {
			addEntry(cal, event.ID+"-start", event.Title+" - start", event.Description, *event.StartTime, event.Category, "")
		}
		if event.Deadline != nil && event.DeadlineReminderEnabled {
			addEntry(cal, event.ID+"-deadline", event.Title+" - deadline", event.Description, *event.Deadline, event.Category, "")
		}
		for i, step := range event.StepsSorted() {
			if step.ScheduledTime == nil || !step.ReminderEnabled {
				continue
			}
			uid := fmt.Sprintf("%s-step-%s", event.ID, step.ID)
			title := fmt.Sprintf("%s - step %d", event.Title, i+1)
			addEntry(cal, uid, title, step.Content, *step.ScheduledTime, event.Category, event.Title)
		}
	}

	return cal.Serialize()
}

// GenerateSingleEventICS renders one event's reminders as ICS.
func GenerateSingleEventICS(event models.Event) string {
	return GenerateICS([]models.Event{event})
}

func addEntry(cal *ical.Calendar, uid, title, description string, at time.Time, category models.Category, parentTitle string) {
	ve := cal.AddEvent(uid + "@eventmemo")
	ve.SetDtStampTime(time.Now())
	ve.SetStartAt(at)
	ve.SetEndAt(at.Add(entryDuration))
	ve.SetSummary(title)

	full := fmt.Sprintf("%s\nCategory: %s", description, category)
	if parentTitle != "" {
		full = fmt.Sprintf("Event: %s\n%s", parentTitle, full)
	}
	ve.SetDescription(full)
	ve.SetProperty(ical.ComponentPropertyCategories, string(category))
	ve.SetStatus(ical.ObjectStatusConfirmed)

	alarm := ve.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger(alarmTrigger)
}
