// Package reminder derives due reminder instances from the event
// collection, suppresses re-alerting within a calendar day, and presents
// candidates one at a time.
package reminder

import (
	"fmt"
	"time"

	"eventmemo/internal/models"
)

// Kind identifies which schedule a reminder instance comes from.
type Kind string

const (
	KindStep     Kind = "step"
	KindStart    Kind = "startTime"
	KindDeadline Kind = "deadline"
)

// Item is one due reminder instance. ID is the composite dedup key.
type Item struct {
	ID             string              `json:"id"`
	Kind           Kind                `json:"type"`
	EventID        string              `json:"eventId"`
	EventTitle     string              `json:"eventTitle"`
	StepID         string              `json:"stepId,omitempty"`
	StepContent    string              `json:"stepContent,omitempty"`
	ScheduledTime  time.Time           `json:"scheduledTime"`
	ReminderType   models.ReminderType `json:"reminderType,omitempty"`
	Overdue        bool                `json:"isOverdue"`
	OverdueMinutes int                 `json:"overdueMinutes,omitempty"`
}

// Check computes the full candidate set at the given instant: every
// enabled start/deadline/step schedule of a non-completed event whose time
// has passed. Expired events still alert; a missing scheduled time simply
// excludes that instance. Overdue carries whole elapsed minutes.
func Check(events []models.Event, now time.Time) []Item {
	var items []Item

	for _, event := range events {
		if event.Completed {
			continue
		}

		for _, step := range event.Steps {
			if !step.ReminderEnabled || step.ScheduledTime == nil || step.Completed {
				continue
			}
			if item, ok := newItem(now, *step.ScheduledTime); ok {
				item.ID = "step-" + step.ID
				item.Kind = KindStep
				item.EventID = event.ID
				item.EventTitle = event.Title
				item.StepID = step.ID
				item.StepContent = step.Content
				item.ReminderType = step.ReminderType
				items = append(items, item)
			}
		}

		if event.StartReminderEnabled && event.StartTime != nil {
			if item, ok := newItem(now, *event.StartTime); ok {
				item.ID = "start-" + event.ID
				item.Kind = KindStart
				item.EventID = event.ID
				item.EventTitle = event.Title
				item.ReminderType = event.StartReminderType
				items = append(items, item)
			}
		}

		if event.DeadlineReminderEnabled && event.Deadline != nil {
			if item, ok := newItem(now, *event.Deadline); ok {
				item.ID = "deadline-" + event.ID
				item.Kind = KindDeadline
				item.EventID = event.ID
				item.EventTitle = event.Title
				item.ReminderType = event.DeadlineReminderType
				items = append(items, item)
			}
		}
	}

	return items
}

// newItem classifies a schedule against now. Not yet due returns ok=false.
func newItem(now, scheduled time.Time) (Item, bool) {
	if scheduled.After(now) {
		return Item{}, false
	}
	minutes := int(now.Sub(scheduled) / time.Minute)
	item := Item{
		ScheduledTime: scheduled,
		Overdue:       minutes > 0,
	}
	if minutes > 0 {
		item.OverdueMinutes = minutes
	}
	return item, true
}

// FormatOverdue renders an overdue magnitude for display.
func FormatOverdue(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes < 24*60:
		h, m := minutes/60, minutes%60
		if m > 0 {
			return fmt.Sprintf("%dh %dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	default:
		d, h := minutes/(24*60), (minutes%(24*60))/60
		if h > 0 {
			return fmt.Sprintf("%dd %dh", d, h)
		}
		return fmt.Sprintf("%dd", d)
	}
}
