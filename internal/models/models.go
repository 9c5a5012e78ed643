// Package models defines the core domain types for eventmemo.
package models

import "time"

// Category classifies an event. The set is closed; UI surfaces present it as
// a fixed dropdown and the step generator keys its templates off it.
type Category string

const (
	CategoryShipping      Category = "shipping"
	CategoryImport        Category = "import"
	CategoryLocalSales    Category = "local-sales"
	CategoryMeeting       Category = "meeting"
	CategoryStudy         Category = "study"
	CategoryProject       Category = "project"
	CategoryEventPlanning Category = "event-planning"
	CategoryMaintenance   Category = "maintenance"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryShipping,
	CategoryImport,
	CategoryLocalSales,
	CategoryMeeting,
	CategoryStudy,
	CategoryProject,
	CategoryEventPlanning,
	CategoryMaintenance,
	CategoryOther,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ReminderType selects the alert modality for a reminder.
type ReminderType string

const (
	ReminderSound     ReminderType = "sound"
	ReminderVibration ReminderType = "vibration"
	ReminderBoth      ReminderType = "both"
)

// Priority bounds for the Eisenhower quadrants.
// 1 = urgent+important, 2 = important, 3 = urgent, 4 = neither.
const (
	PriorityMin = 1
	PriorityMax = 4
)

// Step is one sub-task of an Event, independently completable and
// independently schedulable.
type Step struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	// Order ranks the step within its parent's list. Gaps are tolerated;
	// consumers sort by this field before display.
	Order           int          `json:"order"`
	ScheduledTime   *time.Time   `json:"scheduledTime,omitempty"`
	ReminderEnabled bool         `json:"reminderEnabled,omitempty"`
	ReminderType    ReminderType `json:"reminderType,omitempty"`
	Status          string       `json:"status,omitempty"`
}

// Event is the central entity: a user-tracked task with priority, optional
// schedule, and a checklist of steps. JSON field names match the portable
// export format, so backups interoperate across implementations.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Priority    int      `json:"priority"`

	StartTime *time.Time `json:"startTime,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`

	StartReminderEnabled    bool         `json:"startTimeReminderEnabled,omitempty"`
	StartReminderType       ReminderType `json:"startTimeReminderType,omitempty"`
	DeadlineReminderEnabled bool         `json:"deadlineReminderEnabled,omitempty"`
	DeadlineReminderType    ReminderType `json:"deadlineReminderType,omitempty"`

	Steps     []Step    `json:"steps"`
	CreatedAt time.Time `json:"createdAt"`
	Completed bool      `json:"completed"`
	// Expired is derived from Deadline and Completed on every load; the
	// persisted value is never authoritative.
	Expired bool `json:"expired"`
	// SortOrder ranks the event among events sharing its priority bucket.
	SortOrder int `json:"sortOrder"`
}

// StepsSorted returns the steps ordered by their Order field, ties broken by
// slice position. The receiver's slice is not modified.
func (e *Event) StepsSorted() []Step {
	out := make([]Step, len(e.Steps))
	copy(out, e.Steps)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Order < out[j-1].Order; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// AllStepsCompleted reports whether the event has at least one step and
// every step is completed.
func (e *Event) AllStepsCompleted() bool {
	if len(e.Steps) == 0 {
		return false
	}
	for _, s := range e.Steps {
		if !s.Completed {
			return false
		}
	}
	return true
}

// EventPatch lists the event fields an update may override. Nil fields are
// left untouched; the patch is applied field-by-field so the update contract
// stays statically checkable.
type EventPatch struct {
	Title       *string
	Description *string
	Category    *Category
	Priority    *int
	StartTime   *time.Time
	Deadline    *time.Time

	StartReminderEnabled    *bool
	StartReminderType       *ReminderType
	DeadlineReminderEnabled *bool
	DeadlineReminderType    *ReminderType

	Steps     *[]Step
	Completed *bool
	SortOrder *int
}

// Apply assigns every non-nil patch field onto the event.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.StartTime != nil {
		e.StartTime = p.StartTime
	}
	if p.Deadline != nil {
		e.Deadline = p.Deadline
	}
	if p.StartReminderEnabled != nil {
		e.StartReminderEnabled = *p.StartReminderEnabled
	}
	if p.StartReminderType != nil {
		e.StartReminderType = *p.StartReminderType
	}
	if p.DeadlineReminderEnabled != nil {
		e.DeadlineReminderEnabled = *p.DeadlineReminderEnabled
	}
	if p.DeadlineReminderType != nil {
		e.DeadlineReminderType = *p.DeadlineReminderType
	}
	if p.Steps != nil {
		e.Steps = *p.Steps
	}
	if p.Completed != nil {
		e.Completed = *p.Completed
	}
	if p.SortOrder != nil {
		e.SortOrder = *p.SortOrder
	}
}

// StepPatch lists the step fields an update may override.
type StepPatch struct {
	Content         *string
	Completed       *bool
	Order           *int
	ScheduledTime   *time.Time
	ReminderEnabled *bool
	ReminderType    *ReminderType
	Status          *string
}

// Apply assigns every non-nil patch field onto the step.
func (p StepPatch) Apply(s *Step) {
	if p.Content != nil {
		s.Content = *p.Content
	}
	if p.Completed != nil {
		s.Completed = *p.Completed
	}
	if p.Order != nil {
		s.Order = *p.Order
	}
	if p.ScheduledTime != nil {
		s.ScheduledTime = p.ScheduledTime
	}
	if p.ReminderEnabled != nil {
		s.ReminderEnabled = *p.ReminderEnabled
	}
	if p.ReminderType != nil {
		s.ReminderType = *p.ReminderType
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
}
