// Package ordering computes the total order of events within a priority
// bucket and of steps within an event, with stable manual re-ranking. All
// functions are pure over slices; callers persist the mutated collection
// through the store.
package ordering

import (
	"sort"

	"eventmemo/internal/models"
)

// Direction selects which way a manual move goes.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// SortEvents orders events ascending by SortOrder, ties broken by ascending
// CreatedAt. The input slice is sorted in place and returned.
func SortEvents(events []models.Event) []models.Event {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].SortOrder != events[j].SortOrder {
			return events[i].SortOrder < events[j].SortOrder
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events
}

// Buckets partitions the active events (not completed, not expired) into
// the four priority buckets, each ranked by SortEvents.
func Buckets(events []models.Event) map[int][]models.Event {
	buckets := make(map[int][]models.Event, models.PriorityMax)
	for p := models.PriorityMin; p <= models.PriorityMax; p++ {
		buckets[p] = []models.Event{}
	}
	for _, e := range events {
		if e.Completed || e.Expired {
			continue
		}
		if e.Priority < models.PriorityMin || e.Priority > models.PriorityMax {
			continue
		}
		buckets[e.Priority] = append(buckets[e.Priority], e)
	}
	for p := range buckets {
		SortEvents(buckets[p])
	}
	return buckets
}

// MoveEvent swaps the SortOrder of the identified event with its adjacent
// neighbor in the active same-priority ranked list. Moving the first
// element up, the last element down, or an unknown id is a no-op. It
// reports whether anything changed; mutations land in the events slice.
func MoveEvent(events []models.Event, id string, dir Direction, priority int) bool {
	// Rank the active bucket by position in the events slice so the swap
	// writes through to the caller's collection.
	var ranked []*models.Event
	for i := range events {
		e := &events[i]
		if e.Priority == priority && !e.Completed && !e.Expired {
			ranked = append(ranked, e)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SortOrder != ranked[j].SortOrder {
			return ranked[i].SortOrder < ranked[j].SortOrder
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})

	idx := -1
	for i, e := range ranked {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	switch {
	case dir == Up && idx > 0:
		ranked[idx].SortOrder, ranked[idx-1].SortOrder = ranked[idx-1].SortOrder, ranked[idx].SortOrder
	case dir == Down && idx < len(ranked)-1:
		ranked[idx].SortOrder, ranked[idx+1].SortOrder = ranked[idx+1].SortOrder, ranked[idx].SortOrder
	default:
		return false
	}
	return true
}

// MoveStep swaps the Order of the identified step with its adjacent
// neighbor among its siblings ranked by ascending Order. Boundary moves and
// unknown ids are no-ops.
func MoveStep(steps []models.Step, stepID string, dir Direction) bool {
	ranked := make([]*models.Step, 0, len(steps))
	for i := range steps {
		ranked = append(ranked, &steps[i])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Order < ranked[j].Order
	})

	idx := -1
	for i, s := range ranked {
		if s.ID == stepID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	switch {
	case dir == Up && idx > 0:
		ranked[idx].Order, ranked[idx-1].Order = ranked[idx-1].Order, ranked[idx].Order
	case dir == Down && idx < len(ranked)-1:
		ranked[idx].Order, ranked[idx+1].Order = ranked[idx+1].Order, ranked[idx].Order
	default:
		return false
	}
	return true
}

// NextStepOrder returns the order value for a step appended at the end of
// the list: one past the current maximum.
func NextStepOrder(steps []models.Step) int {
	next := 0
	for _, s := range steps {
		if s.Order >= next {
			next = s.Order + 1
		}
	}
	return next
}

// CompactSteps renumbers the steps to a dense 0..n-1 sequence in their
// ranked order, bounding the drift left behind by deletions.
func CompactSteps(steps []models.Step) []models.Step {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})
	for i := range steps {
		steps[i].Order = i
	}
	return steps
}

// NextSortOrder returns the rank that places an event at the end of the
// given priority bucket. Changing an event's priority assigns it this
// fresh rank in the new bucket.
func NextSortOrder(events []models.Event, priority int) int {
	next := 0
	for _, e := range events {
		if e.Priority != priority || e.Completed || e.Expired {
			continue
		}
		if e.SortOrder >= next {
			next = e.SortOrder + 1
		}
	}
	return next
}
