package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmemo/internal/kv"
	"eventmemo/internal/models"
)

func fixedEvents(events []models.Event) LoadFunc {
	return func() ([]models.Event, error) { return events, nil }
}

func dueEvent(id, title string, at time.Time) models.Event {
	return models.Event{
		ID: id, Title: title,
		StartReminderEnabled: true, StartTime: timed(at),
	}
}

func TestScanShowsOncePerDay(t *testing.T) {
	now := scanNow
	events := []models.Event{dueEvent("e1", "Call broker", now.Add(-time.Minute))}

	m := NewManager(kv.NewMemory(), fixedEvents(events))
	m.SetClock(func() time.Time { return now })

	item, promoted, err := m.Scan()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.True(t, promoted)
	assert.Equal(t, "start-e1", item.ID)

	assert.Nil(t, m.Dismiss())

	// Same day: already shown, nothing to present.
	item, promoted, err = m.Scan()
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.False(t, promoted)
}

func TestScanResetsAtLocalMidnight(t *testing.T) {
	now := scanNow
	events := []models.Event{dueEvent("e1", "Call broker", scanNow.Add(-time.Minute))}

	m := NewManager(kv.NewMemory(), fixedEvents(events))
	m.SetClock(func() time.Time { return now })

	item, _, err := m.Scan()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Nil(t, m.Dismiss())

	now = now.Add(24 * time.Hour)
	item, promoted, err := m.Scan()
	require.NoError(t, err)
	require.NotNil(t, item, "the shown set clears when the calendar day changes")
	assert.True(t, promoted)
	assert.Equal(t, "start-e1", item.ID)
}

func TestScanPresentsEarliestFirst(t *testing.T) {
	events := []models.Event{
		dueEvent("later", "Later", scanNow.Add(-time.Minute)),
		dueEvent("earlier", "Earlier", scanNow.Add(-time.Hour)),
	}

	m := NewManager(kv.NewMemory(), fixedEvents(events))
	m.SetClock(func() time.Time { return scanNow })

	item, _, err := m.Scan()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "start-earlier", item.ID)

	next := m.Dismiss()
	require.NotNil(t, next)
	assert.Equal(t, "start-later", next.ID)

	assert.Nil(t, m.Dismiss())
}

func TestScanClaimsItemExactlyOnce(t *testing.T) {
	events := []models.Event{
		dueEvent("first", "First", scanNow.Add(-time.Hour)),
		dueEvent("second", "Second", scanNow.Add(-time.Minute)),
	}

	m := NewManager(kv.NewMemory(), fixedEvents(events))
	m.SetClock(func() time.Time { return scanNow })

	first, promoted, err := m.Scan()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, promoted)

	// A sweep racing the presentation sees the same item but never claims
	// it, so only one caller ever presents it.
	again, promoted, err := m.Scan()
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, first.ID, again.ID)
	assert.False(t, promoted)

	next := m.Dismiss()
	require.NotNil(t, next)
	assert.Equal(t, "start-second", next.ID)
}

func TestScanMarksShownAtPresentation(t *testing.T) {
	events := []models.Event{dueEvent("e1", "Once", scanNow.Add(-time.Minute))}

	backend := kv.NewMemory()
	m := NewManager(backend, fixedEvents(events))
	m.SetClock(func() time.Time { return scanNow })

	_, _, err := m.Scan()
	require.NoError(t, err)

	// The shown set is persisted before the user dismisses anything, so a
	// second manager over the same substrate sees the item as handled.
	fresh := NewManager(backend, fixedEvents(events))
	fresh.SetClock(func() time.Time { return scanNow })
	item, _, err := fresh.Scan()
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestScanReflectsLiveState(t *testing.T) {
	events := []models.Event{dueEvent("e1", "Live", scanNow.Add(-time.Minute))}
	m := NewManager(kv.NewMemory(), func() ([]models.Event, error) { return events, nil })
	m.SetClock(func() time.Time { return scanNow })

	events[0].Completed = true
	item, _, err := m.Scan()
	require.NoError(t, err)
	assert.Nil(t, item, "completing an event cancels its pending reminders")
}
