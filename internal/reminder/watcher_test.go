package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmemo/internal/kv"
	"eventmemo/internal/models"
)

func TestNewWatcherRejectsBadSchedule(t *testing.T) {
	m := NewManager(kv.NewMemory(), fixedEvents(nil))

	_, err := NewWatcher(m, "not a schedule", nil)
	assert.Error(t, err)

	_, err = NewWatcher(m, "@every 1m", nil)
	assert.NoError(t, err)
}

func TestPokePresentsDueItem(t *testing.T) {
	events := []models.Event{dueEvent("e1", "Call broker", scanNow.Add(-time.Minute))}
	m := NewManager(kv.NewMemory(), fixedEvents(events))
	m.SetClock(func() time.Time { return scanNow })

	var presented []string
	w, err := NewWatcher(m, "@every 1h", func(item Item, dismiss func() *Item) {
		presented = append(presented, item.ID)
	})
	require.NoError(t, err)

	w.Poke()
	assert.Equal(t, []string{"start-e1"}, presented)

	// The same sweep firing again must not re-present the in-flight item.
	w.Poke()
	assert.Equal(t, []string{"start-e1"}, presented)
}

func TestPokeAfterDismissMovesOn(t *testing.T) {
	events := []models.Event{
		dueEvent("e1", "First", scanNow.Add(-time.Hour)),
		dueEvent("e2", "Second", scanNow.Add(-time.Minute)),
	}
	m := NewManager(kv.NewMemory(), fixedEvents(events))
	m.SetClock(func() time.Time { return scanNow })

	var presented []string
	w, err := NewWatcher(m, "@every 1h", func(item Item, dismiss func() *Item) {
		presented = append(presented, item.ID)
		for dismiss() != nil {
		}
	})
	require.NoError(t, err)

	w.Poke()
	assert.Equal(t, []string{"start-e1"}, presented)
	assert.Nil(t, m.Current(), "the queue drains inside the presentation")

	w.Poke()
	assert.Equal(t, []string{"start-e1"}, presented, "both items were consumed, nothing left to show")
}
