package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmemo/internal/kv"
	"eventmemo/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStore() (*Store, *kv.Memory) {
	backend := kv.NewMemory()
	s := New(backend, WithClock(func() time.Time { return testNow }))
	return s, backend
}

func TestLoadEmpty(t *testing.T) {
	s, _ := newTestStore()

	events, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore()

	event := s.NewEvent("Ship container", "", models.CategoryShipping, 1)
	require.NoError(t, s.Add(event))

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, "Ship container", events[0].Title)
	assert.Equal(t, models.CategoryShipping, events[0].Category)
}

func TestExpiryDerivation(t *testing.T) {
	s, _ := newTestStore()

	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	overdue := s.NewEvent("Overdue", "", models.CategoryOther, 1)
	overdue.Deadline = &past
	// A stale persisted value must be overwritten on load.
	overdue.Expired = false

	completedLate := s.NewEvent("Done late", "", models.CategoryOther, 1)
	completedLate.Deadline = &past
	completedLate.Completed = true
	completedLate.Expired = true

	upcoming := s.NewEvent("Upcoming", "", models.CategoryOther, 1)
	upcoming.Deadline = &future

	require.NoError(t, s.Save([]models.Event{overdue, completedLate, upcoming}))

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].Expired, "past deadline and not completed must load expired")
	assert.False(t, events[1].Expired, "completed events are never expired")
	assert.False(t, events[2].Expired)
}

func TestCorruptionBackupAndReset(t *testing.T) {
	s, backend := newTestStore()

	require.NoError(t, backend.Set(StorageKey, "{not json"))

	events, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, events)

	// The raw payload is preserved under a timestamped side key.
	keys, err := backend.Keys(StorageKey + "_backup_")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	raw, ok, err := backend.Get(keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{not json", raw)

	// The primary key is cleared so subsequent loads start clean.
	_, ok, err = backend.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrationStampsVersion(t *testing.T) {
	s, backend := newTestStore()

	event := s.NewEvent("Legacy", "", models.CategoryOther, 2)
	legacy := map[string]any{"events": []models.Event{event}}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, backend.Set(StorageKey, string(raw)))

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Legacy", events[0].Title)

	// The migrated document is persisted immediately with the new stamp.
	stored, ok, err := backend.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	var doc struct {
		Version int `json:"version"`
	}
	require.NoError(t, json.Unmarshal([]byte(stored), &doc))
	assert.Equal(t, CurrentVersion, doc.Version)
}

func TestQuotaFailureLeavesStateUntouched(t *testing.T) {
	s, backend := newTestStore()

	event := s.NewEvent("Keep me", "", models.CategoryOther, 1)
	require.NoError(t, s.Add(event))

	backend.SetMaxValueBytes(10)
	big := s.NewEvent("A much longer title that will not fit in the quota", "", models.CategoryOther, 1)
	err := s.Add(big)
	require.Error(t, err)
	assert.True(t, errors.Is(err, kv.ErrQuotaExceeded))

	var qerr *kv.QuotaError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, 10, qerr.Limit)
	assert.Greater(t, qerr.Size, qerr.Limit)

	backend.SetMaxValueBytes(0)
	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Keep me", events[0].Title)
}

func TestUpdateMissingIDIsNoOp(t *testing.T) {
	s, _ := newTestStore()

	event := s.NewEvent("Only", "", models.CategoryOther, 1)
	require.NoError(t, s.Add(event))

	title := "Changed"
	require.NoError(t, s.Update("no-such-id", models.EventPatch{Title: &title}))

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Only", events[0].Title)
}

func TestUpdatePatchesFields(t *testing.T) {
	s, _ := newTestStore()

	event := s.NewEvent("Before", "old", models.CategoryOther, 4)
	require.NoError(t, s.Add(event))

	title := "After"
	priority := 1
	require.NoError(t, s.Update(event.ID, models.EventPatch{Title: &title, Priority: &priority}))

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "After", events[0].Title)
	assert.Equal(t, 1, events[0].Priority)
	assert.Equal(t, "old", events[0].Description, "unpatched fields stay untouched")
}

func TestStepCompletionRollsUp(t *testing.T) {
	s, _ := newTestStore()

	event := s.NewEvent("Stepped", "", models.CategoryOther, 1)
	event.Steps = []models.Step{
		{ID: "s1", Content: "first", Order: 0},
		{ID: "s2", Content: "second", Order: 1},
	}
	require.NoError(t, s.Add(event))

	done := true
	require.NoError(t, s.UpdateStep(event.ID, "s1", models.StepPatch{Completed: &done}))
	events, _ := s.Load()
	assert.False(t, events[0].Completed)

	require.NoError(t, s.UpdateStep(event.ID, "s2", models.StepPatch{Completed: &done}))
	events, _ = s.Load()
	assert.True(t, events[0].Completed, "completing the last step completes the event")

	undone := false
	require.NoError(t, s.UpdateStep(event.ID, "s2", models.StepPatch{Completed: &undone}))
	events, _ = s.Load()
	assert.False(t, events[0].Completed, "re-opening a step re-opens the event")
}

func TestDeleteMany(t *testing.T) {
	s, _ := newTestStore()

	a := s.NewEvent("A", "", models.CategoryOther, 1)
	b := s.NewEvent("B", "", models.CategoryOther, 1)
	c := s.NewEvent("C", "", models.CategoryOther, 1)
	require.NoError(t, s.Save([]models.Event{a, b, c}))

	require.NoError(t, s.DeleteMany([]string{a.ID, c.ID, "missing"}))

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "B", events[0].Title)
}

func TestDeleteCompleted(t *testing.T) {
	s, _ := newTestStore()

	active := s.NewEvent("Active", "", models.CategoryOther, 1)
	doneA := s.NewEvent("Done A", "", models.CategoryOther, 1)
	doneA.Completed = true
	doneB := s.NewEvent("Done B", "", models.CategoryOther, 2)
	doneB.Completed = true
	require.NoError(t, s.Save([]models.Event{active, doneA, doneB}))

	removed, err := s.DeleteCompleted()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Active", events[0].Title)

	removed, err = s.DeleteCompleted()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestFilters(t *testing.T) {
	s, _ := newTestStore()

	past := testNow.Add(-time.Hour)
	active := s.NewEvent("Active", "", models.CategoryOther, 1)
	completed := s.NewEvent("Completed", "", models.CategoryOther, 1)
	completed.Completed = true
	expired := s.NewEvent("Expired", "", models.CategoryOther, 1)
	expired.Deadline = &past
	require.NoError(t, s.Save([]models.Event{active, completed, expired}))

	events, err := s.Load()
	require.NoError(t, err)

	assert.Len(t, FilterActive(events), 1)
	assert.Len(t, FilterCompleted(events), 1)
	assert.Equal(t, 1, CountCompleted(events))
}
