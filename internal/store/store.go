// Package store provides durable, versioned storage of the event
// collection behind a narrow synchronous API. It is the single source of
// truth; every other component routes mutations back through it.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"eventmemo/internal/kv"
	"eventmemo/internal/models"
)

const (
	// StorageKey is the primary key holding the event collection document.
	StorageKey = "important-events-memo"
	// backupKeyFormat names the side keys that preserve corrupted payloads.
	backupKeyFormat = StorageKey + "_backup_%d"

	// CurrentVersion is the schema version stamped on every save.
	CurrentVersion = 1
)

// state is the persisted document shape.
type state struct {
	Events  []models.Event `json:"events"`
	Version int            `json:"version"`
}

// A migration upgrades the document from version From to From+1. The list
// is applied sequentially until CurrentVersion is reached; a missing
// version tag is treated as version 0.
type migration struct {
	From  int
	Apply func(*state)
}

// migrations holds the ordered upgrade steps. The 0 -> 1 step is an
// identity transform: version 1 only introduced the version stamp itself.
var migrations = []migration{
	{From: 0, Apply: func(*state) {}},
}

// Store owns the canonical event collection.
type Store struct {
	kv  kv.Store
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over the given key-value substrate.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{kv: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// expired reports whether the event should carry the derived expired flag:
// deadline in the past and not completed.
func (s *Store) expired(e *models.Event) bool {
	if e.Deadline == nil || e.Completed {
		return false
	}
	return e.Deadline.Before(s.now())
}

// Load reads the persisted collection. An absent document yields an empty
// collection. An unparseable document is preserved under a timestamped
// backup side key for forensics, then the store falls back to empty. On
// success the expired flag of every event is recomputed before returning.
func (s *Store) Load() ([]models.Event, error) {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	if !ok {
		return []models.Event{}, nil
	}

	var st state
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.backupCorrupted(raw, err)
		return []models.Event{}, nil
	}

	if st.Version < CurrentVersion {
		if err := s.migrate(&st); err != nil {
			return nil, err
		}
	}

	for i := range st.Events {
		st.Events[i].Expired = s.expired(&st.Events[i])
	}
	return st.Events, nil
}

// migrate applies the pending migration steps and persists the stamped
// document immediately.
func (s *Store) migrate(st *state) error {
	from := st.Version
	for st.Version < CurrentVersion {
		applied := false
		for _, m := range migrations {
			if m.From == st.Version {
				m.Apply(st)
				st.Version++
				applied = true
				break
			}
		}
		if !applied {
			return fmt.Errorf("no migration from schema version %d", st.Version)
		}
	}
	doc, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal migrated state: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(doc)); err != nil {
		return fmt.Errorf("persist migrated state: %w", err)
	}
	log.Info().Int("from", from).Int("to", st.Version).Msg("migrated event store schema")
	return nil
}

// backupCorrupted copies the raw payload under a timestamped side key and
// clears the primary key so the next load starts clean.
func (s *Store) backupCorrupted(raw string, cause error) {
	backupKey := fmt.Sprintf(backupKeyFormat, s.now().UnixMilli())
	if err := s.kv.Set(backupKey, raw); err != nil {
		log.Error().Err(err).Msg("failed to back up corrupted event data")
	} else {
		log.Warn().Err(cause).Str("backup_key", backupKey).Msg("corrupted event data backed up, resetting store")
	}
	if err := s.kv.Delete(StorageKey); err != nil {
		log.Error().Err(err).Msg("failed to clear corrupted event data")
	}
}

// Save overwrites the persisted collection with the current schema version
// stamp. A capacity rejection surfaces as a *kv.QuotaError; the previously
// persisted state is unchanged on any failure.
func (s *Store) Save(events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	doc, err := json.Marshal(state{Events: events, Version: CurrentVersion})
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(doc)); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

// Add appends the event to the collection.
func (s *Store) Add(event models.Event) error {
	events, err := s.Load()
	if err != nil {
		return err
	}
	return s.Save(append(events, event))
}

// Update applies the patch to the event with the given id. A missing id is
// a no-op, not an error. Replacing the step list re-derives the event's
// completion from the new steps.
func (s *Store) Update(id string, patch models.EventPatch) error {
	events, err := s.Load()
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].ID != id {
			continue
		}
		patch.Apply(&events[i])
		if patch.Steps != nil && patch.Completed == nil {
			syncCompletion(&events[i])
		}
		return s.Save(events)
	}
	return nil
}

// UpdateStep applies the patch to one step of the event. Completing the
// last open step marks the event completed; re-opening a step clears a
// completion that was derived from the steps.
func (s *Store) UpdateStep(eventID, stepID string, patch models.StepPatch) error {
	events, err := s.Load()
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].ID != eventID {
			continue
		}
		for j := range events[i].Steps {
			if events[i].Steps[j].ID != stepID {
				continue
			}
			patch.Apply(&events[i].Steps[j])
			if patch.Completed != nil {
				syncCompletion(&events[i])
			}
			return s.Save(events)
		}
		return nil
	}
	return nil
}

// syncCompletion derives the event's completed flag from its steps.
func syncCompletion(e *models.Event) {
	if e.AllStepsCompleted() {
		e.Completed = true
	} else if len(e.Steps) > 0 {
		e.Completed = false
	}
}

// Delete removes the event with the given id. A missing id is a no-op.
func (s *Store) Delete(id string) error {
	return s.DeleteMany([]string{id})
}

// DeleteMany removes every event whose id appears in ids.
func (s *Store) DeleteMany(ids []string) error {
	events, err := s.Load()
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := events[:0]
	for _, e := range events {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	return s.Save(kept)
}

// DeleteCompleted removes every completed event and reports how many were
// removed. An empty result saves nothing.
func (s *Store) DeleteCompleted() (int, error) {
	events, err := s.Load()
	if err != nil {
		return 0, err
	}
	kept := events[:0]
	removed := 0
	for _, e := range events {
		if e.Completed {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.Save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// NewEvent builds an event with a fresh id and creation timestamp.
func (s *Store) NewEvent(title, description string, category models.Category, priority int) models.Event {
	return models.Event{
		ID:          newID(),
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Steps:       []models.Step{},
		CreatedAt:   s.now(),
	}
}

// FilterActive returns the events that are neither completed nor expired.
func FilterActive(events []models.Event) []models.Event {
	var out []models.Event
	for _, e := range events {
		if !e.Completed && !e.Expired {
			out = append(out, e)
		}
	}
	return out
}

// FilterCompleted returns the completed events.
func FilterCompleted(events []models.Event) []models.Event {
	var out []models.Event
	for _, e := range events {
		if e.Completed {
			out = append(out, e)
		}
	}
	return out
}

// CountCompleted returns the number of completed events.
func CountCompleted(events []models.Event) int {
	return len(FilterCompleted(events))
}
