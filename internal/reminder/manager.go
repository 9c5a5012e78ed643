package reminder

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"eventmemo/internal/kv"
	"eventmemo/internal/models"
)

const (
	shownIDsKey      = "shown_reminder_ids"
	lastClearDateKey = "last_reminder_clear_date"
)

// LoadFunc supplies the current event collection for a scan. Candidates
// are always evaluated live from this state, never from a frozen snapshot,
// so completing an event or disabling a flag cancels its reminders on the
// next scan with no explicit cancellation call.
type LoadFunc func() ([]models.Event, error)

// Manager runs the scan-and-present pipeline: it derives candidates,
// filters against the shown-today set, and presents one item at a time.
type Manager struct {
	kv   kv.Store
	load LoadFunc
	now  func() time.Time

	mu      sync.Mutex
	current *Item
	pending []Item
}

// NewManager creates a reminder manager over the given substrate.
func NewManager(backend kv.Store, load LoadFunc) *Manager {
	return &Manager{kv: backend, load: load, now: time.Now}
}

// SetClock overrides the wall clock, for tests.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Scan runs one sweep and returns the item to present, if any, plus
// whether this call promoted it. The promoted item is recorded in the
// shown-today set immediately, so a tick firing while a presentation is in
// flight does not re-queue it. If a presentation is already in flight the
// current item is returned with promoted=false and newly due items only
// refresh the pending queue; the promotion decision happens under the one
// lock, so concurrent sweeps can never both claim the same item.
func (m *Manager) Scan() (*Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	shown := m.shownToday()

	events, err := m.load()
	if err != nil {
		return nil, false, err
	}

	candidates := Check(events, m.now())
	due := candidates[:0]
	for _, c := range candidates {
		if !shown[c.ID] {
			due = append(due, c)
		}
	}
	// Earliest due first.
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].ScheduledTime.Before(due[j].ScheduledTime)
	})

	if m.current != nil {
		m.pending = due
		return m.current, false, nil
	}
	if len(due) == 0 {
		m.pending = nil
		return nil, false, nil
	}

	item := due[0]
	m.current = &item
	m.pending = due[1:]
	m.markShown(item.ID)
	return m.current, true, nil
}

// Dismiss closes the current presentation and promotes the next queued
// item, marking it shown. It returns the next item, or nil when the queue
// is drained.
func (m *Manager) Dismiss() *Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	if len(m.pending) == 0 {
		return nil
	}
	item := m.pending[0]
	m.pending = m.pending[1:]
	m.current = &item
	m.markShown(item.ID)
	return m.current
}

// Current returns the item presently on display, if any.
func (m *Manager) Current() *Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// shownToday returns the set of composite keys already presented today,
// clearing it first when the local calendar day has rolled over.
func (m *Manager) shownToday() map[string]bool {
	today := m.now().Format("2006-01-02")

	lastClear, _, err := m.kv.Get(lastClearDateKey)
	if err != nil {
		log.Error().Err(err).Msg("failed to read reminder clear date")
		return map[string]bool{}
	}
	if lastClear != today {
		if err := m.kv.Set(lastClearDateKey, today); err != nil {
			log.Error().Err(err).Msg("failed to record reminder clear date")
		}
		if err := m.kv.Delete(shownIDsKey); err != nil {
			log.Error().Err(err).Msg("failed to clear shown reminder ids")
		}
		return map[string]bool{}
	}

	raw, ok, err := m.kv.Get(shownIDsKey)
	if err != nil || !ok {
		return map[string]bool{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable shown reminder ids")
		return map[string]bool{}
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// markShown appends the key to today's shown set.
func (m *Manager) markShown(id string) {
	set := m.shownToday()
	set[id] = true
	ids := make([]string, 0, len(set))
	for k := range set {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	raw, err := json.Marshal(ids)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode shown reminder ids")
		return
	}
	if err := m.kv.Set(shownIDsKey, string(raw)); err != nil {
		log.Error().Err(err).Msg("failed to persist shown reminder ids")
	}
}
