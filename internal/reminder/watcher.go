package reminder

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// PresentFunc receives the item to display. dismiss advances the queue and
// must be called when the user closes the surface.
type PresentFunc func(item Item, dismiss func() *Item)

// Watcher drives the scan pipeline on a cron cadence and on demand when
// the application regains the foreground. Both triggers funnel into the
// same mutex-guarded scan, so they are safe to fire reentrantly.
type Watcher struct {
	manager *Manager
	present PresentFunc
	cron    *cron.Cron
}

// NewWatcher creates a watcher over the manager. spec is a cron expression
// (robfig/cron syntax, e.g. "@every 1m").
func NewWatcher(manager *Manager, spec string, present PresentFunc) (*Watcher, error) {
	w := &Watcher{manager: manager, present: present, cron: cron.New()}
	if _, err := w.cron.AddFunc(spec, w.sweep); err != nil {
		return nil, fmt.Errorf("invalid scan schedule %q: %w", spec, err)
	}
	return w, nil
}

// Start begins the periodic sweeps.
func (w *Watcher) Start() {
	w.cron.Start()
	log.Debug().Msg("reminder watcher started")
}

// Stop halts the periodic sweeps. In-flight presentations are unaffected.
func (w *Watcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	log.Debug().Msg("reminder watcher stopped")
}

// Poke runs one sweep immediately, e.g. on a foreground/visibility change.
func (w *Watcher) Poke() {
	w.sweep()
}

func (w *Watcher) sweep() {
	item, promoted, err := w.manager.Scan()
	if err != nil {
		log.Error().Err(err).Msg("reminder scan failed")
		return
	}
	// Only the sweep that promoted the item presents it; a presentation
	// already in flight keeps its surface.
	if item == nil || !promoted || w.present == nil {
		return
	}
	w.present(*item, w.manager.Dismiss)
}
