// Package housekeep tracks the backup-reminder cadence and the monthly
// cleanup reminder state.
package housekeep

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"eventmemo/internal/kv"
)

const (
	lastBackupKey     = "lastBackupDate"
	monthlyCleanupKey = "monthly_cleanup_reminder"
)

// backupInterval is how long the store may go without a backup before the
// user is nudged.
const backupInterval = 7 * 24 * time.Hour

// cleanupState is the persisted monthly cleanup reminder state.
type cleanupState struct {
	LastReminderMonth string `json:"lastReminderMonth"` // "YYYY-MM"
	SkipThisMonth     bool   `json:"skipThisMonth"`
}

// Keeper owns the housekeeping side keys.
type Keeper struct {
	kv kv.Store
}

// New creates a Keeper over the given substrate.
func New(backend kv.Store) *Keeper {
	return &Keeper{kv: backend}
}

// ShouldRemindBackup reports whether the user should be nudged to export a
// backup: no backup recorded yet, or the last one is at least a week old.
func (k *Keeper) ShouldRemindBackup(now time.Time) bool {
	raw, ok, err := k.kv.Get(lastBackupKey)
	if err != nil {
		log.Error().Err(err).Msg("failed to read last backup date")
		return false
	}
	if !ok {
		return true
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true
	}
	return now.Sub(last) >= backupInterval
}

// RecordBackup stores now as the last backup instant.
func (k *Keeper) RecordBackup(now time.Time) error {
	if err := k.kv.Set(lastBackupKey, now.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record backup date: %w", err)
	}
	return nil
}

// LastBackup returns the recorded backup instant, if any.
func (k *Keeper) LastBackup() (time.Time, bool) {
	raw, ok, err := k.kv.Get(lastBackupKey)
	if err != nil || !ok {
		return time.Time{}, false
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return last, true
}

// ShouldRemindCleanup reports whether the monthly completed-events cleanup
// reminder is due. A skip recorded for the current month suppresses it.
func (k *Keeper) ShouldRemindCleanup(now time.Time) bool {
	st, ok := k.loadCleanupState()
	if !ok {
		return true
	}
	month := now.Format("2006-01")
	if st.LastReminderMonth == month && st.SkipThisMonth {
		return false
	}
	return true
}

// SkipCleanupThisMonth records that the user dismissed the cleanup
// reminder for the current month.
func (k *Keeper) SkipCleanupThisMonth(now time.Time) error {
	return k.saveCleanupState(cleanupState{
		LastReminderMonth: now.Format("2006-01"),
		SkipThisMonth:     true,
	})
}

// MarkCleanupShown records that the reminder fired this month without
// suppressing future ones.
func (k *Keeper) MarkCleanupShown(now time.Time) error {
	return k.saveCleanupState(cleanupState{
		LastReminderMonth: now.Format("2006-01"),
	})
}

func (k *Keeper) loadCleanupState() (cleanupState, bool) {
	raw, ok, err := k.kv.Get(monthlyCleanupKey)
	if err != nil || !ok {
		return cleanupState{}, false
	}
	var st cleanupState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable cleanup reminder state")
		return cleanupState{}, false
	}
	return st, true
}

func (k *Keeper) saveCleanupState(st cleanupState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal cleanup state: %w", err)
	}
	if err := k.kv.Set(monthlyCleanupKey, string(raw)); err != nil {
		return fmt.Errorf("persist cleanup state: %w", err)
	}
	return nil
}
