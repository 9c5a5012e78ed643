// Package kv provides the key-value persistence port backing the event
// store. The core logic only sees the Store interface; production uses the
// SQLite implementation, tests use the in-memory one.
package kv

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded signals that a write was rejected by the capacity limit.
// Callers match it with errors.Is; the wrapped *QuotaError carries sizes.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// QuotaError reports a rejected write along with the measured payload size
// and the configured ceiling, both in bytes.
type QuotaError struct {
	Key   string
	Size  int
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("storage quota exceeded writing %q: %d bytes (limit %d)", e.Key, e.Size, e.Limit)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// Store is a synchronous string key-value store. Get reports presence
// explicitly so an absent key is distinguishable from an empty value.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}
