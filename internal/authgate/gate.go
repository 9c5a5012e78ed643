// Package authgate implements the static passphrase gate guarding the
// application, with an optional remembered unlock.
package authgate

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"eventmemo/internal/kv"
)

const savedHashKey = "app_saved_passphrase"

// Gate checks a configured passphrase and manages the remembered unlock.
// An empty configured passphrase disables the gate entirely.
type Gate struct {
	kv         kv.Store
	passphrase string
}

// New creates a Gate for the configured passphrase.
func New(backend kv.Store, passphrase string) *Gate {
	return &Gate{kv: backend, passphrase: passphrase}
}

// Enabled reports whether a passphrase is configured at all.
func (g *Gate) Enabled() bool {
	return g.passphrase != ""
}

// Verify checks an entered passphrase in constant time.
func (g *Gate) Verify(entered string) bool {
	if !g.Enabled() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(entered), []byte(g.passphrase)) == 1
}

// Remember persists a bcrypt hash of the configured passphrase so later
// sessions skip the prompt. The hash is of the configured passphrase, so a
// configuration change invalidates the remembered unlock.
func (g *Gate) Remember() error {
	if !g.Enabled() {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(g.passphrase), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash passphrase: %w", err)
	}
	if err := g.kv.Set(savedHashKey, string(hash)); err != nil {
		return fmt.Errorf("persist unlock: %w", err)
	}
	return nil
}

// IsUnlocked reports whether a valid remembered unlock exists for the
// currently configured passphrase.
func (g *Gate) IsUnlocked() bool {
	if !g.Enabled() {
		return true
	}
	hash, ok, err := g.kv.Get(savedHashKey)
	if err != nil || !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(g.passphrase)) == nil
}

// Forget discards the remembered unlock.
func (g *Gate) Forget() error {
	return g.kv.Delete(savedHashKey)
}
