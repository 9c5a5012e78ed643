package store

import "github.com/google/uuid"

// newID returns a fresh opaque identifier for events and steps.
func newID() string {
	return uuid.New().String()
}

// NewStepID returns a fresh step identifier.
func NewStepID() string {
	return newID()
}
