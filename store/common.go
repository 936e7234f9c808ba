package store

import (
	"errors"
)

var (
	// ErrUnknownMutation is returned when a commit names a mutation the store does not know.
	ErrUnknownMutation = errors.New("unknown mutation")

	// ErrUnknownAction is returned when a dispatch names an action the store does not know.
	ErrUnknownAction = errors.New("unknown action")

	// ErrNilMutation is returned when a store is created with a nil mutation.
	ErrNilMutation = errors.New("mutation must not be nil")

	// ErrNilAction is returned when a store is created with a nil action.
	ErrNilAction = errors.New("action must not be nil")

	// ErrNilJournal is returned when WithJournal is given a nil journal.
	ErrNilJournal = errors.New("journal must not be nil")

	// ErrNilClock is returned when WithClock is given a nil clock.
	ErrNilClock = errors.New("clock must not be nil")

	// ErrJournalingMutationFailed is returned when a mutation was applied but could not be journaled.
	// The in-memory state keeps the mutation.
	ErrJournalingMutationFailed = errors.New("journaling mutation failed")
)
