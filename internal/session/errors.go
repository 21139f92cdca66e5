package session

import "errors"

var (
	// ErrNoSession is returned for commands that require an open
	// presentation when none is open.
	ErrNoSession = errors.New("session: no presentation open")

	// ErrNoNotes is returned for notes commands when the notes popup has
	// not been bound.
	ErrNoNotes = errors.New("session: no notes window open")

	// ErrNoPreset is returned when a preset slot has no URL bound.
	ErrNoPreset = errors.New("session: preset not configured")
)
