package dispatch

import "errors"

// Common errors
var (
	// ErrTaskNil is returned when wrapping a nil task in an envelope
	ErrTaskNil = errors.New("task cannot be nil")

	// ErrAlreadyRunning is returned when Run is called on a running engine
	ErrAlreadyRunning = errors.New("engine is already running")

	// ErrEngineStopped is returned when Run is called on a stopped engine
	ErrEngineStopped = errors.New("engine is stopped and cannot be restarted")

	// ErrPermanent marks a task failure that retrying cannot change. Tasks
	// wrap it into errors returned from Execute; the engine drops the
	// envelope instead of rescheduling it.
	ErrPermanent = errors.New("permanent task failure")
)
