package dispatch

import "context"

// Task is a single dispatchable unit of work, such as delivering one event
// payload to a subscriber's callback URL.
//
// The engine calls the three methods in fixed order through Envelope.Execute:
// OnStart prepares or acquires resources, Execute performs the actual work,
// and OnStop releases resources. OnStop is guaranteed to run whenever OnStart
// succeeded, even if Execute returned an error.
//
// Tasks carry no scheduling state; retry bookkeeping lives entirely in the
// Envelope that wraps them. Implementations must be safe to call repeatedly
// with increasing attempt numbers.
type Task interface {
	// OnStart runs before Execute. Returning an error aborts the attempt
	// without calling Execute or OnStop.
	OnStart(ctx context.Context) error

	// Execute performs the unit of work. The attempt number starts at 0 and
	// increments on every dispatch of the same envelope.
	Execute(ctx context.Context, attempt int) error

	// OnStop runs after Execute on every exit path where OnStart succeeded.
	OnStop(ctx context.Context) error
}
