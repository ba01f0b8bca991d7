package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryDelay computes the delay before the next attempt of a failed task.
// The attempt number is the count of attempts already made, starting at 1
// after the first failure. Strategies from pkg/webhook satisfy this interface.
type RetryDelay interface {
	NextInterval(attempt int) time.Duration
}

// Envelope wraps a Task with retry and scheduling metadata. An envelope is
// exclusively owned: it must not be shared between engines or enqueued twice
// concurrently. The engine mutates it in place on every dispatch attempt.
type Envelope struct {
	// Task is the unit of work this envelope schedules.
	Task Task

	// Attempt is the number of times the task has already been attempted.
	// It only ever increases, by exactly one per Execute call.
	Attempt int

	// MaxAttempts is the inclusive attempt ceiling. Once Attempt exceeds it
	// the envelope is exhausted and will be dropped by the engine.
	MaxAttempts int

	// NotBefore is the earliest wall-clock instant the envelope is eligible
	// for execution. The engine cycles not-yet-due envelopes back onto the
	// queue tail.
	NotBefore time.Time

	delay RetryDelay
}

// EnvelopeOption configures envelope creation.
type EnvelopeOption func(*Envelope)

// WithMaxAttempts sets the inclusive attempt ceiling. Negative values are
// ignored. A ceiling of 0 permits exactly one attempt.
func WithMaxAttempts(n int) EnvelopeOption {
	return func(e *Envelope) {
		if n >= 0 {
			e.MaxAttempts = n
		}
	}
}

// WithNotBefore delays the first execution until the given instant.
func WithNotBefore(t time.Time) EnvelopeOption {
	return func(e *Envelope) {
		e.NotBefore = t
	}
}

// WithDelay sets the delay before the first execution.
func WithDelay(d time.Duration) EnvelopeOption {
	return func(e *Envelope) {
		if d > 0 {
			e.NotBefore = time.Now().Add(d)
		}
	}
}

// WithRetryDelay sets the strategy used to advance NotBefore after a failed
// attempt. Defaults to a fixed DefaultRetryDelay interval.
func WithRetryDelay(strategy RetryDelay) EnvelopeOption {
	return func(e *Envelope) {
		if strategy != nil {
			e.delay = strategy
		}
	}
}

// DefaultRetryDelay is the fixed interval between attempts when no retry
// strategy is configured on the envelope.
const DefaultRetryDelay = 30 * time.Second

type fixedRetryDelay time.Duration

func (d fixedRetryDelay) NextInterval(int) time.Duration { return time.Duration(d) }

// NewEnvelope wraps a task in an envelope ready for enqueueing. The envelope
// starts with Attempt 0, MaxAttempts DefaultMaxAttempts, and is immediately
// eligible unless delayed via options.
func NewEnvelope(task Task, opts ...EnvelopeOption) (*Envelope, error) {
	if task == nil {
		return nil, ErrTaskNil
	}

	e := &Envelope{
		Task:        task,
		MaxAttempts: DefaultMaxAttempts,
		NotBefore:   time.Now(),
		delay:       fixedRetryDelay(DefaultRetryDelay),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// DefaultMaxAttempts is the attempt ceiling applied when none is configured.
const DefaultMaxAttempts = 3

// Eligible reports whether the envelope may be executed at the given instant:
// it is within its retry budget and past its earliest-allowed execution time.
func (e *Envelope) Eligible(now time.Time) bool {
	return e.Attempt <= e.MaxAttempts && !now.Before(e.NotBefore)
}

// Exhausted reports whether the attempt count has surpassed the ceiling,
// making the envelope permanently ineligible.
func (e *Envelope) Exhausted() bool {
	return e.Attempt > e.MaxAttempts
}

// Execute runs one attempt of the wrapped task: OnStart, Execute with the
// current attempt number, then OnStop. The attempt counter is incremented
// exactly once per call regardless of outcome. OnStop runs on every exit path
// where OnStart succeeded; its error is joined with any execute error.
//
// Execute does not catch task failures. Isolating them is the engine's job,
// so containment lives in one place and is testable apart from task logic.
func (e *Envelope) Execute(ctx context.Context) (err error) {
	attempt := e.Attempt
	e.Attempt++

	if startErr := e.Task.OnStart(ctx); startErr != nil {
		return fmt.Errorf("task start: %w", startErr)
	}

	defer func() {
		if stopErr := e.Task.OnStop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("task stop: %w", stopErr))
		}
	}()

	if execErr := e.Task.Execute(ctx, attempt); execErr != nil {
		return fmt.Errorf("task execute: %w", execErr)
	}
	return nil
}

// Reschedule advances NotBefore past now according to the envelope's retry
// strategy. Called by the engine after a failed attempt before re-queueing.
func (e *Envelope) Reschedule(now time.Time) {
	delay := e.delay
	if delay == nil {
		delay = fixedRetryDelay(DefaultRetryDelay)
	}
	e.NotBefore = now.Add(delay.NextInterval(e.Attempt))
}
