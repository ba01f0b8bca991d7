package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Engine states. An engine moves Idle -> Running on the first Run call and
// Running -> Stopped when the loop exits. Stopped is terminal: construct a
// new engine instead of restarting one.
const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// Engine is the single-consumer retry-dispatch loop. Producers enqueue
// envelopes (or the stop sentinel) concurrently; exactly one goroutine runs
// the consumer loop, which executes eligible work synchronously, cycles
// not-yet-due envelopes back onto the queue tail, drops exhausted ones, and
// contains per-task failures so one bad task never stalls the loop.
//
// One engine per process is the intended deployment; that is a wiring
// convention, not an enforced property, so tests can construct fresh engines
// freely.
type Engine struct {
	id    uuid.UUID
	queue *fifo

	stop  atomic.Bool
	state atomic.Int32

	logger      *slog.Logger
	idleBackoff time.Duration
}

// NewEngine constructs an idle engine with an empty queue.
func NewEngine(opts ...EngineOption) *Engine {
	options := &engineOptions{
		logger:      slog.Default(),
		idleBackoff: DefaultIdleBackoff,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Engine{
		id:          uuid.New(),
		queue:       newFIFO(),
		logger:      options.logger,
		idleBackoff: options.idleBackoff,
	}
}

// ID returns the engine's unique identifier, used in log records.
func (e *Engine) ID() uuid.UUID { return e.id }

// Enqueue appends an envelope to the queue tail. Non-blocking and safe to
// call from any number of producer goroutines. A nil envelope is accepted
// and skipped by the consumer loop rather than rejected here, so a buggy
// producer surfaces in the engine's log instead of crashing the producer.
func (e *Engine) Enqueue(env *Envelope) {
	e.queue.push(item{envelope: env})
}

// EnqueueSentinel appends the stop sentinel. The consumer loop terminates
// when it dequeues the sentinel, after draining everything ahead of it.
func (e *Engine) EnqueueSentinel() {
	e.queue.push(item{sentinel: true})
}

// RequestStop sets the cooperative stop signal. Idempotent. The signal is
// only observed between dequeues; a consumer blocked on an empty queue keeps
// blocking, so callers wanting a prompt exit should also EnqueueSentinel or
// cancel the Run context.
func (e *Engine) RequestStop() {
	e.stop.Store(true)
}

// QueueDepth returns the number of items currently queued.
func (e *Engine) QueueDepth() int {
	return e.queue.size()
}

// Run executes the consumer loop until a sentinel is dequeued, the stop
// signal is observed, or ctx is canceled. It must be called on exactly one
// goroutine per engine. Context cancellation counts as an orderly shutdown
// and returns nil.
func (e *Engine) Run(ctx context.Context) error {
	if !e.state.CompareAndSwap(stateIdle, stateRunning) {
		if e.state.Load() == stateStopped {
			return ErrEngineStopped
		}
		return ErrAlreadyRunning
	}
	defer e.state.Store(stateStopped)

	e.logger.Info("dispatch engine started",
		slog.String("engine_id", e.id.String()))

	for {
		if e.stop.Load() {
			e.logger.Info("stop requested, exiting loop",
				slog.String("engine_id", e.id.String()))
			return nil
		}

		it, err := e.queue.pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				e.logger.Info("context canceled, exiting loop",
					slog.String("engine_id", e.id.String()))
				return nil
			}
			return err
		}

		if it.sentinel {
			e.logger.Info("received stop sentinel, exiting loop",
				slog.String("engine_id", e.id.String()))
			return nil
		}

		env := it.envelope
		if env == nil || env.Task == nil {
			e.logger.Error("invalid item in queue, expected envelope",
				slog.String("engine_id", e.id.String()))
			continue
		}

		if env.Exhausted() {
			e.logger.Debug("dropping exhausted envelope",
				slog.String("engine_id", e.id.String()),
				slog.Int("attempt", env.Attempt),
				slog.Int("max_attempts", env.MaxAttempts))
			continue
		}

		if !env.Eligible(time.Now()) {
			// Not due yet: cycle to the tail, behind anything enqueued in
			// the interim. The short sleep bounds CPU usage when the queue
			// holds only far-future envelopes.
			e.logger.Debug("envelope not yet eligible, re-queued",
				slog.String("engine_id", e.id.String()),
				slog.Time("not_before", env.NotBefore))
			e.queue.push(item{envelope: env})
			if e.idleBackoff > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(e.idleBackoff):
				}
			}
			continue
		}

		e.dispatch(ctx, env)
	}
}

// dispatch runs one attempt and contains its failure. A failed attempt is
// rescheduled and re-queued unless the error is marked ErrPermanent, in
// which case the envelope is dropped; the exhaustion check on the next
// dequeue bounds total work either way.
func (e *Engine) dispatch(ctx context.Context, env *Envelope) {
	start := time.Now()
	err := e.execute(ctx, env)
	duration := time.Since(start)
	attempt := env.Attempt

	if err != nil {
		if errors.Is(err, ErrPermanent) {
			e.logger.Error("task failed permanently, dropping envelope",
				slog.String("engine_id", e.id.String()),
				slog.Int("attempt", attempt),
				slog.Duration("duration", duration),
				slog.String("error", err.Error()))
			return
		}

		e.logger.Error("task execution failed",
			slog.String("engine_id", e.id.String()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", env.MaxAttempts),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))

		env.Reschedule(time.Now())
		e.queue.push(item{envelope: env})
		return
	}

	e.logger.Info("task completed",
		slog.String("engine_id", e.id.String()),
		slog.Int("attempt", attempt),
		slog.Duration("duration", duration))
}

// execute invokes the envelope, converting a task panic into an error so a
// panicking task is handled like any other failure.
func (e *Engine) execute(ctx context.Context, env *Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in task: %v", r)
		}
	}()
	return env.Execute(ctx)
}
