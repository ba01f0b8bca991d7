// Package dispatch provides a single-consumer retry-dispatch engine for
// deferred, retryable units of work such as webhook deliveries.
//
// The package is organised around three main components:
//
//   - Task     — the unit of work: OnStart, Execute(attempt), OnStop
//   - Envelope — a task plus retry metadata: attempt counter, attempt
//     ceiling, and earliest-eligible time
//   - Engine   — the consumer loop that owns an unbounded FIFO queue,
//     decides eligibility, executes or re-queues, and isolates failures
//
// # Architecture
//
//  1. Producers enqueue envelopes from any goroutine; Enqueue never blocks.
//  2. Exactly one goroutine runs Engine.Run, which dequeues one item at a
//     time and executes eligible work synchronously on that goroutine.
//  3. Not-yet-due envelopes cycle to the queue tail, yielding cooperative
//     best-effort delay scheduling without a dedicated timer.
//  4. A failed attempt is rescheduled via the envelope's RetryDelay strategy
//     and re-queued; once the attempt counter exceeds the ceiling the
//     envelope is dropped, bounding total work per task.
//  5. Shutdown is cooperative: EnqueueSentinel drains work ahead of the
//     sentinel and stops the loop; RequestStop is observed between
//     dequeues; canceling the Run context stops immediately.
//
// A slow or hanging task stalls all pending work, since execution is
// deliberately synchronous. This trade-off suits low-volume delivery
// workloads; it is not a parallel worker pool.
//
// # Usage
//
//	engine := dispatch.NewEngine(dispatch.WithLogger(log))
//
//	env, err := dispatch.NewEnvelope(task,
//	    dispatch.WithMaxAttempts(3),
//	    dispatch.WithRetryDelay(webhook.FixedBackoff{Interval: 30 * time.Second}),
//	)
//	if err != nil {
//	    return err
//	}
//	engine.Enqueue(env)
//
//	go func() {
//	    if err := engine.Run(ctx); err != nil {
//	        log.Error("engine exited", slog.Any("error", err))
//	    }
//	}()
//
// # Error Handling
//
// Task failures, including panics, are contained within the loop and
// surface only through the engine's logger. Package-level sentinel errors
// (ErrAlreadyRunning, ErrEngineStopped, ErrTaskNil) signal misuse of the
// engine lifecycle and can be checked with errors.Is.
package dispatch
