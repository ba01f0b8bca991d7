package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hookrelay/pkg/dispatch"
)

// countingTask tracks concurrent-safe execution counts for engine tests.
type countingTask struct {
	executions atomic.Int32
	execErr    error
}

func (t *countingTask) OnStart(ctx context.Context) error { return nil }

func (t *countingTask) Execute(ctx context.Context, attempt int) error {
	t.executions.Add(1)
	return t.execErr
}

func (t *countingTask) OnStop(ctx context.Context) error { return nil }

type panickingTask struct {
	executions atomic.Int32
}

func (t *panickingTask) OnStart(ctx context.Context) error { return nil }

func (t *panickingTask) Execute(ctx context.Context, attempt int) error {
	t.executions.Add(1)
	panic("task blew up")
}

func (t *panickingTask) OnStop(ctx context.Context) error { return nil }

func newTestEngine(opts ...dispatch.EngineOption) *dispatch.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return dispatch.NewEngine(append([]dispatch.EngineOption{
		dispatch.WithLogger(logger),
		dispatch.WithIdleBackoff(time.Millisecond),
	}, opts...)...)
}

func mustEnvelope(t *testing.T, task dispatch.Task, opts ...dispatch.EnvelopeOption) *dispatch.Envelope {
	t.Helper()
	env, err := dispatch.NewEnvelope(task, opts...)
	require.NoError(t, err)
	return env
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	t.Run("processes envelopes then terminates on sentinel", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine()
		tasks := make([]*countingTask, 5)
		for i := range tasks {
			tasks[i] = &countingTask{}
			engine.Enqueue(mustEnvelope(t, tasks[i],
				dispatch.WithNotBefore(time.Now().Add(-time.Second))))
		}
		engine.EnqueueSentinel()

		require.NoError(t, engine.Run(context.Background()))
		for i, task := range tasks {
			assert.Equal(t, int32(1), task.executions.Load(), "task %d", i)
		}
	})

	t.Run("eligible envelope executed exactly once", func(t *testing.T) {
		t.Parallel()

		task := &countingTask{}
		engine := newTestEngine()
		engine.Enqueue(mustEnvelope(t, task,
			dispatch.WithMaxAttempts(3),
			dispatch.WithNotBefore(time.Now().Add(-time.Second))))
		engine.EnqueueSentinel()

		require.NoError(t, engine.Run(context.Background()))
		assert.Equal(t, int32(1), task.executions.Load())
	})

	t.Run("zero ceiling envelope never runs twice", func(t *testing.T) {
		t.Parallel()

		task := &countingTask{execErr: errors.New("always fails")}
		engine := newTestEngine()
		engine.Enqueue(mustEnvelope(t, task,
			dispatch.WithMaxAttempts(0),
			dispatch.WithRetryDelay(delayFunc(func(int) time.Duration { return 0 }))))

		done := make(chan error, 1)
		go func() { done <- engine.Run(context.Background()) }()

		// First attempt fails and re-queues the envelope, which is now
		// exhausted and must be dropped on the next dequeue.
		require.Eventually(t, func() bool {
			return task.executions.Load() == 1
		}, 2*time.Second, 10*time.Millisecond)

		engine.EnqueueSentinel()
		require.NoError(t, <-done)
		assert.Equal(t, int32(1), task.executions.Load())
	})

	t.Run("failing task does not block later tasks", func(t *testing.T) {
		t.Parallel()

		failing := &countingTask{execErr: errors.New("boom")}
		healthy := &countingTask{}
		engine := newTestEngine()
		engine.Enqueue(mustEnvelope(t, failing, dispatch.WithMaxAttempts(0)))
		engine.Enqueue(mustEnvelope(t, healthy))
		engine.EnqueueSentinel()

		require.NoError(t, engine.Run(context.Background()))
		assert.Equal(t, int32(1), failing.executions.Load())
		assert.Equal(t, int32(1), healthy.executions.Load())
	})

	t.Run("panicking task is contained", func(t *testing.T) {
		t.Parallel()

		task := &panickingTask{}
		healthy := &countingTask{}
		engine := newTestEngine()
		engine.Enqueue(mustEnvelope(t, task, dispatch.WithMaxAttempts(0)))
		engine.Enqueue(mustEnvelope(t, healthy))
		engine.EnqueueSentinel()

		require.NoError(t, engine.Run(context.Background()))
		assert.Equal(t, int32(1), task.executions.Load())
		assert.Equal(t, int32(1), healthy.executions.Load())
	})

	t.Run("future envelope is re-queued not executed", func(t *testing.T) {
		t.Parallel()

		task := &countingTask{}
		engine := newTestEngine()
		engine.Enqueue(mustEnvelope(t, task,
			dispatch.WithNotBefore(time.Now().Add(10*time.Second))))
		engine.EnqueueSentinel()

		// The future envelope cycles behind the sentinel, so the loop ends
		// without the task ever being called.
		require.NoError(t, engine.Run(context.Background()))
		assert.Equal(t, int32(0), task.executions.Load())
	})

	t.Run("nil envelope is skipped", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine()
		engine.Enqueue(nil)
		engine.EnqueueSentinel()

		require.NoError(t, engine.Run(context.Background()))
	})

	t.Run("failed attempt advances not before", func(t *testing.T) {
		t.Parallel()

		task := &countingTask{execErr: errors.New("flaky")}
		env := mustEnvelope(t, task,
			dispatch.WithMaxAttempts(3),
			dispatch.WithRetryDelay(delayFunc(func(int) time.Duration { return time.Hour })))

		engine := newTestEngine()
		engine.Enqueue(env)

		done := make(chan error, 1)
		go func() { done <- engine.Run(context.Background()) }()

		require.Eventually(t, func() bool {
			return task.executions.Load() == 1
		}, 2*time.Second, 10*time.Millisecond)

		engine.EnqueueSentinel()
		require.NoError(t, <-done)

		// Re-queued with NotBefore pushed an hour out, so only one attempt
		// happened before the sentinel.
		assert.Equal(t, int32(1), task.executions.Load())
		assert.True(t, env.NotBefore.After(time.Now().Add(30*time.Minute)))
	})

	t.Run("permanent failure drops envelope without retrying", func(t *testing.T) {
		t.Parallel()

		task := &countingTask{execErr: fmt.Errorf("%w: endpoint rejected delivery", dispatch.ErrPermanent)}
		engine := newTestEngine()
		engine.Enqueue(mustEnvelope(t, task,
			dispatch.WithMaxAttempts(5),
			dispatch.WithRetryDelay(delayFunc(func(int) time.Duration { return 0 }))))
		engine.EnqueueSentinel()

		// With a zero retry delay and attempts left in the budget, the only
		// reason for a single execution is the permanent-failure drop.
		require.NoError(t, engine.Run(context.Background()))
		assert.Equal(t, int32(1), task.executions.Load())
	})
}

// debugCountingHandler counts debug-level records matching a message.
type debugCountingHandler struct {
	msg   string
	count *atomic.Int32
}

func (h debugCountingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h debugCountingHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Level == slog.LevelDebug && r.Message == h.msg {
		h.count.Add(1)
	}
	return nil
}
func (h debugCountingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h debugCountingHandler) WithGroup(string) slog.Handler      { return h }

func TestEngine_IdleBackoffBoundsCycling(t *testing.T) {
	t.Parallel()

	var cycles atomic.Int32
	logger := slog.New(debugCountingHandler{
		msg:   "envelope not yet eligible, re-queued",
		count: &cycles,
	})

	const backoff = 10 * time.Millisecond
	engine := dispatch.NewEngine(
		dispatch.WithLogger(logger),
		dispatch.WithIdleBackoff(backoff),
	)

	task := &countingTask{}
	env, err := dispatch.NewEnvelope(task, dispatch.WithNotBefore(time.Now().Add(time.Hour)))
	require.NoError(t, err)
	engine.Enqueue(env)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	const window = 200 * time.Millisecond
	time.Sleep(window)
	cancel()
	require.NoError(t, <-done)

	// A far-future envelope must cycle the loop, but the idle backoff keeps
	// the cycle count near window/backoff instead of a hot spin.
	got := cycles.Load()
	assert.Greater(t, got, int32(0), "envelope should have been re-queued at least once")
	assert.LessOrEqual(t, got, int32(window/backoff)*3, "loop is busy-spinning despite idle backoff")
	assert.Equal(t, int32(0), task.executions.Load())
}

func TestEngine_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("stop signal observed before dequeue", func(t *testing.T) {
		t.Parallel()

		task := &countingTask{}
		engine := newTestEngine()
		engine.Enqueue(mustEnvelope(t, task))
		engine.RequestStop()

		require.NoError(t, engine.Run(context.Background()))
		assert.Equal(t, int32(0), task.executions.Load())
	})

	t.Run("stopped engine cannot be restarted", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine()
		engine.EnqueueSentinel()
		require.NoError(t, engine.Run(context.Background()))

		assert.ErrorIs(t, engine.Run(context.Background()), dispatch.ErrEngineStopped)
	})

	t.Run("concurrent run rejected", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine()
		done := make(chan error, 1)
		go func() { done <- engine.Run(context.Background()) }()

		require.Eventually(t, func() bool {
			return errors.Is(engine.Run(context.Background()), dispatch.ErrAlreadyRunning)
		}, 2*time.Second, 10*time.Millisecond)

		engine.EnqueueSentinel()
		require.NoError(t, <-done)
	})

	t.Run("context cancel is orderly shutdown", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine()
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- engine.Run(ctx) }()

		cancel()
		require.NoError(t, <-done)
	})

	t.Run("queue depth reflects enqueued items", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine()
		assert.Equal(t, 0, engine.QueueDepth())

		engine.Enqueue(mustEnvelope(t, &countingTask{}))
		engine.EnqueueSentinel()
		assert.Equal(t, 2, engine.QueueDepth())
	})
}

func TestEngine_ConcurrentProducers(t *testing.T) {
	t.Parallel()

	const producers = 10
	const perProducer = 20

	task := &countingTask{}
	engine := newTestEngine()

	done := make(chan error, 1)
	go func() { done <- engine.Run(context.Background()) }()

	envelopes := make([]*dispatch.Envelope, producers*perProducer)
	for i := range envelopes {
		envelopes[i] = mustEnvelope(t, task,
			dispatch.WithNotBefore(time.Now().Add(-time.Second)))
	}

	for p := range producers {
		go func(batch []*dispatch.Envelope) {
			for _, env := range batch {
				engine.Enqueue(env)
			}
		}(envelopes[p*perProducer : (p+1)*perProducer])
	}

	require.Eventually(t, func() bool {
		return task.executions.Load() == producers*perProducer
	}, 5*time.Second, 10*time.Millisecond)

	engine.EnqueueSentinel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(producers*perProducer), task.executions.Load())
}
