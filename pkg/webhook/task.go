package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/hookrelay/pkg/dispatch"
)

// Event is the payload delivered to subscriber callbacks.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Target    string          `json:"target"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DeliveryTask delivers one event to one subscriber callback URL. It is the
// webhook variant of the dispatch task contract: the engine wraps it in an
// envelope and drives retries; the task itself performs exactly one delivery
// attempt per Execute call.
type DeliveryTask struct {
	sender      *Sender
	logger      *slog.Logger
	event       Event
	callbackURL string
	secret      string
	timeout     time.Duration
}

var _ dispatch.Task = (*DeliveryTask)(nil)

// DeliveryTaskOption configures delivery task creation.
type DeliveryTaskOption func(*DeliveryTask)

// WithDeliveryLogger sets the logger used by the task's hooks.
func WithDeliveryLogger(logger *slog.Logger) DeliveryTaskOption {
	return func(t *DeliveryTask) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithDeliverySecret enables HMAC signing of the delivery with the
// subscription's secret.
func WithDeliverySecret(secret string) DeliveryTaskOption {
	return func(t *DeliveryTask) {
		t.secret = secret
	}
}

// WithDeliveryTimeout overrides the per-attempt HTTP timeout.
func WithDeliveryTimeout(d time.Duration) DeliveryTaskOption {
	return func(t *DeliveryTask) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewDeliveryTask creates a task that delivers event to callbackURL.
func NewDeliveryTask(sender *Sender, event Event, callbackURL string, opts ...DeliveryTaskOption) (*DeliveryTask, error) {
	if sender == nil {
		return nil, ErrSenderNil
	}

	t := &DeliveryTask{
		sender:      sender,
		logger:      slog.Default(),
		event:       event,
		callbackURL: callbackURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// OnStart validates the callback URL before any network work happens, so a
// subscription with a broken URL fails without burning an HTTP request.
func (t *DeliveryTask) OnStart(ctx context.Context) error {
	if err := ValidateCallbackURL(t.callbackURL); err != nil {
		return fmt.Errorf("%w: %w", dispatch.ErrPermanent, err)
	}
	return nil
}

// Execute performs one delivery attempt.
func (t *DeliveryTask) Execute(ctx context.Context, attempt int) error {
	opts := []SendOption{
		WithHeader("X-Hookrelay-Target", t.event.Target),
		WithHeader("X-Hookrelay-Attempt", strconv.Itoa(attempt)),
	}
	if t.timeout > 0 {
		opts = append(opts, WithTimeout(t.timeout))
	}
	if t.secret != "" {
		opts = append(opts, WithSignature(t.secret))
	}

	if err := t.sender.Send(ctx, t.callbackURL, t.event, opts...); err != nil {
		// Endpoint rejections that cannot be retried away (4xx except the
		// transient few) are surfaced as permanent so the engine drops the
		// envelope instead of burning the remaining attempts.
		if IsPermanent(err) {
			return fmt.Errorf("%w: %w", dispatch.ErrPermanent, err)
		}
		return err
	}

	t.logger.InfoContext(ctx, "event delivered",
		slog.String("event_id", t.event.ID.String()),
		slog.String("target", t.event.Target),
		slog.Int("attempt", attempt))
	return nil
}

// OnStop runs after every attempt, successful or not.
func (t *DeliveryTask) OnStop(ctx context.Context) error {
	t.logger.DebugContext(ctx, "delivery task finished",
		slog.String("event_id", t.event.ID.String()),
		slog.String("target", t.event.Target))
	return nil
}
