package dispatch

import (
	"log/slog"
	"time"
)

// DefaultIdleBackoff is the pause inserted after re-queueing a not-yet-due
// envelope. It trades a little scheduling latency for bounded CPU usage when
// the queue contains only future work.
const DefaultIdleBackoff = 50 * time.Millisecond

type engineOptions struct {
	logger      *slog.Logger
	idleBackoff time.Duration
}

// EngineOption configures engine creation.
type EngineOption func(*engineOptions)

// WithLogger sets the logger used by the consumer loop. Nil loggers are
// ignored and the process default is used instead.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithIdleBackoff sets the pause after cycling an ineligible envelope.
// Zero disables the pause entirely; negative values are ignored.
func WithIdleBackoff(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		if d >= 0 {
			o.idleBackoff = d
		}
	}
}
