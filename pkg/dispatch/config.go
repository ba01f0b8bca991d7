package dispatch

import "time"

// Config holds the configuration for the dispatch engine and the envelopes
// it processes.
type Config struct {
	IdleBackoff time.Duration `env:"DISPATCH_IDLE_BACKOFF" envDefault:"50ms"`
	MaxAttempts int           `env:"DISPATCH_MAX_ATTEMPTS" envDefault:"3"`
	RetryDelay  time.Duration `env:"DISPATCH_RETRY_DELAY" envDefault:"30s"`
}
