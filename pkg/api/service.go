package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/hookrelay/pkg/dispatch"
	"github.com/dmitrymomot/hookrelay/pkg/httpserver"
	"github.com/dmitrymomot/hookrelay/pkg/store"
	"github.com/dmitrymomot/hookrelay/pkg/webhook"
)

// Service wires the HTTP handlers to the stores, the webhook sender, and the
// dispatch engine.
type Service struct {
	logger        *slog.Logger
	subscriptions store.Repository[store.Subscription]
	publications  store.Repository[store.Publication]
	engine        *dispatch.Engine
	sender        *webhook.Sender

	maxAttempts     int
	retryDelay      dispatch.RetryDelay
	deliveryTimeout time.Duration
	probes          []func(context.Context) error
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for request handling.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxAttempts caps retries per delivery envelope.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the delay strategy applied between delivery attempts.
func WithRetryDelay(d dispatch.RetryDelay) Option {
	return func(s *Service) {
		if d != nil {
			s.retryDelay = d
		}
	}
}

// WithDeliveryTimeout bounds each delivery attempt.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.deliveryTimeout = d
		}
	}
}

// WithHealthProbe adds a readiness probe served under /healthz.
func WithHealthProbe(probe func(context.Context) error) Option {
	return func(s *Service) {
		if probe != nil {
			s.probes = append(s.probes, probe)
		}
	}
}

// New returns a Service over the given stores, sender, and engine.
func New(
	subscriptions store.Repository[store.Subscription],
	publications store.Repository[store.Publication],
	sender *webhook.Sender,
	engine *dispatch.Engine,
	opts ...Option,
) *Service {
	s := &Service{
		logger:        slog.Default(),
		subscriptions: subscriptions,
		publications:  publications,
		engine:        engine,
		sender:        sender,
		maxAttempts:   dispatch.DefaultMaxAttempts,
		retryDelay:    webhook.DefaultBackoffStrategy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the mountable router for the relay API.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(s.logger, s.probes...))

	r.Route("/subscriptions", func(r chi.Router) {
		r.Post("/", s.createSubscription)
		r.Get("/", s.listSubscriptions)
	})

	r.Route("/publications", func(r chi.Router) {
		r.Post("/", s.createPublication)
		r.Get("/", s.listPublications)
	})

	r.Post("/publish/{target}", s.publish)

	return r
}
