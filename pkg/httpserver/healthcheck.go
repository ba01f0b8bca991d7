package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/hookrelay/pkg/logger"
)

// HealthCheckHandler serves liveness and readiness probes.
//
// Without probe functions the handler answers 200 "ALIVE". With probes, every
// function is run against the request context; all passing yields 200 "READY",
// any failure yields 503 "NOT_READY".
func HealthCheckHandler(log *slog.Logger, probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(probes) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness probe failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
