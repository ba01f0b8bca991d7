// Package httpserver wraps net/http with graceful shutdown, environment-driven
// configuration, lifecycle hooks, and health-check handlers.
//
// Server is constructed with New or NewFromConfig and functional options.
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains in-flight requests within the shutdown timeout.
// Startup and shutdown failures are wrapped with the ErrStart and ErrShutdown
// sentinels for errors.Is inspection.
//
// HealthCheckHandler doubles as a liveness probe (no dependency functions) and
// a readiness probe (each dependency function must pass), which keeps the
// delivery service honest about whether its backing store is reachable.
package httpserver
