package httpserver

import "errors"

var (
	// ErrStart indicates the server failed to start or terminated abnormally.
	ErrStart = errors.New("http server failed to start")
	// ErrShutdown indicates graceful shutdown did not complete in time.
	ErrShutdown = errors.New("http server shutdown failed")
)
