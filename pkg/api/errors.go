package api

import "errors"

var (
	// ErrInvalidRequest indicates the request body failed decoding or
	// validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownTarget indicates a publish for a target with no registered
	// publication.
	ErrUnknownTarget = errors.New("unknown publication target")
)
