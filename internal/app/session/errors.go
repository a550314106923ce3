package session

import "errors"

// Sentinel kinds for session errors.
var (
	ErrNotFound     = errors.New("session not found")
	ErrEnded        = errors.New("session ended")
	ErrBackpressure = errors.New("session queue full")
	ErrInvalid      = errors.New("invalid session request")
)
