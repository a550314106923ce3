package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInFlight       = errors.New("analysis already in progress")
	ErrNoMetrics      = errors.New("no metrics for learner")
	ErrNoPattern      = errors.New("expert has no pattern for skill type")
)
