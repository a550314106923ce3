package session

import (
	"time"

	"github.com/okian/mentor/pkg/logger"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithQueueSize bounds pending chunks per session.
func WithQueueSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.queueSize = n
		}
	}
}

// WithIdleTimeout ends sessions that receive no chunk for d. Zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.idleTimeout = d
		}
	}
}

// WithRetained caps how many ended sessions stay readable.
func WithRetained(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retained = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
