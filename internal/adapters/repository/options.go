package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithHistoryLimit caps the records kept per learner. Oldest records are
// dropped first. Zero or negative keeps everything.
func WithHistoryLimit(n int) Option {
	return func(s *MemoryStore) {
		s.historyLimit = n
	}
}

// WithActivityRetention sets how long comparison activity is kept for
// trending queries.
func WithActivityRetention(d time.Duration) Option {
	return func(s *MemoryStore) {
		if d > 0 {
			s.activityRetention = d
		}
	}
}

// WithMaintenanceInterval sets the interval for background pruning and
// metrics updates.
func WithMaintenanceInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.maintenanceInterval = interval
		}
	}
}

// WithClock overrides the time source used for defaults and pruning.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
