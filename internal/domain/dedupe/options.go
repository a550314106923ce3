package dedupe

type config struct {
	maxSize int
}

// Option applies a configuration option to the deduper.
type Option func(*config)

// WithMaxSize sets the maximum number of ids to keep in memory.
// If maxSize > 0: bounded mode, least recently seen ids are evicted first.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}
