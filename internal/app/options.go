package service

import (
	"time"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSkills sets the skill registry. Defaults to the built-in table.
func WithSkills(r *skill.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.skills = r
		}
	}
}

// WithCorpus sets the expert corpus. Defaults to the embedded seed.
func WithCorpus(c *expert.Corpus) Option {
	return func(s *Service) {
		if c != nil {
			s.corpus = c
		}
	}
}

// WithTopN sets the default number of matches.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMaxTopN caps requested match and leaderboard sizes.
func WithMaxTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTopN = n
		}
	}
}

// WithMaxRecommendations sets the default recommendation count.
func WithMaxRecommendations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRecommendations = n
		}
	}
}

// WithRenormalize divides comparison sums by the applied weight sum.
func WithRenormalize(on bool) Option {
	return func(s *Service) {
		s.renormalize = on
	}
}

// WithDefaultMetricWeight sets the weight of metrics a skill table does not list.
func WithDefaultMetricWeight(w float64) Option {
	return func(s *Service) {
		if w >= 0 {
			s.defaultWeight = w
		}
	}
}

// WithWeeklyPracticeHours sets the learning path effort budget.
func WithWeeklyPracticeHours(h float64) Option {
	return func(s *Service) {
		if h > 0 {
			s.weeklyHours = h
		}
	}
}

// WithTrending sets the trending window and divisor.
func WithTrending(window time.Duration, divisor float64) Option {
	return func(s *Service) {
		if window > 0 {
			s.trendingWindow = window
		}
		if divisor > 0 {
			s.trendingDivisor = divisor
		}
	}
}

// WithHistoryLimit caps stored records per learner.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithDedupeSize sets the size of the analysis id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSessions configures live sessions.
func WithSessions(queueSize int, idleTimeout time.Duration, retained int) Option {
	return func(s *Service) {
		if queueSize > 0 {
			s.sessionQueueSize = queueSize
		}
		if idleTimeout >= 0 {
			s.sessionIdleTimeout = idleTimeout
		}
		if retained > 0 {
			s.retainedSessions = retained
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSkillWeights overlays per-skill metric weights (skill -> metric -> weight).
func WithSkillWeights(w map[string]map[string]float64) Option {
	return func(s *Service) {
		s.skillWeights = w
	}
}
