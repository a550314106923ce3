// Package config defines service configuration and its layered loading.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CorpusPath points at a YAML expert corpus. Empty uses the embedded seed.
	CorpusPath string `koanf:"corpus_path"`
	// SkillsPath points at a YAML skill table file merged over the built-in table.
	SkillsPath string `koanf:"skills_path"`

	// TopN is the default number of expert matches returned.
	TopN int `koanf:"top_n"`
	// MaxTopN caps any requested match or leaderboard size.
	MaxTopN int `koanf:"max_top_n"`
	// MaxRecommendations is the default recommendation list length.
	MaxRecommendations int `koanf:"max_recommendations"`

	// NormalizeOverall divides the weighted similarity sum by the applied weight sum.
	NormalizeOverall bool `koanf:"normalize_overall"`
	// DefaultMetricWeight applies to metrics a skill's weight table does not list.
	DefaultMetricWeight float64 `koanf:"default_metric_weight"`
	// SkillWeights overrides per-skill metric weights: skill -> metric -> weight.
	SkillWeights map[string]map[string]float64 `koanf:"skill_weights"`

	// WeeklyPracticeHours converts learning path weeks into effort hours.
	WeeklyPracticeHours float64 `koanf:"weekly_practice_hours"`
	// TrendingWindow bounds the activity counted by the trending strategy.
	TrendingWindow time.Duration `koanf:"trending_window"`
	// TrendingDivisor normalizes trending activity counts into scores.
	TrendingDivisor float64 `koanf:"trending_divisor"`

	// HistoryLimit caps retained comparison records per learner.
	HistoryLimit int `koanf:"history_limit"`
	// DedupeSize sets the size of the analysis id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SessionQueueSize bounds pending chunks per live session.
	SessionQueueSize int `koanf:"session_queue_size"`
	// SessionIdleTimeout ends sessions that receive no chunks.
	SessionIdleTimeout time.Duration `koanf:"session_idle_timeout"`
	// RetainedSessions caps ended sessions kept readable.
	RetainedSessions int `koanf:"retained_sessions"`

	// RateLimit is the sustained requests per second allowed by the API. Zero disables it.
	RateLimit float64 `koanf:"rate_limit"`
	// RateLimitBurst is the token bucket size.
	RateLimitBurst int `koanf:"rate_limit_burst"`
	// AllowedOrigins lists browser origins allowed to open session streams.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		TopN:                5,
		MaxTopN:             100,
		MaxRecommendations:  10,
		NormalizeOverall:    false,
		DefaultMetricWeight: 0.1,
		SkillWeights:        map[string]map[string]float64{},
		WeeklyPracticeHours: 5,
		TrendingWindow:      30 * 24 * time.Hour,
		TrendingDivisor:     10,
		HistoryLimit:        200,
		DedupeSize:          100_000,
		SessionQueueSize:    64,
		SessionIdleTimeout:  10 * time.Minute,
		RetainedSessions:    1_000,
		RateLimit:           200,
		RateLimitBurst:      400,
	}
}
