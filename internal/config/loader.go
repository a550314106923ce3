package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "MENTOR_"
	envConfig  = "MENTOR_CONFIG"
	keyDivider = "."
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if MENTOR_CONFIG is set
//  3. env (prefix MENTOR_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(keyDivider)

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MENTOR_TOP_N -> top_n. Underscores are kept to match the koanf tags.
	envProvider := env.Provider(envPrefix, keyDivider, func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TopN <= 0:
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case c.MaxTopN < c.TopN:
		return fmt.Errorf("%w: max_top_n must be >= top_n", ErrInvalidConfig)
	case c.MaxRecommendations <= 0:
		return fmt.Errorf("%w: max_recommendations must be positive", ErrInvalidConfig)
	case c.DefaultMetricWeight < 0:
		return fmt.Errorf("%w: default_metric_weight must not be negative", ErrInvalidConfig)
	case c.WeeklyPracticeHours <= 0:
		return fmt.Errorf("%w: weekly_practice_hours must be positive", ErrInvalidConfig)
	case c.TrendingWindow <= 0:
		return fmt.Errorf("%w: trending_window must be positive", ErrInvalidConfig)
	case c.TrendingDivisor <= 0:
		return fmt.Errorf("%w: trending_divisor must be positive", ErrInvalidConfig)
	case c.HistoryLimit <= 0 || c.DedupeSize <= 0:
		return fmt.Errorf("%w: history_limit and dedupe_size must be positive", ErrInvalidConfig)
	case c.SessionQueueSize <= 0 || c.RetainedSessions <= 0:
		return fmt.Errorf("%w: session_queue_size and retained_sessions must be positive", ErrInvalidConfig)
	case c.RateLimit < 0 || (c.RateLimit > 0 && c.RateLimitBurst <= 0):
		return fmt.Errorf("%w: rate_limit must be >= 0 with a positive burst", ErrInvalidConfig)
	}
	for skill, weights := range c.SkillWeights {
		for metric, w := range weights {
			if w < 0 {
				return fmt.Errorf("%w: skill_weights.%s.%s is negative", ErrInvalidConfig, skill, metric)
			}
		}
	}
	return nil
}
