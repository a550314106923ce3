// Package scoring implements the weighted comparison of a learner's metric
// vector against an expert reference vector.
package scoring

import (
	"math"
	"time"

	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/skill"
)

// DefaultMetricWeight applies to metrics missing from a skill's weight table.
const DefaultMetricWeight = 0.1

// WeightSource supplies the weight table for a skill type. A nil table means
// the skill is unknown and metrics are weighted equally.
type WeightSource interface {
	Weights(t skill.Type) map[string]float64
}

// Option applies a configuration option to the Comparator.
type Option func(*Comparator)

// WithRenormalize divides the weighted sum by the sum of weights applied.
// Off by default, in which case the weighted sum is reported as is.
func WithRenormalize(on bool) Option {
	return func(c *Comparator) {
		c.renormalize = on
	}
}

// WithDefaultWeight sets the weight used for metrics a table does not list.
func WithDefaultWeight(w float64) Option {
	return func(c *Comparator) {
		if w >= 0 {
			c.defaultWeight = w
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Comparator) {
		if now != nil {
			c.now = now
		}
	}
}

// MetricComparison is the per-metric part of a comparison.
type MetricComparison struct {
	UserValue     float64 `json:"user_value"`
	ExpertValue   float64 `json:"expert_value"`
	Similarity    float64 `json:"similarity"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
	// Gap is expert minus user; positive means the learner is behind.
	Gap float64 `json:"gap"`
}

// Result is the outcome of one comparison.
type Result struct {
	// Overall is the reported similarity, always within [0,1].
	Overall float64 `json:"overall_similarity"`
	// RawOverall is the unclamped weighted sum before any renormalization.
	RawOverall float64 `json:"raw_overall"`
	// WeightSum is the total weight applied across the breakdown.
	WeightSum    float64                     `json:"weight_sum"`
	Renormalized bool                        `json:"renormalized"`
	Breakdown    map[string]MetricComparison `json:"metric_breakdown"`
	SkillType    skill.Type                  `json:"skill_type"`
	Timestamp    time.Time                   `json:"timestamp"`
}

// Comparator computes weighted similarity between metric vectors. It holds
// only configuration and is safe for concurrent use.
type Comparator struct {
	weights       WeightSource
	defaultWeight float64
	renormalize   bool
	now           func() time.Time
}

// NewComparator creates a Comparator over the given weight tables.
func NewComparator(weights WeightSource, opts ...Option) *Comparator {
	c := &Comparator{
		weights:       weights,
		defaultWeight: DefaultMetricWeight,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Renormalizes reports whether overall scores are divided by the weight sum.
func (c *Comparator) Renormalizes() bool { return c.renormalize }

// Compare scores user against expert for skillType. Every metric present in
// user contributes; absent expert values read as metric.Neutral.
func (c *Comparator) Compare(user, expert metric.Vector, skillType skill.Type) Result {
	var table map[string]float64
	if c.weights != nil {
		table = c.weights.Weights(skillType)
	}
	equal := 0.0
	if len(table) == 0 && len(user) > 0 {
		equal = 1 / float64(len(user))
	}

	res := Result{
		Breakdown:    make(map[string]MetricComparison, len(user)),
		SkillType:    skillType,
		Timestamp:    c.now().UTC(),
		Renormalized: c.renormalize,
	}
	for _, name := range user.Keys() {
		u := user.Get(name)
		e := expert.Get(name)
		w := equal
		if len(table) > 0 {
			var ok bool
			if w, ok = table[name]; !ok {
				w = c.defaultWeight
			}
		}
		sim := 1 - math.Abs(u-e)
		mc := MetricComparison{
			UserValue:     u,
			ExpertValue:   e,
			Similarity:    sim,
			Weight:        w,
			WeightedScore: sim * w,
			Gap:           e - u,
		}
		res.Breakdown[name] = mc
		res.RawOverall += mc.WeightedScore
		res.WeightSum += w
	}

	overall := res.RawOverall
	if c.renormalize && res.WeightSum > 0 {
		overall = res.RawOverall / res.WeightSum
	}
	res.Overall = metric.Clamp(overall)
	return res
}
