// Package realtime classifies live-session metrics against per-skill
// threshold bands and emits prioritized improvement suggestions.
package realtime

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/mentor/internal/domain/skill"
)

// Level is a metric's performance level against its band.
type Level string

// Performance levels.
const (
	LevelExcellent        Level = "excellent"
	LevelGood             Level = "good"
	LevelFair             Level = "fair"
	LevelNeedsImprovement Level = "needs_improvement"
)

// Priority ranks a suggestion.
type Priority string

// Suggestion priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Classification constants on the native 0-100 scale.
const (
	DefaultMaxSuggestions = 5
	maxScore              = 100.0
	defaultOptimal        = 90.0
	defaultMinimum        = 50.0
	unbandedTargetFactor  = 1.2
	goodFraction          = 0.9
	highDelta             = 15.0
	mediumDelta           = 8.0
)

// Sample is one chunk of live metrics on their native scale.
type Sample map[string]float64

// Validate rejects empty names and non-finite values.
func (s Sample) Validate() error {
	for k, v := range s {
		if k == "" {
			return fmt.Errorf("%w: empty metric name", ErrInvalidSample)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidSample, k)
		}
	}
	return nil
}

// Assessment is one metric's classification.
type Assessment struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Target float64 `json:"target"`
	Level  Level   `json:"level"`
	Delta  float64 `json:"improvement_delta"`
	// Banded is false when the skill has no band for the metric.
	Banded bool `json:"banded"`
}

// Suggestion is an actionable improvement hint for one metric.
type Suggestion struct {
	Metric     string   `json:"metric"`
	Text       string   `json:"text"`
	Priority   Priority `json:"priority"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Impact     float64  `json:"impact"`
}

// Result is the classification of one sample.
type Result struct {
	SkillType    skill.Type   `json:"skill_type"`
	OverallScore float64      `json:"overall_score"`
	Suggestions  []Suggestion `json:"suggestions"`
	Assessments  []Assessment `json:"assessments"`
	At           time.Time    `json:"at"`
}

// ProfileSource supplies band and importance tables by skill type.
type ProfileSource interface {
	Lookup(t skill.Type) (skill.Profile, bool)
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithMaxSuggestions caps the number of suggestions per sample.
func WithMaxSuggestions(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxSuggestions = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// Classifier is stateless and safe for concurrent use.
type Classifier struct {
	profiles       ProfileSource
	maxSuggestions int
	now            func() time.Time
}

// New creates a Classifier over the given skill tables.
func New(profiles ProfileSource, opts ...Option) *Classifier {
	c := &Classifier{
		profiles:       profiles,
		maxSuggestions: DefaultMaxSuggestions,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify assesses every metric of s, scores the sample and suggests
// improvements for the metrics with the largest deltas. An empty sample
// scores 0 with no suggestions.
func (c *Classifier) Classify(s Sample, skillType skill.Type) Result {
	prof, _ := c.profiles.Lookup(skillType)
	res := Result{
		SkillType:    skillType,
		OverallScore: overall(s, prof.Importance),
		Suggestions:  []Suggestion{},
		Assessments:  make([]Assessment, 0, len(s)),
		At:           c.now().UTC(),
	}
	for _, name := range slices.Sorted(maps.Keys(s)) {
		res.Assessments = append(res.Assessments, assess(name, s[name], prof.Thresholds))
	}

	ranked := slices.Clone(res.Assessments)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Delta > ranked[j].Delta })
	for _, a := range ranked {
		if len(res.Suggestions) == c.maxSuggestions || a.Delta <= 0 {
			break
		}
		res.Suggestions = append(res.Suggestions, suggest(a))
	}
	return res
}

func assess(name string, v float64, bands map[string]skill.Band) Assessment {
	band, ok := bands[name]
	a := Assessment{Metric: name, Value: v, Banded: ok}
	if ok {
		a.Target = band.Optimal
	} else {
		a.Target = v * unbandedTargetFactor
		band = skill.Band{Minimum: defaultMinimum, Optimal: defaultOptimal}
	}
	switch {
	case v >= band.Optimal:
		a.Level = LevelExcellent
	case v >= goodFraction*band.Optimal:
		a.Level = LevelGood
	case v >= band.Minimum:
		a.Level = LevelFair
	default:
		a.Level = LevelNeedsImprovement
	}
	a.Delta = math.Max(0, a.Target-v)
	return a
}

func suggest(a Assessment) Suggestion {
	t, ok := templates[a.Metric]
	if !ok {
		t = genericTemplate
	}
	text := strings.NewReplacer(
		"{metric}", strings.ReplaceAll(a.Metric, "_", " "),
		"{current}", format(a.Value),
		"{target}", format(a.Target),
		"{potential}", format(a.Delta),
	).Replace(t.text)
	return Suggestion{
		Metric:     a.Metric,
		Text:       text,
		Priority:   priority(a),
		Category:   t.category,
		Confidence: confidence(a.Delta),
		Impact:     a.Delta,
	}
}

func priority(a Assessment) Priority {
	switch {
	case a.Level == LevelNeedsImprovement || a.Delta > highDelta:
		return PriorityHigh
	case a.Delta > mediumDelta:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func confidence(delta float64) float64 {
	switch {
	case delta > 20:
		return 0.95
	case delta > 10:
		return 0.85
	case delta > 5:
		return 0.75
	default:
		return 0.65
	}
}

// overall is the importance-weighted mean with values above 100 halved and
// capped, clamped to [0,100] and rounded to one decimal.
func overall(s Sample, importance map[string]float64) float64 {
	total, weights := 0.0, 0.0
	for name, v := range s {
		w, ok := importance[name]
		if !ok {
			w = 1.0
		}
		if v > maxScore {
			v = math.Min(v/2, maxScore)
		}
		total += v * w
		weights += w
	}
	if weights <= 0 {
		return 0
	}
	score := math.Min(math.Max(total/weights, 0), maxScore)
	return round1(score)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func format(v float64) string {
	return strconv.FormatFloat(round1(v), 'f', -1, 64)
}
