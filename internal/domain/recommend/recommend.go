// Package recommend combines several expert-selection strategies into a
// ranked, deduplicated recommendation list with learning paths.
package recommend

import (
	"sort"
	"time"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/skill"
)

// Defaults for recommendation shaping.
const (
	DefaultWeeklyPracticeHours = 5.0
	DefaultTrendingDivisor     = 10.0
)

// Corpus supplies expert profiles and per-skill patterns.
type Corpus interface {
	Expert(id string) (expert.Profile, bool)
	Patterns(skillType skill.Type) []expert.Pattern
}

// HistoryEntry is one past comparison of the learner for the skill.
type HistoryEntry struct {
	Metrics    metric.Vector `json:"metrics"`
	Similarity float64       `json:"similarity"`
	At         time.Time     `json:"at"`
}

// Input is everything a recommendation request needs. Activity maps expert
// ids to comparison counts inside the trending window.
type Input struct {
	SkillType skill.Type
	Metrics   metric.Vector
	History   []HistoryEntry
	Activity  map[string]int
	N         int
}

// Timeline is a coarse improvement estimate.
type Timeline struct {
	Timeframe  string `json:"timeframe"`
	Difficulty string `json:"difficulty"`
}

// Candidate is one recommended expert.
type Candidate struct {
	Expert         expert.Profile `json:"expert"`
	Confidence     float64        `json:"pattern_confidence"`
	ExpertAverage  float64        `json:"expert_average"`
	Strategy       StrategyName   `json:"strategy"`
	RawScore       float64        `json:"raw_score"`
	StrategyWeight float64        `json:"strategy_weight"`
	FinalScore     float64        `json:"final_score"`
	Reason         string         `json:"reason"`
	LearningPath   LearningPath   `json:"learning_path"`
	Timeline       Timeline       `json:"expected_timeline"`
}

// Personalization describes the learner signals used for the request.
type Personalization struct {
	ExperienceLevel   Level    `json:"experience_level"`
	PracticeFrequency int      `json:"practice_frequency"`
	ImprovementTrend  string   `json:"improvement_trend"`
	FocusAreas        []string `json:"focus_areas"`
}

// Bundle is the response to a recommendation request.
type Bundle struct {
	Recommendations []Candidate     `json:"recommendations"`
	UserLevel       Level           `json:"user_current_level"`
	SkillType       skill.Type      `json:"skill_type"`
	GeneratedAt     time.Time       `json:"generated_at"`
	Personalization Personalization `json:"personalization_factors"`
}

// Option applies a configuration option to the Recommender.
type Option func(*Recommender)

// WithWeeklyPracticeHours sets the practice budget used to convert weeks to hours.
func WithWeeklyPracticeHours(h float64) Option {
	return func(r *Recommender) {
		if h > 0 {
			r.weeklyHours = h
		}
	}
}

// WithTrendingDivisor sets the constant trending counts are divided by.
func WithTrendingDivisor(d float64) Option {
	return func(r *Recommender) {
		if d > 0 {
			r.trendingDivisor = d
		}
	}
}

// WithStrategies replaces the default strategy set.
func WithStrategies(s ...Strategy) Option {
	return func(r *Recommender) {
		if len(s) > 0 {
			r.strategies = s
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recommender) {
		if now != nil {
			r.now = now
		}
	}
}

// Recommender runs the strategies over the corpus. It holds only
// configuration and is safe for concurrent use.
type Recommender struct {
	corpus          Corpus
	strategies      []Strategy
	weeklyHours     float64
	trendingDivisor float64
	now             func() time.Time
}

// New creates a Recommender with the five default strategies.
func New(corpus Corpus, opts ...Option) *Recommender {
	r := &Recommender{
		corpus:          corpus,
		weeklyHours:     DefaultWeeklyPracticeHours,
		trendingDivisor: DefaultTrendingDivisor,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.strategies == nil {
		r.strategies = DefaultStrategies(r.trendingDivisor)
	}
	return r
}

func (r *Recommender) pool(skillType skill.Type) []PoolEntry {
	patterns := r.corpus.Patterns(skillType)
	out := make([]PoolEntry, 0, len(patterns))
	for _, p := range patterns {
		prof, ok := r.corpus.Expert(p.ExpertID)
		if !ok {
			continue
		}
		out = append(out, PoolEntry{Profile: prof, Pattern: p, Average: p.Metrics.Average()})
	}
	return out
}

// Recommend runs every strategy, weights each nomination, keeps the best
// nomination per expert, and returns the top in.N with learning paths.
func (r *Recommender) Recommend(in Input) Bundle {
	in.Metrics = in.Metrics.Clamped()
	pool := r.pool(in.SkillType)

	best := make(map[string]Candidate)
	var order []string
	for _, s := range r.strategies {
		for _, n := range s.Nominate(in, pool) {
			c := Candidate{
				Expert:         n.Entry.Profile,
				Confidence:     n.Entry.Pattern.Confidence,
				ExpertAverage:  n.Entry.Average,
				Strategy:       s.Name(),
				RawScore:       n.Score,
				StrategyWeight: s.Weight(),
				FinalScore:     n.Score * s.Weight(),
				Reason:         n.Reason,
			}
			prev, seen := best[c.Expert.ID]
			if !seen {
				order = append(order, c.Expert.ID)
			}
			if !seen || c.FinalScore > prev.FinalScore {
				best[c.Expert.ID] = c
			}
		}
	}

	out := make([]Candidate, 0, len(order))
	patterns := make(map[string]expert.Pattern, len(pool))
	for _, e := range pool {
		patterns[e.Profile.ID] = e.Pattern
	}
	for _, id := range order {
		out = append(out, best[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	if in.N < 0 {
		in.N = 0
	}
	if len(out) > in.N {
		out = out[:in.N]
	}
	for i := range out {
		p := patterns[out[i].Expert.ID]
		out[i].LearningPath = BuildLearningPath(out[i].Expert, p.Metrics, in.Metrics, r.weeklyHours)
		out[i].Timeline = EstimateTimeline(out[i].ExpertAverage, in.Metrics)
	}

	level := AssessLevel(in.Metrics)
	return Bundle{
		Recommendations: out,
		UserLevel:       level,
		SkillType:       in.SkillType,
		GeneratedAt:     r.now().UTC(),
		Personalization: Personalization{
			ExperienceLevel:   level,
			PracticeFrequency: len(in.History),
			ImprovementTrend:  Trend(in.History),
			FocusAreas:        nonNil(WeakMetrics(in.Metrics)),
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
