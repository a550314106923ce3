package recommend

import (
	"fmt"
	"sort"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/metric"
)

// StrategyName tags the heuristic that nominated a candidate.
type StrategyName string

// Known strategies.
const (
	StrategyPeer         StrategyName = "peer_level"
	StrategyAspirational StrategyName = "aspirational"
	StrategyProgressive  StrategyName = "progressive"
	StrategyWeakness     StrategyName = "weakness_targeted"
	StrategyTrending     StrategyName = "trending"
)

// Strategy combination weights. Weakness-targeted sits outside the
// peer/aspirational/progressive/trending partition.
const (
	WeightPeer         = 0.4
	WeightAspirational = 0.3
	WeightProgressive  = 0.2
	WeightTrending     = 0.1
	WeightWeakness     = 0.1
)

// Strategy thresholds.
const (
	peerBand          = 0.2
	masterTier        = 0.85
	progressiveMin    = 0.1
	progressiveMax    = 0.3
	weakMetric        = 0.6
	strongExpertValue = 0.8
)

// PoolEntry is one expert pattern eligible for recommendation.
type PoolEntry struct {
	Profile expert.Profile
	Pattern expert.Pattern
	// Average is the mean of the pattern's metrics.
	Average float64
}

// Nomination is a strategy's raw proposal for one expert.
type Nomination struct {
	Entry  PoolEntry
	Score  float64
	Reason string
}

// Strategy proposes scored candidates from the expert pool.
type Strategy interface {
	Name() StrategyName
	Weight() float64
	Nominate(in Input, pool []PoolEntry) []Nomination
}

// DefaultStrategies returns the five built-in strategies.
func DefaultStrategies(trendingDivisor float64) []Strategy {
	return []Strategy{
		PeerLevel(),
		Aspirational(),
		Progressive(),
		WeaknessTargeted(),
		Trending(trendingDivisor),
	}
}

// top sorts by score descending, keeping pool order for ties, and caps the list.
func top(ns []Nomination, limit int) []Nomination {
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].Score > ns[j].Score })
	if len(ns) > limit {
		ns = ns[:limit]
	}
	return ns
}

type peerStrategy struct{}

// PeerLevel nominates experts whose average is within 0.2 of the learner's.
func PeerLevel() Strategy { return peerStrategy{} }

func (peerStrategy) Name() StrategyName { return StrategyPeer }
func (peerStrategy) Weight() float64    { return WeightPeer }

func (peerStrategy) Nominate(in Input, pool []PoolEntry) []Nomination {
	if len(in.Metrics) == 0 {
		return nil
	}
	userAvg := in.Metrics.Average()
	var out []Nomination
	for _, e := range pool {
		d := e.Average - userAvg
		if abs(d) <= peerBand {
			out = append(out, Nomination{
				Entry:  e,
				Score:  1 - abs(d),
				Reason: fmt.Sprintf("Similar overall performance level (%.2f vs %.2f)", e.Average, userAvg),
			})
		}
	}
	return top(out, 3)
}

type aspirationalStrategy struct{}

// Aspirational nominates master-tier experts regardless of the learner's level.
func Aspirational() Strategy { return aspirationalStrategy{} }

func (aspirationalStrategy) Name() StrategyName { return StrategyAspirational }
func (aspirationalStrategy) Weight() float64    { return WeightAspirational }

func (aspirationalStrategy) Nominate(_ Input, pool []PoolEntry) []Nomination {
	var out []Nomination
	for _, e := range pool {
		if e.Average >= masterTier {
			out = append(out, Nomination{
				Entry:  e,
				Score:  e.Average,
				Reason: fmt.Sprintf("Master-level performance to aspire to (%.2f)", e.Average),
			})
		}
	}
	return top(out, 2)
}

type progressiveStrategy struct{}

// Progressive nominates experts 0.1 to 0.3 above the learner's average.
func Progressive() Strategy { return progressiveStrategy{} }

func (progressiveStrategy) Name() StrategyName { return StrategyProgressive }
func (progressiveStrategy) Weight() float64    { return WeightProgressive }

func (progressiveStrategy) Nominate(in Input, pool []PoolEntry) []Nomination {
	if len(in.Metrics) == 0 {
		return nil
	}
	userAvg := in.Metrics.Average()
	var out []Nomination
	for _, e := range pool {
		d := e.Average - userAvg
		if d >= progressiveMin && d <= progressiveMax {
			out = append(out, Nomination{
				Entry:  e,
				Score:  d,
				Reason: fmt.Sprintf("Next level target (+%.2f improvement potential)", d),
			})
		}
	}
	return top(out, 2)
}

type weaknessStrategy struct{}

// WeaknessTargeted nominates experts strong where the learner is weak. The
// score is the mean excess over only those weak metrics where the expert
// exceeds 0.8; experts with no such metric are skipped.
func WeaknessTargeted() Strategy { return weaknessStrategy{} }

func (weaknessStrategy) Name() StrategyName { return StrategyWeakness }
func (weaknessStrategy) Weight() float64    { return WeightWeakness }

func (weaknessStrategy) Nominate(in Input, pool []PoolEntry) []Nomination {
	weak := WeakMetrics(in.Metrics)
	if len(weak) == 0 {
		return nil
	}
	var out []Nomination
	for _, e := range pool {
		total, n := 0.0, 0
		for _, name := range weak {
			ev, ok := e.Pattern.Metrics.Lookup(name)
			if ok && ev > strongExpertValue {
				total += ev - in.Metrics.Get(name)
				n++
			}
		}
		if n == 0 {
			continue
		}
		score := total / float64(n)
		out = append(out, Nomination{
			Entry:  e,
			Score:  score,
			Reason: fmt.Sprintf("Strong in your improvement areas (avg +%.2f)", score),
		})
	}
	return top(out, 2)
}

type trendingStrategy struct {
	divisor float64
}

// Trending nominates the experts with the most recent comparison activity,
// scoring count / divisor.
func Trending(divisor float64) Strategy {
	if divisor <= 0 {
		divisor = DefaultTrendingDivisor
	}
	return trendingStrategy{divisor: divisor}
}

func (trendingStrategy) Name() StrategyName { return StrategyTrending }
func (trendingStrategy) Weight() float64    { return WeightTrending }

func (s trendingStrategy) Nominate(in Input, pool []PoolEntry) []Nomination {
	if len(in.Activity) == 0 {
		return nil
	}
	var out []Nomination
	for _, e := range pool {
		count := in.Activity[e.Profile.ID]
		if count <= 0 {
			continue
		}
		out = append(out, Nomination{
			Entry:  e,
			Score:  float64(count) / s.divisor,
			Reason: fmt.Sprintf("Trending expert - %d recent comparisons", count),
		})
	}
	return top(out, 2)
}

// WeakMetrics lists, in name order, the learner metrics below 0.6.
func WeakMetrics(v metric.Vector) []string {
	var out []string
	for _, name := range v.Keys() {
		if v.Get(name) < weakMetric {
			out = append(out, name)
		}
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
