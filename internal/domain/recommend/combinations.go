package recommend

import (
	"math"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/skill"
)

// Learning approaches for expert combinations.
const (
	ApproachSequential  = "sequential"
	ApproachComparative = "comparative"
	ApproachTargeted    = "targeted"
)

// Combination pairs experts to learn different aspects from.
type Combination struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Experts     []expert.Profile `json:"experts"`
	Approach    string           `json:"learning_approach"`
}

// Combinations suggests a fundamentals-then-advanced pair, a contrasting
// style pair and the metric leaders for the learner's weak areas.
func (r *Recommender) Combinations(user metric.Vector, skillType skill.Type) []Combination {
	user = user.Clamped()
	pool := r.pool(skillType)
	return []Combination{
		{
			Title:       "Fundamentals + Advanced Techniques",
			Description: "Master basics with one expert, then advance with another",
			Experts:     fundamentalsAndAdvanced(pool, user),
			Approach:    ApproachSequential,
		},
		{
			Title:       "Different Style Approaches",
			Description: "Learn different approaches to the same skill",
			Experts:     contrasting(pool),
			Approach:    ApproachComparative,
		},
		{
			Title:       "Weakness-Focused Learning",
			Description: "Target your specific improvement areas",
			Experts:     weaknessLeaders(pool, user),
			Approach:    ApproachTargeted,
		},
	}
}

// fundamentalsAndAdvanced pairs the expert closest above the learner with
// the strongest expert overall.
func fundamentalsAndAdvanced(pool []PoolEntry, user metric.Vector) []expert.Profile {
	if len(pool) == 0 {
		return []expert.Profile{}
	}
	userAvg := user.Average()
	near, strongest := -1, 0
	for i, e := range pool {
		if e.Average > pool[strongest].Average {
			strongest = i
		}
		if e.Average >= userAvg && (near < 0 || e.Average < pool[near].Average) {
			near = i
		}
	}
	if near < 0 || near == strongest {
		return []expert.Profile{pool[strongest].Profile}
	}
	return []expert.Profile{pool[near].Profile, pool[strongest].Profile}
}

// contrasting returns the two experts whose patterns differ most, measured
// as mean absolute difference over the union of their metrics.
func contrasting(pool []PoolEntry) []expert.Profile {
	if len(pool) < 2 {
		out := make([]expert.Profile, 0, len(pool))
		for _, e := range pool {
			out = append(out, e.Profile)
		}
		return out
	}
	bi, bj, best := 0, 1, -1.0
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			if d := distance(pool[i].Pattern.Metrics, pool[j].Pattern.Metrics); d > best {
				bi, bj, best = i, j, d
			}
		}
	}
	return []expert.Profile{pool[bi].Profile, pool[bj].Profile}
}

func distance(a, b metric.Vector) float64 {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	if len(keys) == 0 {
		return 0
	}
	sum := 0.0
	for k := range keys {
		sum += math.Abs(a.Get(k) - b.Get(k))
	}
	return sum / float64(len(keys))
}

// weaknessLeaders returns, for the learner's weak metrics in name order, the
// expert with the highest value on that metric. At most two, no repeats.
func weaknessLeaders(pool []PoolEntry, user metric.Vector) []expert.Profile {
	out := []expert.Profile{}
	seen := make(map[string]bool)
	for _, name := range WeakMetrics(user) {
		leader, score := -1, -1.0
		for i, e := range pool {
			if v, ok := e.Pattern.Metrics.Lookup(name); ok && v > score {
				leader, score = i, v
			}
		}
		if leader < 0 || seen[pool[leader].Profile.ID] {
			continue
		}
		seen[pool[leader].Profile.ID] = true
		out = append(out, pool[leader].Profile)
		if len(out) == 2 {
			break
		}
	}
	return out
}
