package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/metric"
)

// Learning path shaping.
const (
	minPathGap        = 0.1
	highPriorityGap   = 0.3
	maxPhases         = 3
	minPhaseWeeks     = 2
	weeksPerUnitGap   = 8
	practiceFrequency = "Daily, 30-45 minutes"
)

// Phase is one step of a learning path.
type Phase struct {
	Step           int     `json:"step"`
	Metric         string  `json:"metric"`
	FocusArea      string  `json:"focus_area"`
	CurrentLevel   float64 `json:"current_level"`
	TargetLevel    float64 `json:"target_level"`
	Gap            float64 `json:"improvement_needed"`
	EstimatedWeeks int     `json:"estimated_weeks"`
	EffortHours    float64 `json:"effort_hours"`
	Priority       string  `json:"priority"`
}

// LearningPath targets the learner's largest gaps to one expert.
type LearningPath struct {
	Phases            []Phase `json:"learning_steps"`
	TotalWeeks        int     `json:"total_estimated_weeks"`
	TotalHours        float64 `json:"total_effort_hours"`
	PracticeFrequency string  `json:"recommended_practice_frequency"`
	KeyFocus          string  `json:"key_focus"`
}

// BuildLearningPath takes the metrics both vectors carry where the expert
// leads by more than 0.1, largest gap first, and plans up to three phases.
func BuildLearningPath(ex expert.Profile, expertMetrics, user metric.Vector, weeklyHours float64) LearningPath {
	type gap struct {
		name            string
		current, target float64
		size            float64
	}
	var gaps []gap
	for _, name := range expertMetrics.Keys() {
		u, ok := user.Lookup(name)
		if !ok {
			continue
		}
		e := expertMetrics.Get(name)
		if g := e - u; g > minPathGap {
			gaps = append(gaps, gap{name: name, current: u, target: e, size: g})
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].size > gaps[j].size })
	if len(gaps) > maxPhases {
		gaps = gaps[:maxPhases]
	}

	lp := LearningPath{
		Phases:            make([]Phase, 0, len(gaps)),
		PracticeFrequency: practiceFrequency,
		KeyFocus:          fmt.Sprintf("Emulate %s's approach to %s", ex.Name, strings.ToLower(ex.Domain)),
	}
	for i, g := range gaps {
		weeks := max(minPhaseWeeks, int(g.size*weeksPerUnitGap))
		priority := "medium"
		if g.size > highPriorityGap {
			priority = "high"
		}
		ph := Phase{
			Step:           i + 1,
			Metric:         g.name,
			FocusArea:      titleCase(g.name),
			CurrentLevel:   g.current,
			TargetLevel:    g.target,
			Gap:            g.size,
			EstimatedWeeks: weeks,
			EffortHours:    float64(weeks) * weeklyHours,
			Priority:       priority,
		}
		lp.Phases = append(lp.Phases, ph)
		lp.TotalWeeks += ph.EstimatedWeeks
		lp.TotalHours += ph.EffortHours
	}
	return lp
}

// EstimateTimeline buckets the expert-average minus learner-average gap.
func EstimateTimeline(expertAverage float64, user metric.Vector) Timeline {
	g := expertAverage - user.Average()
	switch {
	case g <= 0.1:
		return Timeline{Timeframe: "2-4 weeks", Difficulty: "easy"}
	case g <= 0.3:
		return Timeline{Timeframe: "2-3 months", Difficulty: "moderate"}
	default:
		return Timeline{Timeframe: "6+ months", Difficulty: "challenging"}
	}
}

func titleCase(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
