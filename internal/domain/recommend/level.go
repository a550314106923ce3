package recommend

import (
	"github.com/okian/mentor/internal/domain/metric"
)

// Level is a coarse learner skill level.
type Level string

// Learner levels by metric average.
const (
	LevelAdvanced     Level = "advanced"
	LevelIntermediate Level = "intermediate"
	LevelBeginnerPlus Level = "beginner_plus"
	LevelBeginner     Level = "beginner"
)

// Improvement trends derived from history.
const (
	TrendNewUser   = "new_user"
	TrendImproving = "improving"
	TrendSteady    = "steady"
	TrendDeclining = "declining"
)

// trendEpsilon is the smallest average change counted as movement.
const trendEpsilon = 0.02

// AssessLevel maps the learner's metric average to a Level.
func AssessLevel(v metric.Vector) Level {
	avg := v.Average()
	switch {
	case avg >= 0.8:
		return LevelAdvanced
	case avg >= 0.6:
		return LevelIntermediate
	case avg >= 0.4:
		return LevelBeginnerPlus
	default:
		return LevelBeginner
	}
}

// Trend compares the newest and oldest history entries. History may be in
// any order; entries are compared by timestamp.
func Trend(history []HistoryEntry) string {
	if len(history) < 2 {
		return TrendNewUser
	}
	oldest, newest := history[0], history[0]
	for _, h := range history[1:] {
		if h.At.Before(oldest.At) {
			oldest = h
		}
		if !h.At.Before(newest.At) {
			newest = h
		}
	}
	d := newest.Metrics.Average() - oldest.Metrics.Average()
	switch {
	case d > trendEpsilon:
		return TrendImproving
	case d < -trendEpsilon:
		return TrendDeclining
	default:
		return TrendSteady
	}
}
