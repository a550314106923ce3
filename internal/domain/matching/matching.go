// Package matching ranks the expert corpus against a learner's metrics.
package matching

import (
	"sort"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/scoring"
	"github.com/okian/mentor/internal/domain/skill"
)

// Comparer scores a learner vector against an expert vector.
type Comparer interface {
	Compare(user, expert metric.Vector, skillType skill.Type) scoring.Result
}

// Corpus supplies expert profiles and per-skill patterns in a stable order.
type Corpus interface {
	Expert(id string) (expert.Profile, bool)
	Patterns(skillType skill.Type) []expert.Pattern
}

// Match bundles an expert, the comparison against it and the pattern confidence.
type Match struct {
	Expert     expert.Profile `json:"expert"`
	Comparison scoring.Result `json:"comparison"`
	Confidence float64        `json:"pattern_confidence"`
}

// Similarity is shorthand for the overall comparison score.
func (m Match) Similarity() float64 { return m.Comparison.Overall }

// Matcher finds the best-fitting experts for a learner. It only computes;
// persisting matches is the caller's job.
type Matcher struct {
	comparer Comparer
	corpus   Corpus
}

// New creates a Matcher.
func New(comparer Comparer, corpus Corpus) *Matcher {
	return &Matcher{comparer: comparer, corpus: corpus}
}

// FindBestMatches compares user against every pattern tagged skillType and
// returns at most topN matches by descending similarity. Ties keep corpus
// order. A skill with no patterns yields an empty, non-nil slice.
func (m *Matcher) FindBestMatches(user metric.Vector, skillType skill.Type, topN int) []Match {
	patterns := m.corpus.Patterns(skillType)
	matches := make([]Match, 0, len(patterns))
	for _, p := range patterns {
		prof, ok := m.corpus.Expert(p.ExpertID)
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Expert:     prof,
			Comparison: m.comparer.Compare(user, p.Metrics, skillType),
			Confidence: p.Confidence,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Comparison.Overall > matches[j].Comparison.Overall
	})
	if topN < 0 {
		topN = 0
	}
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}
