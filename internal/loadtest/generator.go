package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/mentor/internal/domain/skill"
)

// Performance tiers a learner is drawn from, as [min, min+span) on the
// normalized scale.
type tier struct {
	min, span float64
}

var tiers = []tier{
	{min: 0.4, span: 0.3},   // average, most common
	{min: 0.4, span: 0.3},   // average
	{min: 0.7, span: 0.15},  // high
	{min: 0.1, span: 0.3},   // low
	{min: 0.85, span: 0.15}, // elite, rare
	{min: 0.0, span: 1.0},   // anywhere
}

// Speaking pace is generated in words per minute around the ideal window.
const (
	wpmMin  = 90.0
	wpmSpan = 120.0
)

// Generator builds raw analyses shaped by a skill's extraction rules.
type Generator struct {
	profile skill.Profile
	rng     *rand.Rand
}

// NewGenerator creates a generator for profile seeded with seed.
func NewGenerator(profile skill.Profile, seed uint64) *Generator {
	return &Generator{
		profile: profile,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Learners returns n fresh learner ids.
func Learners(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "learner-" + uuid.NewString()
	}
	return ids
}

// Generate creates n submissions spread round-robin over learners.
func (g *Generator) Generate(ctx context.Context, n int, learners []string) ([]Submission, error) {
	if len(learners) == 0 {
		return nil, fmt.Errorf("%w: no learners", ErrInvalidConfig)
	}
	out := make([]Submission, n)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
		out[i] = Submission{
			AnalysisID: uuid.NewString(),
			LearnerID:  learners[i%len(learners)],
			SkillType:  g.profile.Type,
			Analysis:   g.Analysis(),
		}
	}
	return out, nil
}

// Analysis builds one nested raw analysis. All sources of a learner's
// analysis are drawn from the same tier so learners differ consistently.
func (g *Generator) Analysis() map[string]any {
	t := tiers[g.rng.IntN(len(tiers))]
	raw := make(map[string]any)
	for _, spec := range g.profile.Metrics {
		for _, src := range spec.Sources {
			v := t.min + g.rng.Float64()*t.span
			if spec.Transform == skill.TransformWordsPerMinute {
				v = wpmMin + g.rng.Float64()*wpmSpan
			}
			setPath(raw, src, v)
		}
	}
	return raw
}

// setPath stores v under a dotted path, creating intermediate objects.
func setPath(m map[string]any, path string, v float64) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}
