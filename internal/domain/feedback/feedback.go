// Package feedback turns a comparison breakdown into categorized,
// human-readable coaching feedback.
package feedback

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/scoring"
)

// Classification thresholds. A metric between them is not reported.
const (
	StrengthSimilarity = 0.8
	ImprovementGap     = 0.2
	// largeGap moves a recommendation to intermediate difficulty.
	largeGap = 0.3
)

// Difficulty levels and expected durations for recommendations.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	shortImprovement       = "1-2 weeks"
	longImprovement        = "2-4 weeks"
)

// Strength is a metric where the learner closely matches the expert.
type Strength struct {
	Metric      string  `json:"metric"`
	Message     string  `json:"message"`
	Similarity  float64 `json:"similarity"`
	ExpertLevel float64 `json:"expert_level"`
}

// ImprovementArea is a metric where the learner trails the expert.
type ImprovementArea struct {
	Metric       string  `json:"metric"`
	Message      string  `json:"message"`
	CurrentLevel float64 `json:"current_level"`
	ExpertLevel  float64 `json:"expert_level"`
	Gap          float64 `json:"gap"`
}

// Recommendation is a targeted drill for one improvement area.
type Recommendation struct {
	Metric              string `json:"metric"`
	Text                string `json:"recommendation"`
	Difficulty          string `json:"difficulty"`
	ExpectedImprovement string `json:"expected_improvement_time"`
}

// Bundle is the complete feedback for one comparison.
type Bundle struct {
	Similarity       float64           `json:"similarity_to_expert"`
	ExpertID         string            `json:"expert_id"`
	ExpertReference  string            `json:"expert_reference"`
	Strengths        []Strength        `json:"strengths"`
	ImprovementAreas []ImprovementArea `json:"improvement_areas"`
	Recommendations  []Recommendation  `json:"specific_recommendations"`
	Insights         []string          `json:"expert_insights"`
}

// Generator builds feedback bundles. It is stateless.
type Generator struct{}

// New creates a Generator.
func New() *Generator { return &Generator{} }

// Generate classifies each metric of comparison as a strength, an
// improvement area, or neither, and appends domain insights for ex.
// Metrics are visited in name order so output is deterministic.
func (g *Generator) Generate(comparison scoring.Result, ex expert.Profile) Bundle {
	b := Bundle{
		Similarity:       comparison.Overall,
		ExpertID:         ex.ID,
		ExpertReference:  ex.Name,
		Strengths:        []Strength{},
		ImprovementAreas: []ImprovementArea{},
		Recommendations:  []Recommendation{},
	}
	for _, name := range slices.Sorted(maps.Keys(comparison.Breakdown)) {
		mc := comparison.Breakdown[name]
		label := humanize(name)
		switch {
		case mc.Similarity > StrengthSimilarity:
			b.Strengths = append(b.Strengths, Strength{
				Metric:      name,
				Message:     fmt.Sprintf("Your %s closely matches %s's style (%.1f%% similarity)", label, ex.Name, mc.Similarity*100),
				Similarity:  mc.Similarity,
				ExpertLevel: mc.ExpertValue,
			})
		case mc.Gap > ImprovementGap:
			b.ImprovementAreas = append(b.ImprovementAreas, ImprovementArea{
				Metric:       name,
				Message:      fmt.Sprintf("Focus on improving %s - %s excels in this area", label, ex.Name),
				CurrentLevel: mc.UserValue,
				ExpertLevel:  mc.ExpertValue,
				Gap:          mc.Gap,
			})
			if rec, ok := recommend(name, mc.Gap, ex.Name); ok {
				b.Recommendations = append(b.Recommendations, rec)
			}
		}
	}
	b.Insights = Insights(ex)
	return b
}

func recommend(name string, gap float64, expertName string) (Recommendation, bool) {
	tmpl, ok := drills[name]
	if !ok {
		return Recommendation{}, false
	}
	rec := Recommendation{
		Metric:              name,
		Text:                strings.ReplaceAll(tmpl, "{expert}", expertName),
		Difficulty:          DifficultyBeginner,
		ExpectedImprovement: shortImprovement,
	}
	if gap > largeGap {
		rec.Difficulty = DifficultyIntermediate
		rec.ExpectedImprovement = longImprovement
	}
	return rec, true
}

// Insights returns the qualitative lines shown with any feedback for ex.
func Insights(ex expert.Profile) []string {
	out := []string{
		fmt.Sprintf("%s is known for %s excellence with a focus on technical precision", ex.Name, strings.ToLower(ex.Domain)),
		fmt.Sprintf("Key characteristics of %s's style include attention to detail and consistent practice", ex.Name),
		fmt.Sprintf("To develop like %s, focus on fundamentals before advancing to complex techniques", ex.Name),
	}
	if tmpl, ok := domainInsights[ex.Domain]; ok {
		out = append(out, strings.ReplaceAll(tmpl, "{expert}", ex.Name))
	}
	return out
}

func humanize(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
