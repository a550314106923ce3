package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/skill"
)

const maxKeyTechniques = 3

// Catalog is the corpus view the spotlight needs.
type Catalog interface {
	Experts() []expert.Profile
	Patterns(skillType skill.Type) []expert.Pattern
	PatternsFor(expertID string) []expert.Pattern
}

// Spotlight features one expert for a day.
type Spotlight struct {
	Expert        expert.Profile `json:"expert"`
	DailyInsight  string         `json:"daily_insight"`
	KeyTechniques []string       `json:"key_techniques"`
	PracticeTip   string         `json:"practice_tip"`
	Quote         string         `json:"famous_quote"`
	Date          time.Time      `json:"date"`
}

var practiceTips = map[string]string{
	"Public Speaking": "Practice like %s: Record yourself daily and focus on one improvement area at a time.",
	"Sports":          "Train like %s: Master the fundamentals before attempting advanced techniques.",
	"Music":           "Practice like %s: Use a metronome and focus on precision over speed.",
	"Cooking":         "Cook like %s: Prep everything first, then focus on technique and timing.",
	"Business":        "Present like %s: Know your material inside out, then focus on connecting with your audience.",
}

var quotes = map[string]string{
	"Martin Luther King Jr.":  "The ultimate measure of a man is not where he stands in moments of comfort, but where he stands at times of challenge.",
	"Steve Jobs":              "Innovation distinguishes between a leader and a follower.",
	"Muhammad Ali":            "I hated every minute of training, but I said, 'Don't quit. Suffer now and live the rest of your life as a champion.'",
	"Michael Jordan":          "I've missed more than 9000 shots in my career. I've lost almost 300 games. That's why I succeed.",
	"Wolfgang Amadeus Mozart": "The music is not in the notes, but in the silence between.",
}

// DailySpotlight picks the expert at day-of-year modulo the candidate count.
// With a skill type only experts holding a pattern for it are candidates.
// ok is false when there are no candidates.
func DailySpotlight(c Catalog, skillType skill.Type, day time.Time) (Spotlight, bool) {
	var candidates []expert.Profile
	if skillType == "" {
		candidates = c.Experts()
	} else {
		has := make(map[string]bool)
		for _, p := range c.Patterns(skillType) {
			has[p.ExpertID] = true
		}
		for _, e := range c.Experts() {
			if has[e.ID] {
				candidates = append(candidates, e)
			}
		}
	}
	if len(candidates) == 0 {
		return Spotlight{}, false
	}
	ex := candidates[day.YearDay()%len(candidates)]
	return Spotlight{
		Expert:        ex,
		DailyInsight:  dailyInsight(ex, day),
		KeyTechniques: keyTechniques(c.PatternsFor(ex.ID)),
		PracticeTip:   practiceTip(ex),
		Quote:         quote(ex),
		Date:          day,
	}, true
}

func dailyInsight(ex expert.Profile, day time.Time) string {
	domain := strings.ToLower(ex.Domain)
	insights := []string{
		fmt.Sprintf("%s revolutionized %s through relentless practice and innovation.", ex.Name, domain),
		fmt.Sprintf("What made %s exceptional was their attention to fundamental principles.", ex.Name),
		fmt.Sprintf("%s's approach to %s emphasizes both technical mastery and creative expression.", ex.Name, domain),
		fmt.Sprintf("The key to %s's success was their ability to perform under pressure while maintaining perfect form.", ex.Name),
	}
	return insights[day.Day()%len(insights)]
}

// keyTechniques lists each pattern's two strongest metrics, deduplicated.
func keyTechniques(patterns []expert.Pattern) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range patterns {
		names := p.Metrics.Keys()
		sort.SliceStable(names, func(i, j int) bool { return p.Metrics[names[i]] > p.Metrics[names[j]] })
		if len(names) > 2 {
			names = names[:2]
		}
		for _, n := range names {
			t := fmt.Sprintf("%s (Expert Level: %.1f%%)", titleCase(n), p.Metrics[n]*100)
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	if len(out) > maxKeyTechniques {
		out = out[:maxKeyTechniques]
	}
	return out
}

func practiceTip(ex expert.Profile) string {
	if tmpl, ok := practiceTips[ex.Domain]; ok {
		return fmt.Sprintf(tmpl, ex.Name)
	}
	return fmt.Sprintf("Learn from %s: Focus on consistent daily practice and gradual improvement.", ex.Name)
}

func quote(ex expert.Profile) string {
	if q, ok := quotes[ex.Name]; ok {
		return q
	}
	return fmt.Sprintf("Excellence is not a skill, it's an attitude. - %s", ex.Name)
}
