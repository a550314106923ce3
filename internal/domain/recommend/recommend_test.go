package recommend_test

import (
	"testing"
	"time"

	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

func kitchen(t *testing.T) *expert.Corpus {
	t.Helper()
	c, err := expert.NewCorpus(
		[]expert.Profile{
			{ID: "ace", Name: "Ace", Domain: "Cooking"},
			{ID: "peer", Name: "Peer", Domain: "Cooking"},
			{ID: "step", Name: "Step", Domain: "Cooking"},
		},
		[]expert.Pattern{
			{ExpertID: "ace", SkillType: "Cooking", Confidence: 0.95, Metrics: metric.Vector{"x": 0.95, "y": 0.95}},
			{ExpertID: "peer", SkillType: "Cooking", Confidence: 0.9, Metrics: metric.Vector{"x": 0.5, "y": 0.6}},
			{ExpertID: "step", SkillType: "Cooking", Confidence: 0.8, Metrics: metric.Vector{"x": 0.7, "y": 0.8}},
		},
	)
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	return c
}

func ids(cs []recommend.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Expert.ID)
	}
	return out
}

func TestRecommend(t *testing.T) {
	Convey("Given a small cooking corpus and a weak learner", t, func() {
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		r := recommend.New(kitchen(t), recommend.WithClock(func() time.Time { return fixed }))
		in := recommend.Input{
			SkillType: "Cooking",
			Metrics:   metric.Vector{"x": 0.5, "y": 0.55},
			Activity:  map[string]int{"step": 5},
			N:         5,
		}

		Convey("When every strategy runs", func() {
			b := r.Recommend(in)

			Convey("Then each expert appears once, best final score first", func() {
				So(ids(b.Recommendations), ShouldResemble, []string{"peer", "ace", "step"})
				So(b.Recommendations[0].Strategy, ShouldEqual, recommend.StrategyPeer)
				So(b.Recommendations[0].FinalScore, ShouldAlmostEqual, 0.975*0.4, 1e-9)
			})

			Convey("Then the highest-scoring nomination wins for duplicated experts", func() {
				So(b.Recommendations[1].Strategy, ShouldEqual, recommend.StrategyAspirational)
				So(b.Recommendations[1].FinalScore, ShouldAlmostEqual, 0.95*0.3, 1e-9)
				So(b.Recommendations[2].Strategy, ShouldEqual, recommend.StrategyTrending)
				So(b.Recommendations[2].RawScore, ShouldAlmostEqual, 0.5, 1e-9)
			})

			Convey("Then each candidate carries a learning path and a timeline", func() {
				ace := b.Recommendations[1]
				So(ace.LearningPath.Phases, ShouldHaveLength, 2)
				So(ace.LearningPath.Phases[0].Metric, ShouldEqual, "x")
				So(ace.LearningPath.Phases[0].Priority, ShouldEqual, "high")
				So(ace.LearningPath.TotalWeeks, ShouldEqual, 6)
				So(ace.LearningPath.TotalHours, ShouldAlmostEqual, 30, 1e-9)
				So(ace.LearningPath.KeyFocus, ShouldEqual, "Emulate Ace's approach to cooking")
				So(ace.Timeline.Difficulty, ShouldEqual, "challenging")
				So(b.Recommendations[0].Timeline.Difficulty, ShouldEqual, "easy")
			})

			Convey("Then the personalization block describes the learner", func() {
				So(b.UserLevel, ShouldEqual, recommend.LevelBeginnerPlus)
				So(b.GeneratedAt, ShouldEqual, fixed)
				So(b.Personalization.ImprovementTrend, ShouldEqual, recommend.TrendNewUser)
				So(b.Personalization.FocusAreas, ShouldResemble, []string{"x", "y"})
			})
		})

		Convey("When N is smaller than the candidate count", func() {
			in.N = 2
			b := r.Recommend(in)
			So(ids(b.Recommendations), ShouldResemble, []string{"peer", "ace"})
		})

		Convey("When N is zero", func() {
			in.N = 0
			b := r.Recommend(in)
			So(b.Recommendations, ShouldNotBeNil)
			So(b.Recommendations, ShouldBeEmpty)
		})

		Convey("When the skill has no patterns", func() {
			in.SkillType = "Glassblowing"
			So(r.Recommend(in).Recommendations, ShouldBeEmpty)
		})
	})
}

func TestWeaknessTargeted(t *testing.T) {
	Convey("Given only the weakness strategy", t, func() {
		r := recommend.New(kitchen(t), recommend.WithStrategies(recommend.WeaknessTargeted()))

		Convey("When the learner has no metric below 0.6", func() {
			b := r.Recommend(recommend.Input{SkillType: "Cooking", Metrics: metric.Vector{"x": 0.6, "y": 0.9}, N: 5})
			So(b.Recommendations, ShouldBeEmpty)
		})

		Convey("When the learner is weak on x", func() {
			b := r.Recommend(recommend.Input{SkillType: "Cooking", Metrics: metric.Vector{"x": 0.2, "y": 0.9}, N: 5})
			Convey("Then only experts above 0.8 on x are nominated", func() {
				So(ids(b.Recommendations), ShouldResemble, []string{"ace"})
				So(b.Recommendations[0].RawScore, ShouldAlmostEqual, 0.75, 1e-9)
				So(b.Recommendations[0].StrategyWeight, ShouldEqual, recommend.WeightWeakness)
			})
		})
	})
}

func TestLevelAndTrend(t *testing.T) {
	Convey("AssessLevel buckets the metric average", t, func() {
		So(recommend.AssessLevel(metric.Vector{"a": 0.85}), ShouldEqual, recommend.LevelAdvanced)
		So(recommend.AssessLevel(metric.Vector{"a": 0.6}), ShouldEqual, recommend.LevelIntermediate)
		So(recommend.AssessLevel(metric.Vector{"a": 0.4}), ShouldEqual, recommend.LevelBeginnerPlus)
		So(recommend.AssessLevel(metric.Vector{}), ShouldEqual, recommend.LevelBeginner)
	})

	Convey("Trend compares the oldest and newest history entries", t, func() {
		t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		entry := func(v float64, d int) recommend.HistoryEntry {
			return recommend.HistoryEntry{Metrics: metric.Vector{"a": v}, At: t0.AddDate(0, 0, d)}
		}
		So(recommend.Trend(nil), ShouldEqual, recommend.TrendNewUser)
		So(recommend.Trend([]recommend.HistoryEntry{entry(0.5, 0)}), ShouldEqual, recommend.TrendNewUser)
		So(recommend.Trend([]recommend.HistoryEntry{entry(0.7, 3), entry(0.5, 0)}), ShouldEqual, recommend.TrendImproving)
		So(recommend.Trend([]recommend.HistoryEntry{entry(0.5, 0), entry(0.4, 2)}), ShouldEqual, recommend.TrendDeclining)
		So(recommend.Trend([]recommend.HistoryEntry{entry(0.5, 0), entry(0.51, 2)}), ShouldEqual, recommend.TrendSteady)
	})
}

func TestLearningPath(t *testing.T) {
	Convey("Given an expert ahead on three of four shared metrics", t, func() {
		ex := expert.Profile{ID: "e", Name: "Eve", Domain: "Dance"}
		expertM := metric.Vector{"a": 0.9, "b": 0.9, "c": 0.9, "d": 0.9, "only_expert": 1}
		user := metric.Vector{"a": 0.85, "b": 0.4, "c": 0.7, "d": 0.6}

		lp := recommend.BuildLearningPath(ex, expertM, user, 4)

		Convey("Then gaps above 0.1 are planned largest first", func() {
			So(lp.Phases, ShouldHaveLength, 3)
			So(lp.Phases[0].Metric, ShouldEqual, "b")
			So(lp.Phases[0].Step, ShouldEqual, 1)
			So(lp.Phases[0].EstimatedWeeks, ShouldEqual, 4)
			So(lp.Phases[0].EffortHours, ShouldAlmostEqual, 16, 1e-9)
			So(lp.Phases[1].Metric, ShouldEqual, "d")
			So(lp.Phases[2].Metric, ShouldEqual, "c")
			So(lp.Phases[2].EstimatedWeeks, ShouldEqual, 2)
			So(lp.Phases[2].Priority, ShouldEqual, "medium")
		})

		Convey("Then totals add up", func() {
			So(lp.TotalWeeks, ShouldEqual, 8)
			So(lp.TotalHours, ShouldAlmostEqual, 32, 1e-9)
		})
	})

	Convey("EstimateTimeline buckets the average gap", t, func() {
		user := metric.Vector{"a": 0.5}
		So(recommend.EstimateTimeline(0.55, user).Timeframe, ShouldEqual, "2-4 weeks")
		So(recommend.EstimateTimeline(0.75, user).Difficulty, ShouldEqual, "moderate")
		So(recommend.EstimateTimeline(0.95, user).Timeframe, ShouldEqual, "6+ months")
	})
}

func TestSpotlightAndCombinations(t *testing.T) {
	Convey("Given the cooking corpus", t, func() {
		c := kitchen(t)

		Convey("DailySpotlight rotates by day of year", func() {
			day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
			s, ok := recommend.DailySpotlight(c, "Cooking", day)
			So(ok, ShouldBeTrue)
			So(s.Expert.ID, ShouldEqual, "step")
			So(s.KeyTechniques, ShouldResemble, []string{"Y (Expert Level: 80.0%)", "X (Expert Level: 70.0%)"})
			So(s.PracticeTip, ShouldStartWith, "Cook like Step")
			So(s.Quote, ShouldEndWith, "- Step")

			_, ok = recommend.DailySpotlight(c, "Glassblowing", day)
			So(ok, ShouldBeFalse)
		})

		Convey("Combinations pairs experts by approach", func() {
			r := recommend.New(c)
			combos := r.Combinations(metric.Vector{"x": 0.5, "y": 0.55}, "Cooking")
			So(combos, ShouldHaveLength, 3)

			pick := func(i int) []string {
				var out []string
				for _, e := range combos[i].Experts {
					out = append(out, e.ID)
				}
				return out
			}
			So(combos[0].Approach, ShouldEqual, recommend.ApproachSequential)
			So(pick(0), ShouldResemble, []string{"peer", "ace"})
			So(pick(1), ShouldResemble, []string{"ace", "peer"})
			So(pick(2), ShouldResemble, []string{"ace"})
		})
	})
}
