package normalize_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/normalize"
	"github.com/okian/mentor/internal/domain/skill"
	. "github.com/smartystreets/goconvey/convey"
)

func newNormalizer() *normalize.Normalizer {
	reg, err := skill.Builtin()
	if err != nil {
		panic(err)
	}
	return normalize.New(reg)
}

func TestNormalizePublicSpeaking(t *testing.T) {
	Convey("Given a public speaking analysis", t, func() {
		n := newNormalizer()
		a := normalize.Analysis{
			"video": map[string]any{"gesture_score": 0.7, "eye_contact_score": 1.3},
			"speech": map[string]any{
				"tone_variation": 0.6,
				"pitch_range":    0.8,
				"pauses":         map[string]any{"frequency": 0.4},
				"pace":           map[string]any{"words_per_minute": 200},
			},
		}

		v, err := n.Normalize(a, "Public Speaking")
		So(err, ShouldBeNil)

		Convey("Then every table metric is present and clamped", func() {
			So(v.Keys(), ShouldResemble, []string{
				"emotional_resonance", "eye_contact", "gesture_coordination",
				"pause_timing", "speaking_pace", "voice_modulation",
			})
			So(v["eye_contact"], ShouldEqual, 1.0)
			So(v["gesture_coordination"], ShouldEqual, 0.7)
		})

		Convey("Then composite metrics average their sources", func() {
			So(v["voice_modulation"], ShouldAlmostEqual, 0.7, 1e-9)
			So(v["pause_timing"], ShouldAlmostEqual, 0.45, 1e-9)
		})

		Convey("Then missing sources fall back to neutral", func() {
			So(v["emotional_resonance"], ShouldEqual, metric.Neutral)
		})

		Convey("Then pace is scored against the optimal window", func() {
			So(v["speaking_pace"], ShouldAlmostEqual, 0.8, 1e-9)
		})
	})

	Convey("Given a speech without pace data", t, func() {
		v, err := newNormalizer().Normalize(normalize.Analysis{}, "Public Speaking")
		So(err, ShouldBeNil)
		So(v["speaking_pace"], ShouldEqual, 1.0)
	})
}

func TestSpeakingPace(t *testing.T) {
	Convey("Speaking pace scoring", t, func() {
		So(normalize.SpeakingPace(150), ShouldEqual, 1)
		So(normalize.SpeakingPace(120), ShouldEqual, 1)
		So(normalize.SpeakingPace(60), ShouldEqual, 0.5)
		So(normalize.SpeakingPace(230), ShouldAlmostEqual, 0.5, 1e-9)
		So(normalize.SpeakingPace(400), ShouldEqual, 0)
	})
}

func TestNormalizeErrors(t *testing.T) {
	Convey("Given malformed analyses", t, func() {
		n := newNormalizer()

		Convey("When a source holds a string", func() {
			_, err := n.Normalize(normalize.Analysis{"video": map[string]any{"knife_technique_score": "high"}}, "Cooking")
			So(errors.Is(err, metric.ErrMalformed), ShouldBeTrue)
		})

		Convey("When a source holds NaN", func() {
			_, err := n.Normalize(normalize.Analysis{"video": map[string]any{"balance_score": math.NaN()}}, "Dance/Fitness")
			So(errors.Is(err, metric.ErrMalformed), ShouldBeTrue)
		})
	})
}

func TestNormalizeUnknownSkill(t *testing.T) {
	Convey("Given an analysis for a skill without a table", t, func() {
		a := normalize.Analysis{
			"video": map[string]any{"breath_control": 0.9, "rotation": 1.4, "label": "ignored"},
			"audio": map[string]any{"rotation": 0.1},
		}
		v, err := newNormalizer().Normalize(a, "Glassblowing")

		Convey("Then numeric leaves are flattened by name", func() {
			So(err, ShouldBeNil)
			So(v["breath_control"], ShouldEqual, 0.9)
			So(v["rotation"], ShouldEqual, 0.1)
			So(len(v), ShouldEqual, 2)
		})
	})
}
