package skill_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/mentor/internal/domain/skill"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuiltin(t *testing.T) {
	Convey("Given the built-in skill table", t, func() {
		reg, err := skill.Builtin()
		So(err, ShouldBeNil)

		Convey("Then the five skills are present", func() {
			So(reg.Types(), ShouldResemble, []skill.Type{
				"Cooking", "Dance/Fitness", "Music/Instrument", "Public Speaking", "Sports/Athletics",
			})
		})

		Convey("Then each weight table sums to one", func() {
			for _, st := range reg.Types() {
				sum := 0.0
				for _, w := range reg.Weights(st) {
					sum += w
				}
				So(sum, ShouldAlmostEqual, 1.0, 1e-9)
			}
		})

		Convey("Then every weighted metric can be normalized", func() {
			for _, st := range reg.Types() {
				p, _ := reg.Lookup(st)
				names := p.MetricNames()
				for m := range p.Weights {
					So(names, ShouldContain, m)
				}
			}
		})

		Convey("Then Public Speaking carries bands and importance", func() {
			p, ok := reg.Lookup("Public Speaking")
			So(ok, ShouldBeTrue)
			So(p.Thresholds["eye_contact"], ShouldResemble, skill.Band{Minimum: 60, Optimal: 80})
			So(p.Importance["confidence_score"], ShouldEqual, 1.5)
		})

		Convey("Then unknown skills are absent", func() {
			_, ok := reg.Lookup("Glassblowing")
			So(ok, ShouldBeFalse)
			So(reg.Weights("Glassblowing"), ShouldBeNil)
		})
	})
}

func TestOverrides(t *testing.T) {
	Convey("Given the built-in registry", t, func() {
		reg, err := skill.Builtin()
		So(err, ShouldBeNil)

		Convey("When overlaying weights", func() {
			out, err := reg.WithWeights(map[string]map[string]float64{
				"Cooking":      {"knife_skills": 0.5},
				"Glassblowing": {"breath_control": 1},
			})
			So(err, ShouldBeNil)

			Convey("Then only the overridden metric changes", func() {
				So(out.Weights("Cooking")["knife_skills"], ShouldEqual, 0.5)
				So(out.Weights("Cooking")["efficiency"], ShouldEqual, 0.15)
				So(reg.Weights("Cooking")["knife_skills"], ShouldEqual, 0.25)
				So(out.Weights("Glassblowing")["breath_control"], ShouldEqual, 1)
			})
		})

		Convey("When a negative weight is supplied", func() {
			_, err := reg.WithWeights(map[string]map[string]float64{"Cooking": {"knife_skills": -1}})
			So(errors.Is(err, skill.ErrInvalidTable), ShouldBeTrue)
		})

		Convey("When merging a loaded table", func() {
			extra, err := skill.Load(strings.NewReader(`
skills:
  - type: Glassblowing
    domain: Crafts
    weights: {breath_control: 0.6, rotation: 0.4}
    metrics:
      - name: breath_control
        sources: [video.breath_score]
`))
			So(err, ShouldBeNil)
			merged := reg.Merge(extra)
			_, ok := merged.Lookup("Glassblowing")
			So(ok, ShouldBeTrue)
			So(len(merged.Types()), ShouldEqual, 6)
		})
	})
}

func TestLoadErrors(t *testing.T) {
	Convey("Given malformed tables", t, func() {
		bad := map[string]string{
			"yaml":       "skills: [",
			"no type":    "skills:\n  - domain: X\n",
			"duplicate":  "skills:\n  - type: A\n  - type: A\n",
			"band":       "skills:\n  - type: A\n    thresholds: {m: {minimum: 9, optimal: 1}}\n",
			"weight":     "skills:\n  - type: A\n    weights: {m: -0.1}\n",
			"importance": "skills:\n  - type: A\n    importance: {m: -1}\n",
			"transform":  "skills:\n  - type: A\n    metrics: [{name: m, sources: [video.m], transform: cubic}]\n",
		}
		for name, raw := range bad {
			Convey("When the table has a bad "+name, func() {
				_, err := skill.Load(strings.NewReader(raw))
				So(errors.Is(err, skill.ErrInvalidTable), ShouldBeTrue)
			})
		}

		Convey("When the file is missing", func() {
			_, err := skill.LoadFile("/nonexistent/skills.yaml")
			So(errors.Is(err, skill.ErrInvalidTable), ShouldBeTrue)
		})
	})
}
