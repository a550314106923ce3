package metric_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/mentor/internal/domain/metric"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVector(t *testing.T) {
	Convey("Given a metric vector with out-of-range values", t, func() {
		v := metric.Vector{"eye_contact": 1.4, "balance": -0.2, "timing": 0.6}

		Convey("Then reads are clamped and missing keys are neutral", func() {
			So(v.Get("eye_contact"), ShouldEqual, 1.0)
			So(v.Get("balance"), ShouldEqual, 0.0)
			So(v.Get("timing"), ShouldEqual, 0.6)
			So(v.Get("absent"), ShouldEqual, metric.Neutral)

			_, ok := v.Lookup("absent")
			So(ok, ShouldBeFalse)
		})

		Convey("Then NaN and infinities stay within bounds", func() {
			So(metric.Clamp(math.NaN()), ShouldEqual, metric.Neutral)
			So(metric.Clamp(math.Inf(1)), ShouldEqual, 1.0)
			So(metric.Clamp(math.Inf(-1)), ShouldEqual, 0.0)
			So(metric.Vector{"x": math.NaN()}.Get("x"), ShouldEqual, metric.Neutral)
		})

		Convey("Then Clamped copies without touching the original", func() {
			c := v.Clamped()
			So(c["eye_contact"], ShouldEqual, 1.0)
			So(v["eye_contact"], ShouldEqual, 1.4)
		})

		Convey("Then the average uses clamped values", func() {
			So(v.Average(), ShouldAlmostEqual, (1.0+0.0+0.6)/3, 1e-9)
			So(metric.Vector{}.Average(), ShouldEqual, 0)
		})

		Convey("Then keys come back sorted", func() {
			So(v.Keys(), ShouldResemble, []string{"balance", "eye_contact", "timing"})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given vectors with non-finite values", t, func() {
		So(metric.Vector{"a": 0.3}.Validate(), ShouldBeNil)
		So(errors.Is(metric.Vector{"a": math.NaN()}.Validate(), metric.ErrMalformed), ShouldBeTrue)
		So(errors.Is(metric.Vector{"a": math.Inf(1)}.Validate(), metric.ErrMalformed), ShouldBeTrue)
		So(errors.Is(metric.Vector{"": 0.1}.Validate(), metric.ErrMalformed), ShouldBeTrue)
	})
}
