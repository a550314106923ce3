package model_test

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	model "github.com/okian/mentor/internal/domain/model"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/smartystreets/goconvey/convey"
)

func TestChunkResultJSON(t *testing.T) {
	convey.Convey("Given a processed chunk", t, func() {
		at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
		cr := model.ChunkResult{
			Seq: 3,
			Result: realtime.Result{
				SkillType:    "Public Speaking",
				OverallScore: 72.5,
				Suggestions:  []realtime.Suggestion{{Metric: "eye_contact", Priority: realtime.PriorityHigh}},
			},
			ProcessedAt: at,
		}

		convey.Convey("When it is encoded for subscribers", func() {
			raw, err := json.Marshal(cr)
			convey.So(err, convey.ShouldBeNil)

			var doc map[string]any
			convey.So(json.Unmarshal(raw, &doc), convey.ShouldBeNil)

			convey.Convey("Then the wire names are snake case", func() {
				convey.So(doc["seq"], convey.ShouldEqual, float64(3))
				convey.So(doc["processed_at"], convey.ShouldEqual, "2026-02-03T04:05:06Z")
				result := doc["result"].(map[string]any)
				convey.So(result["overall_score"], convey.ShouldEqual, 72.5)
				convey.So(result["suggestions"], convey.ShouldHaveLength, 1)
			})
		})
	})
}
