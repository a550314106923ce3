package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/mentor/internal/adapters/repository"
	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/skill"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func newStore(t *testing.T, opts ...repository.Option) *repository.MemoryStore {
	t.Helper()
	opts = append([]repository.Option{repository.WithClock(func() time.Time { return t0 })}, opts...)
	s := repository.NewMemoryStore(context.Background(), opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rec(learner, expert string, sim float64, at time.Time) repository.Record {
	return repository.Record{
		LearnerID:  learner,
		SkillType:  "Cooking",
		ExpertID:   expert,
		Similarity: sim,
		Metrics:    metric.Vector{"knife_skills": sim},
		At:         at,
	}
}

func TestAppendAndHistory(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := newStore(t, repository.WithHistoryLimit(3))

		Convey("Append assigns an id and a timestamp", func() {
			r, err := s.Append(ctx, repository.Record{LearnerID: "amy", SkillType: "Cooking"})
			So(err, ShouldBeNil)
			So(r.ID, ShouldNotBeEmpty)
			So(r.At, ShouldEqual, t0)

			got, err := s.Get(ctx, r.ID)
			So(err, ShouldBeNil)
			So(got.LearnerID, ShouldEqual, "amy")
		})

		Convey("Append rejects records without learner or skill", func() {
			_, err := s.Append(ctx, repository.Record{LearnerID: "amy"})
			So(errors.Is(err, repository.ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("History keeps call order and the configured limit", func() {
			var first repository.Record
			for i := 0; i < 5; i++ {
				r, err := s.Append(ctx, rec("amy", "julia-child", float64(i)/10, t0.Add(time.Duration(i)*time.Minute)))
				So(err, ShouldBeNil)
				if i == 0 {
					first = r
				}
			}
			h, err := s.History(ctx, "amy", "", 0)
			So(err, ShouldBeNil)
			So(h, ShouldHaveLength, 3)
			So(h[0].Similarity, ShouldAlmostEqual, 0.2, 1e-9)
			So(h[2].Similarity, ShouldAlmostEqual, 0.4, 1e-9)

			_, err = s.Get(ctx, first.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			latest, err := s.Latest(ctx, "amy", "Cooking")
			So(err, ShouldBeNil)
			So(latest.Similarity, ShouldAlmostEqual, 0.4, 1e-9)

			h, err = s.History(ctx, "amy", "Cooking", 2)
			So(err, ShouldBeNil)
			So(h, ShouldHaveLength, 2)
			So(h[1].Similarity, ShouldAlmostEqual, 0.4, 1e-9)
		})

		Convey("Latest for an unknown learner is not found", func() {
			_, err := s.Latest(ctx, "nobody", "Cooking")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Concurrent writers for different learners all land", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = s.Append(ctx, rec(fmt.Sprintf("l%d", i), "julia-child", 0.5, t0))
				}(i)
			}
			wg.Wait()
			So(s.Count(ctx), ShouldEqual, 20)
		})
	})
}

func TestActivity(t *testing.T) {
	Convey("Given comparisons spread over two months", t, func() {
		ctx := context.Background()
		s := newStore(t, repository.WithActivityRetention(45*24*time.Hour))
		_, _ = s.Append(ctx, rec("amy", "julia-child", 0.5, t0.AddDate(0, 0, -40)))
		_, _ = s.Append(ctx, rec("amy", "julia-child", 0.5, t0.AddDate(0, 0, -2)))
		_, _ = s.Append(ctx, rec("bob", "gordon-ramsay", 0.5, t0.AddDate(0, 0, -1)))
		_, _ = s.Append(ctx, rec("bob", "julia-child", 0.5, t0.AddDate(0, 0, -60)))

		Convey("Activity counts only the window", func() {
			got, err := s.Activity(ctx, "Cooking", t0.AddDate(0, 0, -30))
			So(err, ShouldBeNil)
			So(got, ShouldResemble, map[string]int{"julia-child": 1, "gordon-ramsay": 1})
		})

		Convey("Prune drops activity beyond retention", func() {
			s.Prune()
			got, _ := s.Activity(ctx, "Cooking", time.Time{})
			So(got, ShouldResemble, map[string]int{"julia-child": 2, "gordon-ramsay": 1})
		})
	})
}

func TestLeaderboard(t *testing.T) {
	Convey("Given learners with several comparisons", t, func() {
		ctx := context.Background()
		s := newStore(t)
		for _, r := range []repository.Record{
			rec("amy", "julia-child", 0.6, t0),
			rec("amy", "gordon-ramsay", 0.9, t0),
			rec("amy", "julia-child", 0.7, t0),
			rec("bob", "julia-child", 0.8, t0),
			rec("cat", "julia-child", 0.8, t0),
			rec("dan", "julia-child", 0.5, t0),
		} {
			_, err := s.Append(ctx, r)
			So(err, ShouldBeNil)
		}

		Convey("TopN orders by best similarity, ties by learner id", func() {
			top, err := s.TopN(ctx, "Cooking", 10)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 4)
			So(top[0].LearnerID, ShouldEqual, "amy")
			So(top[0].ExpertID, ShouldEqual, "gordon-ramsay")
			So(top[0].Similarity, ShouldAlmostEqual, 0.9, 1e-9)
			So(top[1].LearnerID, ShouldEqual, "bob")
			So(top[2].LearnerID, ShouldEqual, "cat")
			So(top[1].Rank, ShouldEqual, 2)
			So(top[2].Rank, ShouldEqual, 2)
			So(top[3].Rank, ShouldEqual, 4)
		})

		Convey("Rank agrees with TopN", func() {
			e, err := s.Rank(ctx, "Cooking", "cat")
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 2)
			e, err = s.Rank(ctx, "Cooking", "dan")
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 4)
			So(e.SkillType, ShouldEqual, skill.Type("Cooking"))
		})

		Convey("Unknown learners and skills are reported", func() {
			_, err := s.Rank(ctx, "Cooking", "zed")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = s.Rank(ctx, "Music/Instrument", "amy")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			top, err := s.TopN(ctx, "Music/Instrument", 3)
			So(err, ShouldBeNil)
			So(top, ShouldBeEmpty)
		})

		Convey("Invalid limits are rejected", func() {
			_, err := s.TopN(ctx, "Cooking", 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("TopN honors the limit", func() {
			top, err := s.TopN(ctx, "Cooking", 2)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 2)
		})
	})
}

func TestProgress(t *testing.T) {
	Convey("Given two finished sessions", t, func() {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.RecordSession(ctx, "amy", "Public Speaking", 60, 10*time.Minute, t0)
		So(err, ShouldBeNil)
		p, err := s.RecordSession(ctx, "amy", "Public Speaking", 80, 5*time.Minute, t0.Add(time.Hour))
		So(err, ShouldBeNil)

		So(p.TotalSessions, ShouldEqual, 2)
		So(p.AverageScore, ShouldAlmostEqual, 70, 1e-9)
		So(p.BestScore, ShouldEqual, 80)
		So(p.PracticeTime, ShouldEqual, 15*time.Minute)
		So(p.LastSessionAt, ShouldEqual, t0.Add(time.Hour))

		got, err := s.Progress(ctx, "amy", "Public Speaking")
		So(err, ShouldBeNil)
		So(got, ShouldResemble, p)

		_, err = s.Progress(ctx, "amy", "Cooking")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})
}

func BenchmarkAppend(b *testing.B) {
	s := repository.NewMemoryStore(context.Background())
	defer func() { _ = s.Close() }()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Append(ctx, rec(fmt.Sprintf("l%d", i%1000), "julia-child", float64(i%100)/100, t0))
	}
}
