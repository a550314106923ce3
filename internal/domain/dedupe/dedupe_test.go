package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/mentor/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

type outcome struct {
	RecordID string
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new deduper", t, func() {
		ctx := context.Background()
		d, err := dedupe.NewInMemoryDeduper[outcome]()
		So(err, ShouldBeNil)
		So(d.Size(), ShouldEqual, 0)

		Convey("When an analysis id is new", func() {
			seen := d.SeenAndRecord(ctx, "analysis-1")

			Convey("Then it is recorded but has no outcome yet", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
				_, ok := d.Result(ctx, "analysis-1")
				So(ok, ShouldBeFalse)
			})

			Convey("And a retry is reported as seen", func() {
				So(d.SeenAndRecord(ctx, "analysis-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And completing it stores the outcome", func() {
				d.Complete(ctx, "analysis-1", outcome{RecordID: "r1"})
				got, ok := d.Result(ctx, "analysis-1")
				So(ok, ShouldBeTrue)
				So(got.RecordID, ShouldEqual, "r1")
				So(d.SeenAndRecord(ctx, "analysis-1"), ShouldBeTrue)
			})

			Convey("And unrecording it allows a retry", func() {
				d.Unrecord(ctx, "analysis-1")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "analysis-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown id", func() {
			d.Unrecord(ctx, "nope")
			So(d.Size(), ShouldEqual, 0)
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper bounded to three ids", t, func() {
		ctx := context.Background()
		d, err := dedupe.NewInMemoryDeduper[outcome](dedupe.WithMaxSize(3))
		So(err, ShouldBeNil)
		for _, id := range []string{"a", "b", "c"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("When a retry refreshes a and a fourth id arrives", func() {
			So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "d"), ShouldBeFalse)

			Convey("Then the least recently seen id is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d, err := dedupe.NewInMemoryDeduper[outcome](dedupe.WithMaxSize(0))
		So(err, ShouldBeNil)
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("analysis-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "analysis-0"), ShouldBeTrue)

		d.Complete(ctx, "analysis-7", outcome{RecordID: "r7"})
		got, ok := d.Result(ctx, "analysis-7")
		So(ok, ShouldBeTrue)
		So(got.RecordID, ShouldEqual, "r7")
	})
}

func TestNewInMemoryDeduper(t *testing.T) {
	Convey("Given any configured size", t, func() {
		for _, size := range []int{-1, 0, 1, 50000} {
			d, err := dedupe.NewInMemoryDeduper[outcome](dedupe.WithMaxSize(size))

			Convey(fmt.Sprintf("Then size %d builds a working deduper", size), func() {
				So(err, ShouldBeNil)
				So(d, ShouldNotBeNil)
				So(d.SeenAndRecord(context.Background(), "a"), ShouldBeFalse)
				So(d.SeenAndRecord(context.Background(), "a"), ShouldBeTrue)
			})
		}
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on the same ids", t, func() {
		ctx := context.Background()
		d, err := dedupe.NewInMemoryDeduper[outcome](dedupe.WithMaxSize(1000))
		So(err, ShouldBeNil)
		const workers = 10
		const ids = 100

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < ids; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("analysis-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each id is claimed exactly once", func() {
			So(fresh, ShouldEqual, ids)
			So(d.Size(), ShouldEqual, int64(ids))
		})
	})
}
