package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/mentor/internal/adapters/mq/worker"
	model "github.com/okian/mentor/internal/domain/model"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan model.Chunk
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan model.Chunk, 10)}
}

func (q *mockQueue) Dequeue(ctx context.Context) <-chan model.Chunk { return q.ch }

type mockClassifier struct{}

func (mockClassifier) Classify(s realtime.Sample, t skill.Type) realtime.Result {
	return realtime.Result{SkillType: t, OverallScore: s["score"]}
}

type mockSink struct {
	mu      sync.Mutex
	got     []model.ChunkResult
	limit   int
	arrived chan struct{}
}

func newMockSink(limit int) *mockSink {
	return &mockSink{limit: limit, arrived: make(chan struct{}, 16)}
}

func (s *mockSink) Deliver(ctx context.Context, r model.ChunkResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.got) >= s.limit {
		return false
	}
	s.got = append(s.got, r)
	s.arrived <- struct{}{}
	return true
}

func (s *mockSink) results() []model.ChunkResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChunkResult(nil), s.got...)
}

func waitDone(w *worker.InMemoryWorker) bool {
	select {
	case <-w.Done():
		return true
	case <-time.After(time.Second):
		return false
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a session queue", t, func() {
		q := newMockQueue()
		sink := newMockSink(0)
		fixed := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		w := worker.NewInMemoryWorker(q, mockClassifier{}, sink,
			worker.WithName("session-1"),
			worker.WithClock(func() time.Time { return fixed }),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When chunks arrive", func() {
			for i := 1; i <= 3; i++ {
				q.ch <- model.Chunk{Seq: i, SkillType: "Cooking", Metrics: realtime.Sample{"score": float64(i * 10)}}
			}
			for i := 0; i < 3; i++ {
				<-sink.arrived
			}

			convey.Convey("Then results are delivered in arrival order", func() {
				got := sink.results()
				convey.So(got, convey.ShouldHaveLength, 3)
				for i, r := range got {
					convey.So(r.Seq, convey.ShouldEqual, i+1)
					convey.So(r.Result.OverallScore, convey.ShouldEqual, float64((i+1)*10))
					convey.So(r.ProcessedAt, convey.ShouldEqual, fixed)
				}
			})
		})

		convey.Convey("When the queue is closed", func() {
			close(q.ch)
			convey.So(waitDone(w), convey.ShouldBeTrue)
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)

			convey.Convey("Then later chunks are not processed", func() {
				q.ch <- model.Chunk{Seq: 9}
				time.Sleep(20 * time.Millisecond)
				convey.So(sink.results(), convey.ShouldBeEmpty)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cancel()
			convey.So(waitDone(w), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a sink that stops accepting", t, func() {
		q := newMockQueue()
		sink := newMockSink(1)
		w := worker.NewInMemoryWorker(q, mockClassifier{}, sink)
		go w.Run(context.Background())

		q.ch <- model.Chunk{Seq: 1}
		q.ch <- model.Chunk{Seq: 2}

		convey.So(waitDone(w), convey.ShouldBeTrue)
		convey.So(sink.results(), convey.ShouldHaveLength, 1)
	})
}
