package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/mentor/internal/domain/model"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/logger"
	"github.com/okian/mentor/pkg/metrics"
)

// Classifier scores one chunk of live metrics.
type Classifier interface {
	Classify(s realtime.Sample, skillType skill.Type) realtime.Result
}

// Sink receives classified chunks. Deliver returns false once the sink no
// longer accepts results, which stops the worker.
type Sink interface {
	Deliver(ctx context.Context, r model.ChunkResult) bool
}

// Queue defines how workers receive chunks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Chunk
}

// Worker processes chunks in arrival order.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, the queue is
	// drained after closing, or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the worker without processing pending chunks.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is the single consumer of one session queue.
type InMemoryWorker struct {
	queue      Queue
	classifier Classifier
	sink       Sink
	name       string
	now        func() time.Time

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, c Classifier, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		classifier: c,
		sink:       sink,
		name:       "worker",
		now:        time.Now,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	chunks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case c, ok := <-chunks:
			if !ok {
				return
			}
			// Shutdown may race with a ready chunk; it wins.
			select {
			case <-w.shutdown:
				return
			default:
			}
			if !w.process(ctx, c) {
				w.logger.Debug(ctx, "sink closed, stopping", logger.Int("seq", c.Seq))
				return
			}
		}
	}
}

// Shutdown signals the worker and waits for it to stop.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, c model.Chunk) bool { //nolint:gocritic // hugeParam: Chunk is passed by value for channel semantics
	start := time.Now()
	res := w.classifier.Classify(c.Metrics, c.SkillType)
	metrics.RecordChunkProcessed(float64(time.Since(start).Milliseconds()))

	priorities := make([]string, 0, len(res.Suggestions))
	for _, s := range res.Suggestions {
		priorities = append(priorities, string(s.Priority))
	}
	metrics.RecordClassification(priorities...)

	return w.sink.Deliver(ctx, model.ChunkResult{Seq: c.Seq, Result: res, ProcessedAt: w.now().UTC()})
}
