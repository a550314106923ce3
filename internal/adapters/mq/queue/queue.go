// Package queue holds the ordered, bounded buffer of chunks waiting for a
// live session's worker.
package queue

import (
	"context"
	"sync"

	"github.com/okian/mentor/internal/domain/model"
	"github.com/okian/mentor/pkg/metrics"
)

const defaultQueueCapacity = 64

// Chunk is the payload flowing through the queue.
type Chunk = model.Chunk

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
// Chunks are delivered in enqueue order.
type Queue interface {
	// Enqueue adds a chunk. Returns ErrFull or ErrClosed when it was not added.
	Enqueue(ctx context.Context, c Chunk) error

	// Dequeue returns a channel that receives chunks as they become available.
	// The channel is closed when the queue is closed and drained, or ctx is done.
	Dequeue(ctx context.Context) <-chan Chunk

	// Len returns the current number of queued chunks.
	Len(ctx context.Context) int

	// Close stops accepting chunks and lets consumers drain.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	chunks   chan Chunk
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.chunks = make(chan Chunk, q.capacity)
	return q
}

// Enqueue adds a chunk to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Chunk) error { //nolint:gocritic // hugeParam: Chunk is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.chunks <- c:
		metrics.RecordQueueEnqueue()
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive chunks as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Chunk {
	out := make(chan Chunk)
	go func() {
		defer close(out)
		for c := range q.chunks {
			select {
			case out <- c:
				metrics.RecordQueueDequeue()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued chunks.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.chunks)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.chunks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
