// Package dedupe tracks analysis ids for idempotent processing and keeps
// the outcome of each completed id so retries can be answered from cache.
package dedupe

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 50000

// Deduper records seen ids to ensure at-most-once processing.
type Deduper[V any] interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Complete stores the outcome of a recorded id.
	Complete(ctx context.Context, id string, v V)

	// Result returns the stored outcome. ok is false while the id is still
	// in flight or unknown.
	Result(ctx context.Context, id string) (v V, ok bool)

	// Unrecord removes an id, allowing it to be retried. Used when
	// processing failed after SeenAndRecord.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type slot[V any] struct {
	done bool
	v    V
}

// inMemoryDeduper keeps ids in an LRU when bounded (maxSize > 0) and in a
// plain map otherwise.
type inMemoryDeduper[V any] struct {
	mu      sync.Mutex
	maxSize int
	bounded *lru.Cache[string, slot[V]]
	seen    map[string]slot[V]
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper[V any](opts ...Option) (Deduper[V], error) {
	cfg := config{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &inMemoryDeduper[V]{maxSize: cfg.maxSize}
	if d.maxSize > 0 {
		bounded, err := lru.New[string, slot[V]](d.maxSize)
		if err != nil {
			return nil, fmt.Errorf("dedupe cache: %w", err)
		}
		d.bounded = bounded
	} else {
		d.seen = make(map[string]slot[V])
	}
	return d, nil
}

func (d *inMemoryDeduper[V]) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.bounded != nil {
		if _, ok := d.bounded.Get(id); ok {
			return true
		}
		d.bounded.Add(id, slot[V]{})
		return false
	}
	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = slot[V]{}
	return false
}

func (d *inMemoryDeduper[V]) Complete(ctx context.Context, id string, v V) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := slot[V]{done: true, v: v}
	if d.bounded != nil {
		d.bounded.Add(id, s)
		return
	}
	d.seen[id] = s
}

func (d *inMemoryDeduper[V]) Result(ctx context.Context, id string) (V, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var (
		s  slot[V]
		ok bool
	)
	if d.bounded != nil {
		s, ok = d.bounded.Peek(id)
	} else {
		s, ok = d.seen[id]
	}
	if !ok || !s.done {
		var zero V
		return zero, false
	}
	return s.v, true
}

func (d *inMemoryDeduper[V]) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.bounded != nil {
		d.bounded.Remove(id)
		return
	}
	delete(d.seen, id)
}

func (d *inMemoryDeduper[V]) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.bounded != nil {
		return int64(d.bounded.Len())
	}
	return int64(len(d.seen))
}
