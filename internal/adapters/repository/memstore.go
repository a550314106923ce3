package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/metrics"
)

// Default store configuration.
const (
	defaultActivityRetention   = 30 * 24 * time.Hour
	defaultMaintenanceInterval = 5 * time.Second
)

type activity struct {
	expertID string
	at       time.Time
}

type progressKey struct {
	learnerID string
	skillType skill.Type
}

// MemoryStore is an in-memory Store. A single lock serializes writes, so a
// learner's records land in the order Append is called.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]Record
	history  map[string][]Record
	boards   map[skill.Type]*leaderboard
	activity map[skill.Type][]activity
	progress map[progressKey]Progress

	historyLimit        int
	activityRetention   time.Duration
	maintenanceInterval time.Duration
	now                 func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a store and starts its maintenance loop, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:                make(map[string]Record),
		history:             make(map[string][]Record),
		boards:              make(map[skill.Type]*leaderboard),
		activity:            make(map[skill.Type][]activity),
		progress:            make(map[progressKey]Progress),
		activityRetention:   defaultActivityRetention,
		maintenanceInterval: defaultMaintenanceInterval,
		now:                 time.Now,
		stopChan:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMaintenance(ctx)
	return s
}

func (s *MemoryStore) startMaintenance(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.maintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Prune()
			}
		}
	}()
}

// Close stops the maintenance loop.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Prune drops activity older than the retention window and refreshes size metrics.
func (s *MemoryStore) Prune() {
	cutoff := s.now().Add(-s.activityRetention)

	s.mu.Lock()
	for t, events := range s.activity {
		kept := events[:0]
		for _, e := range events {
			if !e.at.Before(cutoff) {
				kept = append(kept, e)
			}
		}
		s.activity[t] = kept
	}
	records, learners := len(s.byID), len(s.history)
	s.mu.Unlock()

	metrics.UpdateRepositorySize(records, learners)
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, rec Record) (Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if rec.LearnerID == "" || rec.SkillType == "" {
		metrics.RecordErrorByComponent("repository", "invalid_record")
		return Record{}, fmt.Errorf("%w: learner id and skill type are required", ErrInvalidRecord)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = s.now().UTC()
	}
	rec.Metrics = rec.Metrics.Clamped()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byID[rec.ID]; dup {
		return Record{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidRecord, rec.ID)
	}
	s.byID[rec.ID] = rec
	h := append(s.history[rec.LearnerID], rec)
	if s.historyLimit > 0 && len(h) > s.historyLimit {
		for _, old := range h[:len(h)-s.historyLimit] {
			delete(s.byID, old.ID)
		}
		h = append([]Record(nil), h[len(h)-s.historyLimit:]...)
	}
	s.history[rec.LearnerID] = h

	b, ok := s.boards[rec.SkillType]
	if !ok {
		b = newLeaderboard()
		s.boards[rec.SkillType] = b
	}
	b.offer(rec)
	if rec.ExpertID != "" {
		s.activity[rec.SkillType] = append(s.activity[rec.SkillType], activity{expertID: rec.ExpertID, at: rec.At})
	}
	return rec, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	defer s.observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// History implements Store.
func (s *MemoryStore) History(ctx context.Context, learnerID string, skillType skill.Type, limit int) ([]Record, error) {
	defer s.observeQuery(time.Now())

	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.history[learnerID]
	out := []Record{}
	for i := len(h) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if skillType == "" || h[i].SkillType == skillType {
			out = append(out, h[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(ctx context.Context, learnerID string, skillType skill.Type) (Record, error) {
	recs, err := s.History(ctx, learnerID, skillType, 1)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNotFound
	}
	return recs[0], nil
}

// Activity implements Store.
func (s *MemoryStore) Activity(ctx context.Context, skillType skill.Type, since time.Time) (map[string]int, error) {
	defer s.observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int)
	for _, e := range s.activity[skillType] {
		if !e.at.Before(since) {
			out[e.expertID]++
		}
	}
	return out, nil
}

// Rank implements Store.
func (s *MemoryStore) Rank(ctx context.Context, skillType skill.Type, learnerID string) (Entry, error) {
	defer s.observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[skillType]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	e, ok := b.rank(learnerID)
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	e.SkillType = skillType
	return e, nil
}

// TopN implements Store.
func (s *MemoryStore) TopN(ctx context.Context, skillType skill.Type, n int) ([]Entry, error) {
	defer s.observeQuery(time.Now())

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[skillType]
	if !ok {
		return []Entry{}, nil
	}
	out := b.top(n)
	for i := range out {
		out[i].SkillType = skillType
	}
	return out, nil
}

// RecordSession implements Store.
func (s *MemoryStore) RecordSession(ctx context.Context, learnerID string, skillType skill.Type, score float64, d time.Duration, at time.Time) (Progress, error) {
	if learnerID == "" || skillType == "" {
		return Progress{}, fmt.Errorf("%w: learner id and skill type are required", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{learnerID: learnerID, skillType: skillType}
	p, ok := s.progress[key]
	if !ok {
		p = Progress{LearnerID: learnerID, SkillType: skillType}
	}
	p.AverageScore = (p.AverageScore*float64(p.TotalSessions) + score) / float64(p.TotalSessions+1)
	p.TotalSessions++
	p.PracticeTime += d
	p.BestScore = max(p.BestScore, score)
	if at.After(p.LastSessionAt) {
		p.LastSessionAt = at
	}
	s.progress[key] = p
	return p, nil
}

// Progress implements Store.
func (s *MemoryStore) Progress(ctx context.Context, learnerID string, skillType skill.Type) (Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progress[progressKey{learnerID: learnerID, skillType: skillType}]
	if !ok {
		return Progress{}, ErrNotFound
	}
	return p, nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

func (s *MemoryStore) observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
}
