// Package session runs live practice sessions: each session owns an
// ordered chunk queue and a single classification worker.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/okian/mentor/internal/adapters/mq/queue"
	"github.com/okian/mentor/internal/adapters/mq/worker"
	"github.com/okian/mentor/internal/adapters/repository"
	"github.com/okian/mentor/internal/domain/model"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/logger"
	"github.com/okian/mentor/pkg/metrics"
)

// Default manager configuration.
const (
	defaultQueueSize   = 64
	defaultRetained    = 1000
	defaultIdleTimeout = 10 * time.Minute
	minReapInterval    = time.Second
	endTimeout         = 5 * time.Second
)

// ProgressRecorder folds finished sessions into learner progress.
type ProgressRecorder interface {
	RecordSession(ctx context.Context, learnerID string, skillType skill.Type, score float64, d time.Duration, at time.Time) (repository.Progress, error)
}

// Summary is returned when a session ends.
type Summary struct {
	Session  Snapshot             `json:"session"`
	Duration time.Duration        `json:"duration"`
	Progress *repository.Progress `json:"progress,omitempty"`
}

// Manager owns every live session. Ended sessions stay readable in a
// bounded LRU.
type Manager struct {
	mu    sync.Mutex
	live  map[string]*session
	ended *lru.Cache[string, Snapshot]

	classifier worker.Classifier
	progress   ProgressRecorder

	queueSize   int
	retained    int
	idleTimeout time.Duration
	logger      logger.Logger
	now         func() time.Time

	base     context.Context
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewManager creates a Manager. Session workers and the idle reaper run
// until ctx is done or Close is called.
func NewManager(ctx context.Context, c worker.Classifier, progress ProgressRecorder, opts ...Option) (*Manager, error) {
	m := &Manager{
		live:        make(map[string]*session),
		classifier:  c,
		progress:    progress,
		queueSize:   defaultQueueSize,
		retained:    defaultRetained,
		idleTimeout: defaultIdleTimeout,
		logger:      logger.Discard(),
		now:         time.Now,
		base:        ctx,
		stopChan:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	ended, err := lru.New[string, Snapshot](m.retained)
	if err != nil {
		return nil, fmt.Errorf("retained sessions cache: %w", err)
	}
	m.ended = ended
	if m.idleTimeout > 0 {
		m.startReaper(ctx)
	}
	return m, nil
}

// Start opens a session for the learner.
func (m *Manager) Start(ctx context.Context, learnerID string, skillType skill.Type) (Snapshot, error) {
	if learnerID == "" || skillType == "" {
		return Snapshot{}, fmt.Errorf("%w: learner id and skill type are required", ErrInvalid)
	}
	now := m.now().UTC()
	wctx, cancel := context.WithCancel(m.base)
	s := &session{
		id:           uuid.NewString(),
		learnerID:    learnerID,
		skillType:    skillType,
		startedAt:    now,
		lastActivity: now,
		subs:         make(map[int]chan model.ChunkResult),
		queue:        queue.NewInMemoryQueue(queue.WithCapacity(m.queueSize)),
		cancel:       cancel,
	}
	s.worker = worker.NewInMemoryWorker(s.queue, m.classifier, s,
		worker.WithName("session-"+s.id),
		worker.WithLogger(m.logger),
		worker.WithClock(m.now),
	)

	m.mu.Lock()
	m.live[s.id] = s
	m.mu.Unlock()

	go s.worker.Run(wctx)
	metrics.RecordSessionStarted()
	m.logger.Info(ctx, "session started",
		logger.String("session", s.id),
		logger.String("learner", learnerID),
		logger.String("skill", string(skillType)),
	)
	return s.snapshot(), nil
}

// Submit enqueues a chunk and returns its sequence number.
func (m *Manager) Submit(ctx context.Context, id string, sample realtime.Sample) (int, error) {
	if err := sample.Validate(); err != nil {
		metrics.RecordChunkRejected()
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	s, err := m.lookupLive(id)
	if err != nil {
		metrics.RecordChunkRejected()
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		metrics.RecordChunkRejected()
		return 0, ErrEnded
	}
	now := m.now().UTC()
	c := model.Chunk{SessionID: s.id, Seq: s.received + 1, SkillType: s.skillType, Metrics: sample, ReceivedAt: now}
	if err := s.queue.Enqueue(ctx, c); err != nil {
		metrics.RecordChunkRejected()
		if errors.Is(err, queue.ErrFull) {
			return 0, ErrBackpressure
		}
		if errors.Is(err, queue.ErrClosed) {
			return 0, ErrEnded
		}
		return 0, err
	}
	s.received++
	s.lastActivity = now
	return c.Seq, nil
}

// Get returns a live or retained session.
func (m *Manager) Get(ctx context.Context, id string) (Snapshot, error) {
	m.mu.Lock()
	s, ok := m.live[id]
	m.mu.Unlock()
	if ok {
		return s.snapshot(), nil
	}
	if snap, ok := m.ended.Get(id); ok {
		return snap, nil
	}
	return Snapshot{}, ErrNotFound
}

// Subscribe streams results emitted after the call. The channel is closed
// when the session ends or cancel is called.
func (m *Manager) Subscribe(ctx context.Context, id string) (<-chan model.ChunkResult, func(), error) {
	s, err := m.lookupLive(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.subscribe()
	return ch, cancel, nil
}

// End stops the session. Pending chunks are dropped; emitted results stay
// readable through Get.
func (m *Manager) End(ctx context.Context, id, reason string) (Summary, error) {
	m.mu.Lock()
	s, ok := m.live[id]
	if ok {
		delete(m.live, id)
	}
	m.mu.Unlock()
	if !ok {
		if _, retained := m.ended.Peek(id); retained {
			return Summary{}, ErrEnded
		}
		return Summary{}, ErrNotFound
	}

	now := m.now().UTC()
	s.markEnded(reason, now)
	_ = s.queue.Close()
	s.cancel()
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), endTimeout)
	defer cancel()
	if err := s.worker.Shutdown(sctx); err != nil {
		m.logger.Warn(ctx, "session worker did not stop", logger.String("session", id), logger.Error(err))
	}

	snap := s.snapshot()
	m.ended.Add(id, snap)
	metrics.RecordSessionEnded(reason)

	sum := Summary{Session: snap, Duration: now.Sub(snap.StartedAt)}
	if snap.ChunksProcessed > 0 && m.progress != nil {
		p, err := m.progress.RecordSession(ctx, snap.LearnerID, snap.SkillType, snap.AverageScore, sum.Duration, now)
		if err != nil {
			m.logger.Error(ctx, "record session progress", logger.String("session", id), logger.Error(err))
		} else {
			sum.Progress = &p
		}
	}
	m.logger.Info(ctx, "session ended",
		logger.String("session", id),
		logger.String("reason", reason),
		logger.Int("chunks", snap.ChunksProcessed),
		logger.Float64("average_score", snap.AverageScore),
	)
	return sum, nil
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Close ends every live session and stops the reaper.
func (m *Manager) Close(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()

	m.mu.Lock()
	ids := make([]string, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if _, err := m.End(ctx, id, ReasonShutdown); err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrEnded) {
			return err
		}
	}
	return nil
}

func (m *Manager) lookupLive(id string) (*session, error) {
	m.mu.Lock()
	s, ok := m.live[id]
	m.mu.Unlock()
	if ok {
		return s, nil
	}
	if _, retained := m.ended.Peek(id); retained {
		return nil, ErrEnded
	}
	return nil, ErrNotFound
}

func (m *Manager) startReaper(ctx context.Context) {
	interval := max(m.idleTimeout/2, minReapInterval)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopChan:
				return
			case <-ticker.C:
				m.ReapIdle(ctx)
			}
		}
	}()
}

// ReapIdle ends sessions idle for longer than the idle timeout.
func (m *Manager) ReapIdle(ctx context.Context) int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTimeout)
	m.mu.Lock()
	var idle []string
	for id, s := range m.live {
		s.mu.Lock()
		if s.lastActivity.Before(cutoff) {
			idle = append(idle, id)
		}
		s.mu.Unlock()
	}
	m.mu.Unlock()

	for _, id := range idle {
		_, _ = m.End(ctx, id, ReasonIdle)
	}
	return len(idle)
}
