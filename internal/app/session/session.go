package session

import (
	"context"
	"sync"
	"time"

	"github.com/okian/mentor/internal/adapters/mq/queue"
	"github.com/okian/mentor/internal/adapters/mq/worker"
	"github.com/okian/mentor/internal/domain/model"
	"github.com/okian/mentor/internal/domain/skill"
)

// State is a session lifecycle state.
type State string

// Session states.
const (
	StateActive State = "active"
	StateEnded  State = "ended"
)

// End reasons.
const (
	ReasonClient   = "client"
	ReasonIdle     = "idle"
	ReasonShutdown = "shutdown"
)

const subscriberBuffer = 16

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID              string              `json:"id"`
	LearnerID       string              `json:"learner_id"`
	SkillType       skill.Type          `json:"skill_type"`
	State           State               `json:"state"`
	StartedAt       time.Time           `json:"started_at"`
	EndedAt         *time.Time          `json:"ended_at,omitempty"`
	EndReason       string              `json:"end_reason,omitempty"`
	ChunksReceived  int                 `json:"chunks_received"`
	ChunksProcessed int                 `json:"chunks_processed"`
	LatestScore     float64             `json:"latest_score"`
	AverageScore    float64             `json:"average_score"`
	Results         []model.ChunkResult `json:"results"`
}

// session is one live session. It is the worker's Sink: once ended it
// refuses results, and emitted results stay readable.
type session struct {
	mu           sync.Mutex
	id           string
	learnerID    string
	skillType    skill.Type
	startedAt    time.Time
	lastActivity time.Time
	endedAt      time.Time
	ended        bool
	endReason    string
	received     int
	scoreSum     float64
	results      []model.ChunkResult
	subs         map[int]chan model.ChunkResult
	nextSub      int

	queue  *queue.InMemoryQueue
	worker *worker.InMemoryWorker
	cancel context.CancelFunc
}

// Deliver implements worker.Sink.
func (s *session) Deliver(ctx context.Context, r model.ChunkResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false
	}
	s.results = append(s.results, r)
	s.scoreSum += r.Result.OverallScore
	for _, ch := range s.subs {
		select {
		case ch <- r:
		default:
			// slow subscriber; it can catch up from the snapshot
		}
	}
	return true
}

func (s *session) subscribe() (<-chan model.ChunkResult, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan model.ChunkResult, subscriberBuffer)
	if s.ended {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// markEnded stops result delivery and closes subscribers. Returns false if
// the session had already ended.
func (s *session) markEnded(reason string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false
	}
	s.ended = true
	s.endReason = reason
	s.endedAt = at
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	return true
}

func (s *session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:              s.id,
		LearnerID:       s.learnerID,
		SkillType:       s.skillType,
		State:           StateActive,
		StartedAt:       s.startedAt,
		ChunksReceived:  s.received,
		ChunksProcessed: len(s.results),
		Results:         append([]model.ChunkResult{}, s.results...),
	}
	if n := len(s.results); n > 0 {
		snap.LatestScore = s.results[n-1].Result.OverallScore
		snap.AverageScore = s.scoreSum / float64(n)
	}
	if s.ended {
		at := s.endedAt
		snap.State = StateEnded
		snap.EndedAt = &at
		snap.EndReason = s.endReason
	}
	return snap
}
