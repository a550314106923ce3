// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/internal/domain/skill"
)

// Chunk is one batch of live metrics submitted to a session.
type Chunk struct {
	SessionID  string          // owning session
	Seq        int             // arrival order within the session, from 1
	SkillType  skill.Type      // skill the session classifies against
	Metrics    realtime.Sample // native-scale readings
	ReceivedAt time.Time       // when the API accepted the chunk
}

// ChunkResult is the classification emitted for one chunk.
type ChunkResult struct {
	Seq         int             `json:"seq"`
	Result      realtime.Result `json:"result"`
	ProcessedAt time.Time       `json:"processed_at"`
}
