// Package repository stores comparison history, learner progress and the
// per-skill learner leaderboard.
package repository

import (
	"context"
	"time"

	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/skill"
)

// Record is one persisted comparison of a learner against an expert.
type Record struct {
	ID         string        `json:"id"`
	LearnerID  string        `json:"learner_id"`
	AnalysisID string        `json:"analysis_id,omitempty"`
	SkillType  skill.Type    `json:"skill_type"`
	ExpertID   string        `json:"expert_id"`
	Similarity float64       `json:"similarity"`
	Metrics    metric.Vector `json:"metrics"`
	At         time.Time     `json:"at"`
}

// Entry is a leaderboard row: a learner's best similarity for a skill.
type Entry struct {
	Rank       int        `json:"rank"`
	LearnerID  string     `json:"learner_id"`
	Similarity float64    `json:"similarity"`
	ExpertID   string     `json:"expert_id"`
	RecordID   string     `json:"record_id"`
	SkillType  skill.Type `json:"skill_type"`
}

// Progress aggregates a learner's live sessions for one skill.
type Progress struct {
	LearnerID     string        `json:"learner_id"`
	SkillType     skill.Type    `json:"skill_type"`
	TotalSessions int           `json:"total_sessions"`
	PracticeTime  time.Duration `json:"practice_time"`
	AverageScore  float64       `json:"average_score"`
	BestScore     float64       `json:"best_score"`
	LastSessionAt time.Time     `json:"last_session_at"`
}

// Store provides read/write access to comparison history.
type Store interface {
	// Append persists rec, assigning an id and timestamp when missing.
	// Writes for one learner are applied in call order.
	Append(ctx context.Context, rec Record) (Record, error)
	// Get returns a record by id.
	Get(ctx context.Context, id string) (Record, error)
	// History returns up to limit of the learner's newest records for the
	// skill, oldest first. An empty skill type matches every skill.
	History(ctx context.Context, learnerID string, skillType skill.Type, limit int) ([]Record, error)
	// Latest returns the learner's newest record for the skill.
	Latest(ctx context.Context, learnerID string, skillType skill.Type) (Record, error)
	// Activity counts comparisons per expert for the skill since the given time.
	Activity(ctx context.Context, skillType skill.Type, since time.Time) (map[string]int, error)

	// Rank returns the learner's leaderboard entry for the skill.
	Rank(ctx context.Context, skillType skill.Type, learnerID string) (Entry, error)
	// TopN returns the top-n learners for the skill by best similarity.
	TopN(ctx context.Context, skillType skill.Type, n int) ([]Entry, error)

	// RecordSession folds one finished live session into the learner's progress.
	RecordSession(ctx context.Context, learnerID string, skillType skill.Type, score float64, d time.Duration, at time.Time) (Progress, error)
	// Progress returns the learner's session progress for the skill.
	Progress(ctx context.Context, learnerID string, skillType skill.Type) (Progress, error)

	// Count returns the number of learners with at least one record.
	Count(ctx context.Context) int
}
