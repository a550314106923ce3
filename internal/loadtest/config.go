// Package loadtest drives a running mentor service with generated analyses
// and checks that rankings and the leaderboard agree afterwards.
package loadtest

import (
	"errors"
	"time"

	"github.com/okian/mentor/internal/domain/skill"
)

// Defaults used when a Config field is zero.
const (
	DefaultBaseURL        = "http://localhost:9080"
	DefaultSkillType      = skill.Type("Public Speaking")
	DefaultAnalyses       = 1000
	DefaultLearners       = 100
	DefaultTopN           = 50
	DefaultTimeout        = 30 * time.Second
	DefaultDuplicateRatio = 0.05
	percentageMultiplier  = 100
)

// ErrInvalidConfig is returned for settings the runner cannot use.
var ErrInvalidConfig = errors.New("invalid load test config")

// Config holds configuration for a load test run.
type Config struct {
	BaseURL   string        // Base URL of the service
	SkillType skill.Type    // Skill every generated analysis targets
	Analyses  int           // Number of distinct analyses to submit
	Learners  int           // Size of the learner pool analyses are spread over
	TopN      int           // Leaderboard entries to fetch
	Workers   int           // Concurrent requests in flight
	Timeout   time.Duration // HTTP request timeout
	// DuplicateRatio is the share of analyses resubmitted with the same id.
	DuplicateRatio float64
	Seed           uint64 // Seed for the value generator; zero picks one from the clock
	OutputFile     string // Optional JSON dump of the generated analyses
	Verbose        bool
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.SkillType == "" {
		out.SkillType = DefaultSkillType
	}
	if out.Analyses == 0 {
		out.Analyses = DefaultAnalyses
	}
	if out.Learners == 0 {
		out.Learners = DefaultLearners
	}
	if out.TopN == 0 {
		out.TopN = DefaultTopN
	}
	if out.Workers == 0 {
		out.Workers = 1
	}
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Seed == 0 {
		out.Seed = uint64(time.Now().UnixNano())
	}
	return &out
}

func (c *Config) validate() error {
	switch {
	case c.Analyses < 0 || c.Learners < 0 || c.TopN < 0 || c.Workers < 0:
		return errors.Join(ErrInvalidConfig, errors.New("counts must not be negative"))
	case c.DuplicateRatio < 0 || c.DuplicateRatio > 1:
		return errors.Join(ErrInvalidConfig, errors.New("duplicate ratio must be within [0,1]"))
	}
	return nil
}

// Submission is one analysis posted to the service.
type Submission struct {
	AnalysisID string         `json:"analysis_id"`
	LearnerID  string         `json:"learner_id"`
	SkillType  skill.Type     `json:"skill_type"`
	Analysis   map[string]any `json:"analysis"`
}

// Entry is a ranked leaderboard row as served by the API.
type Entry struct {
	Rank       int     `json:"rank"`
	LearnerID  string  `json:"learner_id"`
	Similarity float64 `json:"similarity"`
	ExpertID   string  `json:"expert_id"`
}

// Stats holds run statistics.
type Stats struct {
	AnalysesGenerated  int
	Submitted          int
	Successful         int
	Duplicate          int
	Failed             int
	RankingsRetrieved  int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// SuccessRate is the share of submissions that were accepted, in percent.
func (s *Stats) SuccessRate() float64 {
	if s.Submitted == 0 {
		return 0
	}
	return float64(s.Successful+s.Duplicate) / float64(s.Submitted) * percentageMultiplier
}

// Throughput is submissions per second over the whole run.
func (s *Stats) Throughput() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}
