package loadtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Runner executes a load test against one service.
type Runner struct {
	cfg    *Config
	skills *skill.Registry
	client *Client
	logger logger.Logger
}

// NewRunner validates cfg and builds a runner. skills supplies the
// extraction rules used to shape generated analyses.
func NewRunner(cfg Config, skills *skill.Registry, log logger.Logger) (*Runner, error) {
	c := cfg.withDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	if _, ok := skills.Lookup(c.SkillType); !ok {
		return nil, fmt.Errorf("%w: unknown skill %q", ErrInvalidConfig, c.SkillType)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{
		cfg:    c,
		skills: skills,
		client: NewClient(c.BaseURL, c.Timeout),
		logger: log,
	}, nil
}

// Run executes the complete test: health check, generation, submission,
// duplicate replay, rank retrieval, leaderboard retrieval and verification.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	r.logger.Info(ctx, "starting mentor load test",
		logger.String("baseURL", r.cfg.BaseURL),
		logger.String("skill", string(r.cfg.SkillType)),
		logger.Int("analyses", r.cfg.Analyses),
		logger.Int("learners", r.cfg.Learners),
		logger.Int("workers", r.cfg.Workers),
		logger.Float64("duplicateRatio", r.cfg.DuplicateRatio))

	if err := r.client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	profile, _ := r.skills.Lookup(r.cfg.SkillType)
	learners := Learners(r.cfg.Learners)
	subs, err := NewGenerator(profile, r.cfg.Seed).Generate(ctx, r.cfg.Analyses, learners)
	if err != nil {
		return stats, fmt.Errorf("analysis generation failed: %w", err)
	}
	stats.AnalysesGenerated = len(subs)

	if err := r.submit(ctx, subs, stats); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}
	// Replays go out after the originals so none races an in-flight original.
	replays := subs[:int(float64(len(subs))*r.cfg.DuplicateRatio)]
	if err := r.submit(ctx, replays, stats); err != nil {
		return stats, fmt.Errorf("duplicate replay failed: %w", err)
	}

	rankings, err := r.rankings(ctx, learners, stats)
	if err != nil {
		return stats, fmt.Errorf("ranking retrieval failed: %w", err)
	}
	board, err := r.client.Leaderboard(ctx, r.cfg.SkillType, r.cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(board)

	if err := Verify(rankings, board); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}
	r.logTop(ctx, board)

	if r.cfg.OutputFile != "" {
		if err := saveSubmissions(r.cfg.OutputFile, subs); err != nil {
			r.logger.Warn(ctx, "failed to save analyses to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	r.logger.Info(ctx, "final statistics",
		logger.Int("generated", stats.AnalysesGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("rankingsRetrieved", stats.RankingsRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", stats.SuccessRate()),
		logger.Float64("submissionsPerSecond", stats.Throughput()))
	return stats, nil
}

// submit posts subs with at most Workers requests in flight. Individual
// failures are counted, not returned.
func (r *Runner) submit(ctx context.Context, subs []Submission, stats *Stats) error {
	var successful, duplicate, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, sub := range subs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := r.client.Submit(gctx, sub)
			switch res {
			case resultSuccess:
				successful.Add(1)
			case resultDuplicate:
				duplicate.Add(1)
			default:
				failed.Add(1)
				if r.cfg.Verbose {
					r.logger.Warn(gctx, "submission failed", logger.String("analysis", sub.AnalysisID), logger.Error(err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stats.Submitted += len(subs)
	stats.Successful += int(successful.Load())
	stats.Duplicate += int(duplicate.Load())
	stats.Failed += int(failed.Load())
	r.logger.Info(ctx, "submission batch completed",
		logger.Int("batch", len(subs)),
		logger.Int("successful", int(successful.Load())),
		logger.Int("duplicate", int(duplicate.Load())),
		logger.Int("failed", int(failed.Load())))
	return nil
}

// rankings fetches each learner's rank concurrently. Learners without a
// recorded comparison are skipped.
func (r *Runner) rankings(ctx context.Context, learners []string, stats *Stats) ([]Entry, error) {
	var (
		mu  sync.Mutex
		out = make([]Entry, 0, len(learners))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, id := range learners {
		g.Go(func() error {
			entry, err := r.client.Rank(gctx, r.cfg.SkillType, id)
			if err != nil {
				if r.cfg.Verbose {
					r.logger.Warn(gctx, "rank lookup failed", logger.String("learner", id), logger.Error(err))
				}
				return nil
			}
			mu.Lock()
			out = append(out, entry)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats.RankingsRetrieved = len(out)
	return out, nil
}

func (r *Runner) logTop(ctx context.Context, board []Entry) {
	n := min(len(board), 10)
	for _, e := range board[:n] {
		r.logger.Info(ctx, "leaderboard",
			logger.Int("rank", e.Rank),
			logger.String("learner", e.LearnerID),
			logger.Float64("similarity", e.Similarity),
			logger.String("expert", e.ExpertID))
	}
}

// saveSubmissions writes the generated analyses as a JSON array.
func saveSubmissions(filename string, subs []Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analyses: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}
