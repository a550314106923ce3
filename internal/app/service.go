// Package service composes the scoring, matching and recommendation engines
// with history storage and live sessions behind one facade used by the HTTP
// API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/mentor/internal/adapters/repository"
	"github.com/okian/mentor/internal/app/session"
	"github.com/okian/mentor/internal/domain/dedupe"
	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/feedback"
	"github.com/okian/mentor/internal/domain/matching"
	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/model"
	"github.com/okian/mentor/internal/domain/normalize"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/internal/domain/recommend"
	"github.com/okian/mentor/internal/domain/scoring"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/logger"
	"github.com/okian/mentor/pkg/metrics"
)

const (
	defaultTopN               = 5
	defaultMaxTopN            = 100
	defaultMaxRecommendations = 10
	defaultLeaderboardLimit   = 10
	defaultHistoryLimit       = 200
	defaultDedupeSize         = 100_000
	defaultTrendingWindow     = 30 * 24 * time.Hour
)

// Service implements the API dependencies for the mentoring engine.
type Service struct {
	mu sync.RWMutex

	// Reference data
	skills *skill.Registry
	corpus *expert.Corpus

	// Engines
	normalizer  *normalize.Normalizer
	comparator  *scoring.Comparator
	matcher     *matching.Matcher
	feedback    *feedback.Generator
	recommender *recommend.Recommender
	classifier  *realtime.Classifier

	// Stateful components
	store    *repository.MemoryStore
	deduper  dedupe.Deduper[AnalysisOutcome]
	sessions *session.Manager

	// Configuration
	skillWeights       map[string]map[string]float64
	topN               int
	maxTopN            int
	maxRecommendations int
	renormalize        bool
	defaultWeight      float64
	weeklyHours        float64
	trendingWindow     time.Duration
	trendingDivisor    float64
	historyLimit       int
	dedupeSize         int
	sessionQueueSize   int
	sessionIdleTimeout time.Duration
	retainedSessions   int

	started bool
	logger  logger.Logger
	now     func() time.Time
}

// New creates a Service. Engines and stores are built by Start.
func New(opts ...Option) *Service {
	s := &Service{
		topN:               defaultTopN,
		maxTopN:            defaultMaxTopN,
		maxRecommendations: defaultMaxRecommendations,
		defaultWeight:      scoring.DefaultMetricWeight,
		weeklyHours:        recommend.DefaultWeeklyPracticeHours,
		trendingWindow:     defaultTrendingWindow,
		trendingDivisor:    recommend.DefaultTrendingDivisor,
		historyLimit:       defaultHistoryLimit,
		dedupeSize:         defaultDedupeSize,
		sessionIdleTimeout: -1,
		logger:             logger.Discard(),
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads reference data when none was supplied and builds every component.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting mentor service...")

	if s.skills == nil {
		r, err := skill.Builtin()
		if err != nil {
			return fmt.Errorf("load skill table: %w", err)
		}
		s.skills = r
	}
	if len(s.skillWeights) > 0 {
		r, err := s.skills.WithWeights(s.skillWeights)
		if err != nil {
			return fmt.Errorf("apply skill weights: %w", err)
		}
		s.skills = r
	}
	if s.corpus == nil {
		c, err := expert.Seed()
		if err != nil {
			return fmt.Errorf("load expert corpus: %w", err)
		}
		s.corpus = c
	}

	s.normalizer = normalize.New(s.skills)
	s.comparator = scoring.NewComparator(s.skills,
		scoring.WithRenormalize(s.renormalize),
		scoring.WithDefaultWeight(s.defaultWeight),
		scoring.WithClock(s.now),
	)
	s.matcher = matching.New(s.comparator, s.corpus)
	s.feedback = feedback.New()
	s.recommender = recommend.New(s.corpus,
		recommend.WithWeeklyPracticeHours(s.weeklyHours),
		recommend.WithTrendingDivisor(s.trendingDivisor),
		recommend.WithClock(s.now),
	)
	s.classifier = realtime.New(s.skills, realtime.WithClock(s.now))

	s.store = repository.NewMemoryStore(ctx,
		repository.WithHistoryLimit(s.historyLimit),
		repository.WithActivityRetention(s.trendingWindow),
		repository.WithClock(s.now),
	)
	deduper, err := dedupe.NewInMemoryDeduper[AnalysisOutcome](dedupe.WithMaxSize(s.dedupeSize))
	if err != nil {
		_ = s.store.Close()
		return err
	}
	s.deduper = deduper

	sessOpts := []session.Option{
		session.WithLogger(s.logger.Named("sessions")),
		session.WithClock(s.now),
	}
	if s.sessionQueueSize > 0 {
		sessOpts = append(sessOpts, session.WithQueueSize(s.sessionQueueSize))
	}
	if s.sessionIdleTimeout >= 0 {
		sessOpts = append(sessOpts, session.WithIdleTimeout(s.sessionIdleTimeout))
	}
	if s.retainedSessions > 0 {
		sessOpts = append(sessOpts, session.WithRetained(s.retainedSessions))
	}
	sessions, err := session.NewManager(ctx, s.classifier, s.store, sessOpts...)
	if err != nil {
		_ = s.store.Close()
		return fmt.Errorf("session manager: %w", err)
	}
	s.sessions = sessions

	s.started = true
	s.logger.Info(ctx, "mentor service started",
		logger.Int("experts", s.corpus.Len()),
		logger.Int("skills", len(s.skills.Types())),
		logger.Bool("renormalize", s.renormalize),
	)
	return nil
}

// Stop ends live sessions and releases the store.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping mentor service...")

	if err := s.sessions.Close(ctx); err != nil {
		s.logger.Warn(ctx, "closing sessions", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "mentor service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) clamp(n, def, maxN int) int {
	if n <= 0 {
		n = def
	}
	if maxN > 0 && n > maxN {
		n = maxN
	}
	return n
}

func (s *Service) persist(ctx context.Context, rec repository.Record) (repository.Record, error) {
	out, err := s.store.Append(ctx, rec)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "append")
		return repository.Record{}, fmt.Errorf("persist comparison: %w", err)
	}
	return out, nil
}

func recordFeedback(b feedback.Bundle) {
	metrics.RecordFeedbackItems("strength", len(b.Strengths))
	metrics.RecordFeedbackItems("improvement", len(b.ImprovementAreas))
	metrics.RecordFeedbackItems("recommendation", len(b.Recommendations))
}

// AnalysisRequest submits one raw analysis for a learner.
type AnalysisRequest struct {
	AnalysisID string             `json:"analysis_id" validate:"required,max=128"`
	LearnerID  string             `json:"learner_id" validate:"required,max=128"`
	SkillType  skill.Type         `json:"skill_type" validate:"required"`
	Analysis   normalize.Analysis `json:"analysis" validate:"required"`
	TopN       int                `json:"top_n,omitempty" validate:"gte=0"`
}

// AnalysisOutcome is the processed result of an analysis. Replays of the
// same analysis id return the stored outcome with Duplicate set.
type AnalysisOutcome struct {
	AnalysisID  string           `json:"analysis_id"`
	LearnerID   string           `json:"learner_id"`
	SkillType   skill.Type       `json:"skill_type"`
	Metrics     metric.Vector    `json:"metrics"`
	Matches     []matching.Match `json:"matches"`
	Feedback    *feedback.Bundle `json:"feedback,omitempty"`
	RecordID    string           `json:"record_id,omitempty"`
	Duplicate   bool             `json:"duplicate"`
	ProcessedAt time.Time        `json:"processed_at"`
}

// Analyze normalizes the analysis, matches it against the experts for its
// skill, builds feedback for the best match and persists that comparison.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (AnalysisOutcome, error) {
	if err := s.ready(); err != nil {
		return AnalysisOutcome{}, err
	}
	if req.AnalysisID == "" || req.LearnerID == "" || req.SkillType == "" {
		return AnalysisOutcome{}, fmt.Errorf("%w: analysis_id, learner_id and skill_type are required", ErrInvalidRequest)
	}

	if s.deduper.SeenAndRecord(ctx, req.AnalysisID) {
		if out, ok := s.deduper.Result(ctx, req.AnalysisID); ok {
			metrics.RecordAnalysisDuplicate()
			out.Duplicate = true
			return out, nil
		}
		return AnalysisOutcome{}, fmt.Errorf("%w: %s", ErrInFlight, req.AnalysisID)
	}

	out, err := s.analyze(ctx, req)
	if err != nil {
		s.deduper.Unrecord(ctx, req.AnalysisID)
		return AnalysisOutcome{}, err
	}
	s.deduper.Complete(ctx, req.AnalysisID, out)
	metrics.RecordAnalysisProcessed()
	return out, nil
}

func (s *Service) analyze(ctx context.Context, req AnalysisRequest) (AnalysisOutcome, error) {
	user, err := s.normalizer.Normalize(req.Analysis, req.SkillType)
	if err != nil {
		metrics.RecordNormalizationError()
		return AnalysisOutcome{}, fmt.Errorf("normalize analysis %s: %w", req.AnalysisID, err)
	}
	if !s.corpus.HasSkill(req.SkillType) {
		return AnalysisOutcome{}, fmt.Errorf("%w: %s", expert.ErrUnknownSkill, req.SkillType)
	}

	start := time.Now()
	matches := s.matcher.FindBestMatches(user, req.SkillType, s.clamp(req.TopN, s.topN, s.maxTopN))
	metrics.RecordComparison(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordMatchRequest(len(matches))

	out := AnalysisOutcome{
		AnalysisID:  req.AnalysisID,
		LearnerID:   req.LearnerID,
		SkillType:   req.SkillType,
		Metrics:     user,
		Matches:     matches,
		ProcessedAt: s.now().UTC(),
	}
	if len(matches) == 0 {
		return out, nil
	}

	best := matches[0]
	fb := s.feedback.Generate(best.Comparison, best.Expert)
	recordFeedback(fb)
	out.Feedback = &fb

	rec, err := s.persist(ctx, repository.Record{
		LearnerID:  req.LearnerID,
		AnalysisID: req.AnalysisID,
		SkillType:  req.SkillType,
		ExpertID:   best.Expert.ID,
		Similarity: best.Similarity(),
		Metrics:    user,
		At:         out.ProcessedAt,
	})
	if err != nil {
		return AnalysisOutcome{}, err
	}
	out.RecordID = rec.ID

	s.logger.Debug(ctx, "analysis processed",
		logger.String("analysis_id", req.AnalysisID),
		logger.String("learner_id", req.LearnerID),
		logger.String("expert_id", best.Expert.ID),
		logger.Float64("similarity", best.Similarity()),
	)
	return out, nil
}

// CompareRequest compares a metric vector with one expert's pattern.
type CompareRequest struct {
	LearnerID string        `json:"learner_id,omitempty" validate:"max=128"`
	ExpertID  string        `json:"expert_id" validate:"required"`
	SkillType skill.Type    `json:"skill_type" validate:"required"`
	Metrics   metric.Vector `json:"metrics" validate:"required"`
}

// CompareOutcome carries a comparison and the feedback derived from it.
type CompareOutcome struct {
	Expert     expert.Profile  `json:"expert"`
	Comparison scoring.Result  `json:"comparison"`
	Feedback   feedback.Bundle `json:"feedback"`
	RecordID   string          `json:"record_id,omitempty"`
}

// Compare runs the weighted comparator against the expert's pattern for the
// skill. The comparison is persisted when a learner id is given.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (CompareOutcome, error) {
	if err := s.ready(); err != nil {
		return CompareOutcome{}, err
	}
	if req.ExpertID == "" || req.SkillType == "" {
		return CompareOutcome{}, fmt.Errorf("%w: expert_id and skill_type are required", ErrInvalidRequest)
	}
	if err := req.Metrics.Validate(); err != nil {
		return CompareOutcome{}, err
	}
	prof, ok := s.corpus.Expert(req.ExpertID)
	if !ok {
		return CompareOutcome{}, fmt.Errorf("%w: %s", expert.ErrNotFound, req.ExpertID)
	}
	pattern, ok := s.pattern(req.ExpertID, req.SkillType)
	if !ok {
		return CompareOutcome{}, fmt.Errorf("%w: %s has none for %s", ErrNoPattern, req.ExpertID, req.SkillType)
	}

	start := time.Now()
	res := s.comparator.Compare(req.Metrics, pattern.Metrics, req.SkillType)
	metrics.RecordComparison(float64(time.Since(start).Microseconds()) / 1000)

	fb := s.feedback.Generate(res, prof)
	recordFeedback(fb)
	out := CompareOutcome{Expert: prof, Comparison: res, Feedback: fb}

	if req.LearnerID != "" {
		rec, err := s.persist(ctx, repository.Record{
			LearnerID:  req.LearnerID,
			SkillType:  req.SkillType,
			ExpertID:   prof.ID,
			Similarity: res.Overall,
			Metrics:    req.Metrics.Clamped(),
			At:         res.Timestamp,
		})
		if err != nil {
			return CompareOutcome{}, err
		}
		out.RecordID = rec.ID
	}
	return out, nil
}

func (s *Service) pattern(expertID string, skillType skill.Type) (expert.Pattern, bool) {
	for _, p := range s.corpus.PatternsFor(expertID) {
		if p.SkillType == skillType {
			return p, true
		}
	}
	return expert.Pattern{}, false
}

// MatchRequest asks for the best-fitting experts for a metric vector.
type MatchRequest struct {
	SkillType skill.Type    `json:"skill_type" validate:"required"`
	Metrics   metric.Vector `json:"metrics" validate:"required"`
	TopN      int           `json:"top_n,omitempty" validate:"gte=0"`
}

// Matches returns the best matches without persisting anything.
func (s *Service) Matches(ctx context.Context, req MatchRequest) ([]matching.Match, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if req.SkillType == "" {
		return nil, fmt.Errorf("%w: skill_type is required", ErrInvalidRequest)
	}
	if err := req.Metrics.Validate(); err != nil {
		return nil, err
	}
	if !s.corpus.HasSkill(req.SkillType) {
		return nil, fmt.Errorf("%w: %s", expert.ErrUnknownSkill, req.SkillType)
	}
	start := time.Now()
	matches := s.matcher.FindBestMatches(req.Metrics, req.SkillType, s.clamp(req.TopN, s.topN, s.maxTopN))
	metrics.RecordComparison(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordMatchRequest(len(matches))
	return matches, nil
}

// RecommendRequest asks for personalized expert recommendations. Without
// metrics the learner's latest stored comparison is used.
type RecommendRequest struct {
	LearnerID string        `json:"learner_id" validate:"required,max=128"`
	SkillType skill.Type    `json:"skill_type" validate:"required"`
	Metrics   metric.Vector `json:"metrics,omitempty"`
	N         int           `json:"max_recommendations,omitempty" validate:"gte=0"`
}

// Recommend runs every strategy over the learner's signals.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (recommend.Bundle, error) {
	if err := s.ready(); err != nil {
		return recommend.Bundle{}, err
	}
	if req.LearnerID == "" || req.SkillType == "" {
		return recommend.Bundle{}, fmt.Errorf("%w: learner_id and skill_type are required", ErrInvalidRequest)
	}
	if err := req.Metrics.Validate(); err != nil {
		return recommend.Bundle{}, err
	}

	recs, err := s.store.History(ctx, req.LearnerID, req.SkillType, s.historyLimit)
	if err != nil {
		return recommend.Bundle{}, fmt.Errorf("load history: %w", err)
	}
	history := make([]recommend.HistoryEntry, 0, len(recs))
	for _, r := range recs {
		history = append(history, recommend.HistoryEntry{Metrics: r.Metrics, Similarity: r.Similarity, At: r.At})
	}

	user := req.Metrics
	if len(user) == 0 {
		if len(recs) == 0 {
			return recommend.Bundle{}, fmt.Errorf("%w: %s", ErrNoMetrics, req.LearnerID)
		}
		user = recs[len(recs)-1].Metrics
	}

	activity, err := s.store.Activity(ctx, req.SkillType, s.now().Add(-s.trendingWindow))
	if err != nil {
		return recommend.Bundle{}, fmt.Errorf("load activity: %w", err)
	}

	start := time.Now()
	b := s.recommender.Recommend(recommend.Input{
		SkillType: req.SkillType,
		Metrics:   user,
		History:   history,
		Activity:  activity,
		N:         s.clamp(req.N, s.maxRecommendations, s.maxTopN),
	})
	metrics.RecordRecommendationLatency(float64(time.Since(start).Microseconds()) / 1000)
	for _, c := range b.Recommendations {
		metrics.RecordRecommendation(string(c.Strategy))
	}
	return b, nil
}

// Classify assesses one real-time sample outside any session.
func (s *Service) Classify(ctx context.Context, sample realtime.Sample, skillType skill.Type) (realtime.Result, error) {
	if err := s.ready(); err != nil {
		return realtime.Result{}, err
	}
	if err := sample.Validate(); err != nil {
		return realtime.Result{}, err
	}
	res := s.classifier.Classify(sample, skillType)
	priorities := make([]string, 0, len(res.Suggestions))
	for _, sg := range res.Suggestions {
		priorities = append(priorities, string(sg.Priority))
	}
	metrics.RecordClassification(priorities...)
	return res, nil
}

// ExpertDetail is a profile with its patterns and domain insights.
type ExpertDetail struct {
	expert.Profile
	Patterns []expert.Pattern `json:"patterns"`
	Insights []string         `json:"insights"`
}

// Experts lists profiles, limited to those with a pattern for skillType
// when it is set.
func (s *Service) Experts(ctx context.Context, skillType skill.Type) ([]expert.Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all := s.corpus.Experts()
	if skillType == "" {
		return all, nil
	}
	has := make(map[string]bool)
	for _, p := range s.corpus.Patterns(skillType) {
		has[p.ExpertID] = true
	}
	out := make([]expert.Profile, 0, len(has))
	for _, e := range all {
		if has[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

// Expert returns one expert with its patterns.
func (s *Service) Expert(ctx context.Context, id string) (ExpertDetail, error) {
	if err := s.ready(); err != nil {
		return ExpertDetail{}, err
	}
	prof, ok := s.corpus.Expert(id)
	if !ok {
		return ExpertDetail{}, fmt.Errorf("%w: %s", expert.ErrNotFound, id)
	}
	patterns := s.corpus.PatternsFor(id)
	if patterns == nil {
		patterns = []expert.Pattern{}
	}
	return ExpertDetail{Profile: prof, Patterns: patterns, Insights: feedback.Insights(prof)}, nil
}

// Skills lists every known skill profile.
func (s *Service) Skills(ctx context.Context) ([]skill.Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	types := s.skills.Types()
	out := make([]skill.Profile, 0, len(types))
	for _, t := range types {
		p, _ := s.skills.Lookup(t)
		out = append(out, p)
	}
	return out, nil
}

// Spotlight features the expert of the day.
func (s *Service) Spotlight(ctx context.Context, skillType skill.Type) (recommend.Spotlight, error) {
	if err := s.ready(); err != nil {
		return recommend.Spotlight{}, err
	}
	sp, ok := recommend.DailySpotlight(s.corpus, skillType, s.now())
	if !ok {
		if skillType != "" {
			return recommend.Spotlight{}, fmt.Errorf("%w: %s", expert.ErrUnknownSkill, skillType)
		}
		return recommend.Spotlight{}, expert.ErrNotFound
	}
	return sp, nil
}

// Combinations suggests expert pairings from the learner's latest metrics.
func (s *Service) Combinations(ctx context.Context, learnerID string, skillType skill.Type) ([]recommend.Combination, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if learnerID == "" || skillType == "" {
		return nil, fmt.Errorf("%w: learner_id and skill are required", ErrInvalidRequest)
	}
	rec, err := s.store.Latest(ctx, learnerID, skillType)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoMetrics, learnerID)
	}
	if err != nil {
		return nil, err
	}
	return s.recommender.Combinations(rec.Metrics, skillType), nil
}

// Leaderboard returns the top learners for a skill by best similarity.
func (s *Service) Leaderboard(ctx context.Context, skillType skill.Type, limit int) ([]repository.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if skillType == "" {
		return nil, fmt.Errorf("%w: skill is required", ErrInvalidRequest)
	}
	return s.store.TopN(ctx, skillType, s.clamp(limit, defaultLeaderboardLimit, s.maxTopN))
}

// Rank returns a learner's leaderboard entry.
func (s *Service) Rank(ctx context.Context, skillType skill.Type, learnerID string) (repository.Entry, error) {
	if err := s.ready(); err != nil {
		return repository.Entry{}, err
	}
	if skillType == "" || learnerID == "" {
		return repository.Entry{}, fmt.Errorf("%w: skill and learner id are required", ErrInvalidRequest)
	}
	return s.store.Rank(ctx, skillType, learnerID)
}

// History returns a learner's stored comparisons, oldest first. An empty
// skill type spans every skill.
func (s *Service) History(ctx context.Context, learnerID string, skillType skill.Type, limit int) ([]repository.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if learnerID == "" {
		return nil, fmt.Errorf("%w: learner id is required", ErrInvalidRequest)
	}
	return s.store.History(ctx, learnerID, skillType, s.clamp(limit, s.historyLimit, s.historyLimit))
}

// Progress returns a learner's live session progress for a skill.
func (s *Service) Progress(ctx context.Context, learnerID string, skillType skill.Type) (repository.Progress, error) {
	if err := s.ready(); err != nil {
		return repository.Progress{}, err
	}
	return s.store.Progress(ctx, learnerID, skillType)
}

// StartSession opens a live coaching session.
func (s *Service) StartSession(ctx context.Context, learnerID string, skillType skill.Type) (session.Snapshot, error) {
	if err := s.ready(); err != nil {
		return session.Snapshot{}, err
	}
	return s.sessions.Start(ctx, learnerID, skillType)
}

// SubmitChunk queues a sample for classification and returns its sequence number.
func (s *Service) SubmitChunk(ctx context.Context, id string, sample realtime.Sample) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.sessions.Submit(ctx, id, sample)
}

// Session returns a session snapshot.
func (s *Service) Session(ctx context.Context, id string) (session.Snapshot, error) {
	if err := s.ready(); err != nil {
		return session.Snapshot{}, err
	}
	return s.sessions.Get(ctx, id)
}

// SubscribeSession streams classification results of a live session.
func (s *Service) SubscribeSession(ctx context.Context, id string) (<-chan model.ChunkResult, func(), error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}
	return s.sessions.Subscribe(ctx, id)
}

// EndSession ends a live session at the client's request.
func (s *Service) EndSession(ctx context.Context, id string) (session.Summary, error) {
	if err := s.ready(); err != nil {
		return session.Summary{}, err
	}
	return s.sessions.End(ctx, id, session.ReasonClient)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"renormalize": s.renormalize,
		"topN":        s.topN,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		stats["experts"] = s.corpus.Len()
		stats["skills"] = len(s.skills.Types())
		stats["records"] = s.store.Count(ctx)
		stats["analysesSeen"] = s.deduper.Size()
		stats["activeSessions"] = s.sessions.Active()
		metrics.UpdateSystemMetrics()
	}
	return stats
}
