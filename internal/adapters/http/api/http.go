// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/okian/mentor/internal/adapters/repository"
	service "github.com/okian/mentor/internal/app"
	"github.com/okian/mentor/internal/app/session"
	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/metric"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/pkg/logger"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AnalysisDependencies
	EngineDependencies
	RecommendDependencies
	ExpertDependencies
	LeaderboardDependencies
	LearnerDependencies
	SessionDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	analysisHandler    *AnalysisHandler
	engineHandler      *EngineHandler
	recommendHandler   *RecommendHandler
	expertHandler      *ExpertHandler
	leaderboardHandler *LeaderboardHandler
	learnerHandler     *LearnerHandler
	sessionHandler     *SessionHandler

	limiter *rate.Limiter
	logger  logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRateLimit admits rps requests per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst <= 0 {
			burst = int(rps)
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithAllowedOrigins restricts browser websocket origins. Without it only
// same-origin browsers and non-browser clients may connect.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		s.sessionHandler.allowOrigins(origins)
	}
}

// WithServerLogger sets the logger used by handlers.
func WithServerLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
			s.sessionHandler.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		analysisHandler:    NewAnalysisHandler(deps),
		engineHandler:      NewEngineHandler(deps),
		recommendHandler:   NewRecommendHandler(deps),
		expertHandler:      NewExpertHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		learnerHandler:     NewLearnerHandler(deps),
		sessionHandler:     NewSessionHandler(deps),
		logger:             logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(RateLimitMiddleware(s.limiter, h), endpoint))
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("POST /analyses", "analyses", s.analysisHandler.HandlePostAnalysis)
	route("POST /compare", "compare", s.engineHandler.HandleCompare)
	route("POST /matches", "matches", s.engineHandler.HandleMatches)
	route("POST /classify", "classify", s.engineHandler.HandleClassify)

	route("POST /recommendations", "recommendations", s.recommendHandler.HandleRecommend)
	route("GET /spotlight", "spotlight", s.recommendHandler.HandleSpotlight)
	route("GET /combinations", "combinations", s.recommendHandler.HandleCombinations)

	route("GET /experts", "experts", s.expertHandler.HandleList)
	route("GET /experts/{id}", "expert", s.expertHandler.HandleGet)
	route("GET /skills", "skills", s.expertHandler.HandleSkills)

	route("GET /leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	route("GET /rank/{learner}", "rank", s.leaderboardHandler.HandleGetRank)
	route("GET /learners/{id}/comparisons", "comparisons", s.learnerHandler.HandleHistory)
	route("GET /learners/{id}/progress", "progress", s.learnerHandler.HandleProgress)

	route("POST /sessions", "sessions", s.sessionHandler.HandleStart)
	route("GET /sessions/{id}", "session", s.sessionHandler.HandleGet)
	route("DELETE /sessions/{id}", "session", s.sessionHandler.HandleEnd)
	route("POST /sessions/{id}/chunks", "chunks", s.sessionHandler.HandleChunk)
	route("GET /sessions/{id}/stream", "stream", s.sessionHandler.HandleStream)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode reads a JSON body into v and validates its struct tags. Callers
// report any error as a bad request.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return validate.Struct(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates upstream sentinels to a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, metric.ErrMalformed),
		errors.Is(err, realtime.ErrInvalidSample),
		errors.Is(err, session.ErrInvalid),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, expert.ErrUnknownSkill):
		return http.StatusNotFound, "unknown_skill"
	case errors.Is(err, service.ErrNoPattern):
		return http.StatusNotFound, "no_pattern"
	case errors.Is(err, expert.ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNoMetrics):
		return http.StatusUnprocessableEntity, "no_metrics"
	case errors.Is(err, service.ErrInFlight):
		return http.StatusConflict, "in_flight"
	case errors.Is(err, session.ErrEnded):
		return http.StatusConflict, "session_ended"
	case errors.Is(err, session.ErrBackpressure), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// intQuery reads a non-negative integer query parameter, 0 when absent.
func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, key)
	}
	return n, nil
}
