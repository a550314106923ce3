package api

import (
	"context"
	"net/http"

	service "github.com/okian/mentor/internal/app"
	"github.com/okian/mentor/internal/domain/matching"
	"github.com/okian/mentor/internal/domain/realtime"
	"github.com/okian/mentor/internal/domain/skill"
)

// EngineDependencies exposes the stateless scoring engines.
type EngineDependencies interface {
	Compare(ctx context.Context, req service.CompareRequest) (service.CompareOutcome, error)
	Matches(ctx context.Context, req service.MatchRequest) ([]matching.Match, error)
	Classify(ctx context.Context, sample realtime.Sample, skillType skill.Type) (realtime.Result, error)
}

// EngineHandler handles direct comparison, matching and classification.
type EngineHandler struct {
	deps EngineDependencies
}

// NewEngineHandler creates a new engine handler.
func NewEngineHandler(deps EngineDependencies) *EngineHandler {
	return &EngineHandler{deps: deps}
}

type matchesResponse struct {
	SkillType skill.Type       `json:"skill_type"`
	Matches   []matching.Match `json:"matches"`
}

type classifyRequest struct {
	SkillType skill.Type      `json:"skill_type" validate:"required"`
	Metrics   realtime.Sample `json:"metrics" validate:"required"`
}

// HandleCompare handles POST /compare.
func (h *EngineHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare"
	var req service.CompareRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Compare(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleMatches handles POST /matches.
func (h *EngineHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.matches"
	var req service.MatchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	matches, err := h.deps.Matches(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matchesResponse{SkillType: req.SkillType, Matches: matches})
}

// HandleClassify handles POST /classify.
func (h *EngineHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify"
	var req classifyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Classify(r.Context(), req.Metrics, req.SkillType)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
