package api

import (
	"context"
	"net/http"

	service "github.com/okian/mentor/internal/app"
	"github.com/okian/mentor/internal/domain/recommend"
	"github.com/okian/mentor/internal/domain/skill"
)

// RecommendDependencies exposes personalized guidance.
type RecommendDependencies interface {
	Recommend(ctx context.Context, req service.RecommendRequest) (recommend.Bundle, error)
	Spotlight(ctx context.Context, skillType skill.Type) (recommend.Spotlight, error)
	Combinations(ctx context.Context, learnerID string, skillType skill.Type) ([]recommend.Combination, error)
}

// RecommendHandler handles recommendations, spotlights and combinations.
type RecommendHandler struct {
	deps RecommendDependencies
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps RecommendDependencies) *RecommendHandler {
	return &RecommendHandler{deps: deps}
}

type combinationsResponse struct {
	LearnerID    string                  `json:"learner_id"`
	SkillType    skill.Type              `json:"skill_type"`
	Combinations []recommend.Combination `json:"combinations"`
}

// HandleRecommend handles POST /recommendations.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	var req service.RecommendRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	b, err := h.deps.Recommend(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleSpotlight handles GET /spotlight?skill=.
func (h *RecommendHandler) HandleSpotlight(w http.ResponseWriter, r *http.Request) {
	sp, err := h.deps.Spotlight(r.Context(), skill.Type(r.URL.Query().Get("skill")))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

// HandleCombinations handles GET /combinations?learner_id=&skill=.
func (h *RecommendHandler) HandleCombinations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	learner, skillType := q.Get("learner_id"), skill.Type(q.Get("skill"))
	combos, err := h.deps.Combinations(r.Context(), learner, skillType)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, combinationsResponse{LearnerID: learner, SkillType: skillType, Combinations: combos})
}
