package api

import (
	"context"
	"net/http"

	"github.com/okian/mentor/internal/adapters/repository"
	"github.com/okian/mentor/internal/domain/skill"
)

// LearnerDependencies exposes per-learner history and progress.
type LearnerDependencies interface {
	History(ctx context.Context, learnerID string, skillType skill.Type, limit int) ([]repository.Record, error)
	Progress(ctx context.Context, learnerID string, skillType skill.Type) (repository.Progress, error)
}

// LearnerHandler serves learner history.
type LearnerHandler struct {
	deps LearnerDependencies
}

// NewLearnerHandler creates a new learner handler.
func NewLearnerHandler(deps LearnerDependencies) *LearnerHandler {
	return &LearnerHandler{deps: deps}
}

type historyResponse struct {
	LearnerID   string              `json:"learner_id"`
	Comparisons []repository.Record `json:"comparisons"`
}

// HandleHistory handles GET /learners/{id}/comparisons?skill=&limit=.
func (h *LearnerHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.history"
	n, err := intQuery(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	learner := r.PathValue("id")
	recs, err := h.deps.History(r.Context(), learner, skill.Type(r.URL.Query().Get("skill")), n)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if recs == nil {
		recs = []repository.Record{}
	}
	writeJSON(w, http.StatusOK, historyResponse{LearnerID: learner, Comparisons: recs})
}

// HandleProgress handles GET /learners/{id}/progress?skill=.
func (h *LearnerHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.progress"
	skillType := skill.Type(r.URL.Query().Get("skill"))
	if skillType == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	p, err := h.deps.Progress(r.Context(), r.PathValue("id"), skillType)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
