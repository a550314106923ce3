package api

import (
	"context"
	"net/http"

	service "github.com/okian/mentor/internal/app"
	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/skill"
)

// ExpertDependencies exposes the reference data.
type ExpertDependencies interface {
	Experts(ctx context.Context, skillType skill.Type) ([]expert.Profile, error)
	Expert(ctx context.Context, id string) (service.ExpertDetail, error)
	Skills(ctx context.Context) ([]skill.Profile, error)
}

// ExpertHandler serves experts and skill tables.
type ExpertHandler struct {
	deps ExpertDependencies
}

// NewExpertHandler creates a new expert handler.
func NewExpertHandler(deps ExpertDependencies) *ExpertHandler {
	return &ExpertHandler{deps: deps}
}

type expertsResponse struct {
	Experts []expert.Profile `json:"experts"`
	Count   int              `json:"count"`
}

// HandleList handles GET /experts?skill=.
func (h *ExpertHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Experts(r.Context(), skill.Type(r.URL.Query().Get("skill")))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expertsResponse{Experts: list, Count: len(list)})
}

// HandleGet handles GET /experts/{id}.
func (h *ExpertHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.deps.Expert(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleSkills handles GET /skills.
func (h *ExpertHandler) HandleSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.deps.Skills(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, skills)
}
