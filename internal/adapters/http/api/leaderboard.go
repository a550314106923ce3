package api

import (
	"context"
	"net/http"

	"github.com/okian/mentor/internal/adapters/repository"
	"github.com/okian/mentor/internal/domain/skill"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, skillType skill.Type, limit int) ([]repository.Entry, error)
	Rank(ctx context.Context, skillType skill.Type, learnerID string) (repository.Entry, error)
}

// LeaderboardHandler handles leaderboard and rank requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

type leaderboardResponse struct {
	SkillType skill.Type         `json:"skill_type"`
	Entries   []repository.Entry `json:"entries"`
}

// HandleGetLeaderboard handles GET /leaderboard?skill=&limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	skillType := skill.Type(r.URL.Query().Get("skill"))
	if skillType == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	n, err := intQuery(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), skillType, n)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{SkillType: skillType, Entries: entries})
}

// HandleGetRank handles GET /rank/{learner}?skill= requests.
func (h *LeaderboardHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	skillType := skill.Type(r.URL.Query().Get("skill"))
	if skillType == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Rank(r.Context(), skillType, r.PathValue("learner"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
