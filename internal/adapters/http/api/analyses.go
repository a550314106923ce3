package api

import (
	"context"
	"net/http"

	service "github.com/okian/mentor/internal/app"
)

// AnalysisDependencies processes raw analyses.
type AnalysisDependencies interface {
	Analyze(ctx context.Context, req service.AnalysisRequest) (service.AnalysisOutcome, error)
}

// AnalysisHandler handles analysis submissions.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// HandlePostAnalysis handles POST /analyses. New analyses answer 201 and
// replays of a processed analysis id answer 200 with the stored outcome.
func (h *AnalysisHandler) HandlePostAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_analysis"
	var req service.AnalysisRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Analyze(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	status := http.StatusCreated
	if out.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, out)
}
