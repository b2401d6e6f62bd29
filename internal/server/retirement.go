package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/projection"
	"github.com/go-chi/chi/v5"
)

type projectionRequest struct {
	Plan       *model.RetirementPlan `json:"plan,omitempty"`
	Volatility *float64              `json:"volatility,omitempty"`
	PlanName   string                `json:"plan_name,omitempty"`
	Trials     int                   `json:"trials,omitempty"`
	Seed       uint64                `json:"seed,omitempty"`
}

type projectionResponse struct {
	*projection.Analysis
	Plan model.RetirementPlan `json:"plan"`
}

// RunProjection projects a plan given inline or by name.
func (h *Handler) RunProjection(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var plan model.RetirementPlan
	switch {
	case req.Plan != nil && req.PlanName != "":
		writeError(w, r, fmt.Errorf("%w: send either plan or plan_name", common.ErrInvalidInput))
		return
	case req.Plan != nil:
		plan = *req.Plan
	case req.PlanName != "":
		stored, err := h.deps.Plans.GetRetirementPlan(r.Context(), req.PlanName)
		if err != nil {
			writeError(w, r, err)
			return
		}
		plan = *stored
	default:
		writeError(w, r, fmt.Errorf("%w: plan is required", common.ErrInvalidInput))
		return
	}

	sim, err := h.simulator(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	analysis, err := sim.Analyze(r.Context(), plan)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, projectionResponse{Analysis: analysis, Plan: plan})
}

func (h *Handler) simulator(req projectionRequest) (*projection.Simulator, error) {
	trials := h.sim.Trials
	if req.Trials != 0 {
		trials = req.Trials
	}
	if trials < 0 || trials > h.sim.MaxTrials {
		return nil, fmt.Errorf("%w: trials must be between 1 and %d", common.ErrInvalidInput, h.sim.MaxTrials)
	}

	volatility := h.sim.Volatility
	if req.Volatility != nil {
		volatility = *req.Volatility
	}

	opts := []projection.Option{
		projection.WithTrials(trials),
		projection.WithVolatility(volatility),
		projection.WithSeed(req.Seed),
	}
	if h.sim.Workers > 0 {
		opts = append(opts, projection.WithWorkers(h.sim.Workers))
	}
	return projection.NewSimulator(opts...), nil
}

// ListPlans returns every stored plan.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.deps.Plans.ListRetirementPlans(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if plans == nil {
		plans = []model.RetirementPlan{}
	}
	writeJSON(w, r, http.StatusOK, plans)
}

// CreatePlan stores a named plan. An existing name is a conflict.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan model.RetirementPlan
	if err := decodeJSON(w, r, &plan); err != nil {
		writeError(w, r, err)
		return
	}
	plan.Name = strings.TrimSpace(plan.Name)
	if err := plan.Validate(true); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.deps.Plans.SaveRetirementPlan(r.Context(), &plan); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, plan)
}

// GetPlan returns one stored plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.deps.Plans.GetRetirementPlan(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, plan)
}

// DeletePlan removes a stored plan.
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Plans.DeleteRetirementPlan(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
