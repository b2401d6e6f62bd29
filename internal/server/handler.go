package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/projection"
)

// Handler serves the API routes.
type Handler struct {
	deps Dependencies
	sim  SimulationConfig
}

func newHandler(deps Dependencies, sim SimulationConfig) *Handler {
	if sim.Trials <= 0 {
		sim.Trials = projection.DefaultTrials
	}
	if sim.Volatility <= 0 {
		sim.Volatility = projection.DefaultVolatility
	}
	if sim.MaxTrials <= 0 {
		sim.MaxTrials = DefaultMaxTrials
	}
	return &Handler{deps: deps, sim: sim}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, fmt.Errorf("%w: username and password are required", common.ErrInvalidInput))
		return
	}

	session, err := h.deps.Gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.deps.Gate.IssueToken(session)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Username:  session.Username,
	})
}
