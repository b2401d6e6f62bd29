package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/ledger"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/go-chi/chi/v5"
)

type statementRequest struct {
	Investment *model.InvestmentInputs `json:"investment,omitempty"`
	CSV        string                  `json:"csv"`
	Property   string                  `json:"property,omitempty"`
	Year       int                     `json:"year,omitempty"`
	Save       bool                    `json:"save,omitempty"`
}

type statementResponse struct {
	Report    *model.RentalReport     `json:"report,omitempty"`
	Statement *model.Statement        `json:"statement"`
	Breakdown model.Breakdown         `json:"breakdown"`
	Metrics   model.InvestmentMetrics `json:"metrics"`
}

// AnalyzeStatement parses an uploaded P&L export and optionally stores it.
func (h *Handler) AnalyzeStatement(w http.ResponseWriter, r *http.Request) {
	var req statementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inputs := model.DefaultInvestmentInputs()
	if req.Investment != nil {
		inputs = *req.Investment
	}

	resp, err := analyze(req.CSV, inputs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Save {
		report, err := reportFor(req, resp.Statement)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := h.deps.Reports.SaveRentalReport(r.Context(), report); err != nil {
			writeError(w, r, err)
			return
		}
		if session, ok := auth.SessionFrom(r.Context()); ok {
			slog.InfoContext(r.Context(), "Rental report uploaded", "id", report.ID, "username", session.Username)
		}
		report.RawCSV = ""
		resp.Report = report
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func analyze(raw string, inputs model.InvestmentInputs) (*statementResponse, error) {
	stmt, err := ledger.ParseStatement(raw)
	if err != nil {
		return nil, err
	}
	breakdown := ledger.Summarize(stmt.Lines)
	return &statementResponse{
		Statement: stmt,
		Breakdown: breakdown,
		Metrics:   ledger.Evaluate(breakdown.NetCashFlow, inputs),
	}, nil
}

// reportFor names the report after the request, falling back to the export header.
func reportFor(req statementRequest, stmt *model.Statement) (*model.RentalReport, error) {
	property := strings.TrimSpace(req.Property)
	if property == "" && stmt.Info.Property != model.UnknownInfo {
		property = stmt.Info.Property
	}
	if property == "" {
		return nil, fmt.Errorf("%w: property is required to save a report", common.ErrInvalidInput)
	}
	if req.Year <= 0 {
		return nil, fmt.Errorf("%w: year is required to save a report", common.ErrInvalidInput)
	}
	return &model.RentalReport{Property: property, Year: req.Year, RawCSV: req.CSV}, nil
}

// ListReports returns stored report headers.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.deps.Reports.ListRentalReports(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []model.RentalReport{}
	}
	writeJSON(w, r, http.StatusOK, reports)
}

// GetReport re-parses a stored export with the default investment inputs.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := reportID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.deps.Reports.GetRentalReport(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := analyze(report.RawCSV, model.DefaultInvestmentInputs())
	if err != nil {
		writeError(w, r, err)
		return
	}
	report.RawCSV = ""
	resp.Report = report
	writeJSON(w, r, http.StatusOK, resp)
}

// DeleteReport removes a stored export.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := reportID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.Reports.DeleteRentalReport(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func reportID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: report id %q", common.ErrInvalidInput, raw)
	}
	return id, nil
}
