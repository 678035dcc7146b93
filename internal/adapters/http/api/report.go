package api

import (
	"fmt"
	"net/http"

	"github.com/okian/sentinela/internal/domain/model"
)

// ReportHandler exposes the analysis and its parts.
type ReportHandler struct {
	deps   Dependencies
	noData func(error) bool
}

// NewReportHandler creates a new report handler. noData marks pipeline
// errors that mean "nothing to report yet"; nil treats every error as
// internal.
func NewReportHandler(deps Dependencies, noData func(error) bool) *ReportHandler {
	if noData == nil {
		noData = func(error) bool { return false }
	}
	return &ReportHandler{deps: deps, noData: noData}
}

type alertsResponse struct {
	RunID            string               `json:"run_id"`
	TotalAlerts      int                  `json:"total_alerts"`
	AlertRatePercent float64              `json:"alert_rate_percent"`
	Alerts           []model.GroupSummary `json:"alerts"`
}

type groupResponse struct {
	model.GroupSummary
	Alert bool `json:"alert"`
}

// HandleReport handles GET /report.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Current(r.Context())
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleAlerts handles GET /alerts.
func (h *ReportHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Current(r.Context())
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alertsResponse{
		RunID:            a.RunID,
		TotalAlerts:      a.Report.TotalAlerts,
		AlertRatePercent: a.Report.AlertRatePercent,
		Alerts:           a.Report.Alerts,
	})
}

// HandleGroup handles GET /groups/{key}.
func (h *ReportHandler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	a, err := h.deps.Current(r.Context())
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	g, alert, ok := a.Report.Group(key)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, fmt.Errorf("%w: %s", ErrGroupNotFound, key))
		return
	}
	writeJSON(w, http.StatusOK, groupResponse{GroupSummary: g, Alert: alert})
}

// HandleRefresh handles POST /refresh.
func (h *ReportHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Refresh(r.Context())
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ReportHandler) writeRunError(w http.ResponseWriter, err error) {
	if h.noData(err) {
		writeError(w, http.StatusServiceUnavailable, codeNoData, err)
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternal, err)
}
