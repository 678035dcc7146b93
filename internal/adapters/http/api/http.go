// Package api serves the latest surveillance analysis over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/sentinela/internal/domain/model"
)

// Dependencies required by HTTP handlers. *service.Monitor satisfies it.
type Dependencies interface {
	// Current returns the cached analysis, computing it on first use.
	Current(ctx context.Context) (*model.Analysis, error)
	// Refresh recomputes the analysis from the source.
	Refresh(ctx context.Context) (*model.Analysis, error)
}

// Server wires HTTP routes for the read API.
type Server struct {
	healthHandler *HealthHandler
	reportHandler *ReportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := settings{noData: func(error) bool { return false }}
	for _, opt := range opts {
		opt(&s)
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		reportHandler: NewReportHandler(deps, s.noData),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("api: nil mux")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("GET /report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
	mux.HandleFunc("GET /alerts", MetricsMiddleware(s.reportHandler.HandleAlerts, "alerts"))
	mux.HandleFunc("GET /groups/{key}", MetricsMiddleware(s.reportHandler.HandleGroup, "groups"))
	mux.HandleFunc("POST /refresh", MetricsMiddleware(s.reportHandler.HandleRefresh, "refresh"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before touching the response, so an unencodable value
// becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{Code: codeInternal, Message: err.Error()})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
