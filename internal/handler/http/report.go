package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/service"
)

// ReportHandler handles HTTP requests for profit reports.
type ReportHandler struct {
	service *service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report HTTP handler.
func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{service: svc, logger: logger}
}

// GenerateReportRequest is the JSON request body for generating a profit
// report. When the period is omitted, the canonical period containing today
// is used.
type GenerateReportRequest struct {
	ReportType  string `json:"report_type" validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	PeriodStart string `json:"period_start" validate:"omitempty,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end" validate:"omitempty,datetime=2006-01-02"`
}

// Generate handles POST /api/v1/profit-reports/generate
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	// A period must be given in full or not at all. A lone bound would
	// otherwise silently fall back to the canonical period.
	if (req.PeriodStart == "") != (req.PeriodEnd == "") {
		writeAppError(w, r, apperrors.InvalidInput("period_start and period_end must be provided together"), h.logger)
		return
	}

	var (
		report *domain.ProfitReport
		err    error
	)
	if req.PeriodStart == "" {
		report, err = h.service.GenerateFor(r.Context(), req.ReportType, time.Now())
	} else {
		start, _ := time.Parse("2006-01-02", req.PeriodStart)
		end, _ := time.Parse("2006-01-02", req.PeriodEnd)
		// Inclusive end date.
		report, err = h.service.Generate(r.Context(), req.ReportType, start, end.AddDate(0, 0, 1))
	}
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: report})
}

// List handles GET /api/v1/profit-reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reportType := r.URL.Query().Get("report_type")
	if reportType == "" {
		reportType = domain.ReportDaily
	}

	result, err := h.service.List(r.Context(), reportType, pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/profit-reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: report})
}

// Delete handles DELETE /api/v1/profit-reports/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/v1/profit-reports/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), r.URL.Query().Get("report_type"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: summary})
}
