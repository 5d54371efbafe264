package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/service"
)

// QRLogHandler handles HTTP requests for the QR scan history.
type QRLogHandler struct {
	service *service.QRLogService
	logger  *slog.Logger
}

// NewQRLogHandler creates a new QR log HTTP handler.
func NewQRLogHandler(svc *service.QRLogService, logger *slog.Logger) *QRLogHandler {
	return &QRLogHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/qr-logs
func (h *QRLogHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/qr-logs/{id}
func (h *QRLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	log, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: log})
}

// Stats handles GET /api/v1/qr-logs/stats
func (h *QRLogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: stats})
}

// ListByProduct handles GET /api/v1/products/{id}/qr-logs
func (h *QRLogHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListByProduct(r.Context(), chi.URLParam(r, "id"), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
