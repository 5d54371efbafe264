package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prasetia/inventaris/pkg/middleware"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/service"
)

// OpnameHandler handles HTTP requests for stock opnames.
type OpnameHandler struct {
	service *service.OpnameService
	logger  *slog.Logger
}

// NewOpnameHandler creates a new opname HTTP handler.
func NewOpnameHandler(svc *service.OpnameService, logger *slog.Logger) *OpnameHandler {
	return &OpnameHandler{service: svc, logger: logger}
}

// OpnameRequest is the JSON request body for recording a physical count.
type OpnameRequest struct {
	ProductID     string `json:"product_id" validate:"required,uuid"`
	PhysicalStock int    `json:"physical_stock" validate:"gte=0"`
	Note          string `json:"note" validate:"max=500"`
}

// Record handles POST /api/v1/stock-opnames
func (h *OpnameHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req OpnameRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	var createdBy *string
	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		createdBy = &userID
	}

	opname, err := h.service.Record(r.Context(), service.OpnameInput{
		ProductID:     req.ProductID,
		PhysicalStock: req.PhysicalStock,
		Note:          req.Note,
		CreatedBy:     createdBy,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: opname})
}

// List handles GET /api/v1/stock-opnames
func (h *OpnameHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/stock-opnames/{id}
func (h *OpnameHandler) Get(w http.ResponseWriter, r *http.Request) {
	opname, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: opname})
}

// Delete handles DELETE /api/v1/stock-opnames/{id}
func (h *OpnameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/v1/stock-opnames/summary
func (h *OpnameHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: summary})
}
