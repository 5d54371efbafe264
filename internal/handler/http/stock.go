package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/middleware"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/repository"
	"github.com/prasetia/inventaris/internal/service"
)

// StockHandler handles HTTP requests for stock movements.
type StockHandler struct {
	service *service.StockService
	logger  *slog.Logger
}

// NewStockHandler creates a new stock HTTP handler.
func NewStockHandler(svc *service.StockService, logger *slog.Logger) *StockHandler {
	return &StockHandler{service: svc, logger: logger}
}

// TransactionRequest is the JSON request body for recording a stock movement.
type TransactionRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Type      string `json:"type" validate:"required,oneof=IN OUT ADJUST"`
	Quantity  int    `json:"quantity" validate:"required"`
	Note      string `json:"note" validate:"max=500"`
}

// Record handles POST /api/v1/stock-transactions
func (h *StockHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	var createdBy *string
	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		createdBy = &userID
	}

	txn, err := h.service.Record(r.Context(), service.TransactionInput{
		ProductID: req.ProductID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Note:      req.Note,
		CreatedBy: createdBy,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: txn})
}

// parseDateRange reads optional from/to date query parameters. The end date
// is inclusive, so to advances to the following midnight.
func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("from must be a date in 2006-01-02 format")
		}
	}
	if v := q.Get("to"); v != "" {
		parsed, perr := time.Parse("2006-01-02", v)
		if perr != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("to must be a date in 2006-01-02 format")
		}
		to = parsed.AddDate(0, 0, 1)
	}

	return from, to, nil
}

// List handles GET /api/v1/stock-transactions
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	filter := repository.TransactionFilter{
		Type:      q.Get("type"),
		ProductID: q.Get("product_id"),
		From:      from,
		To:        to,
	}

	result, err := h.service.List(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/stock-transactions/{id}
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: txn})
}

// SummaryAll handles GET /api/v1/stock-transactions/summary
func (h *StockHandler) SummaryAll(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	summary, err := h.service.SummaryAll(r.Context(), from, to)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: summary})
}

// Card handles GET /api/v1/products/{id}/stock-card
func (h *StockHandler) Card(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Card(r.Context(), chi.URLParam(r, "id"), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Summary handles GET /api/v1/products/{id}/stock-summary
func (h *StockHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Default to the trailing 30 days when no range is given.
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if v := q.Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, response{
				Error: &errorResponse{Code: "INVALID_INPUT", Message: "from must be a date in 2006-01-02 format"},
			})
			return
		}
		from = parsed
	}
	if v := q.Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, response{
				Error: &errorResponse{Code: "INVALID_INPUT", Message: "to must be a date in 2006-01-02 format"},
			})
			return
		}
		// Inclusive end date.
		to = parsed.AddDate(0, 0, 1)
	}

	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: summary})
}
