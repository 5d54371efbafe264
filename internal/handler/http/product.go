package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prasetia/inventaris/pkg/middleware"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/service"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// ProductRequest is the JSON request body for creating or updating a product.
type ProductRequest struct {
	Code      string `json:"code" validate:"required,min=1,max=50"`
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Category  string `json:"category" validate:"max=100"`
	Unit      string `json:"unit" validate:"max=20"`
	Stock     int    `json:"stock" validate:"gte=0"`
	MinStock  int    `json:"min_stock" validate:"gte=0"`
	CostPrice int64  `json:"cost_price" validate:"gte=0"`
	SalePrice int64  `json:"sale_price" validate:"gte=0"`
}

// ScanRequest is the JSON request body for resolving a scanned QR payload.
type ScanRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// productView decorates a product with its derived fields.
type productView struct {
	*domain.Product
	Profit      int64  `json:"profit"`
	StockStatus string `json:"stock_status"`
}

func viewOf(p *domain.Product) productView {
	return productView{Product: p, Profit: p.Profit(), StockStatus: p.StockStatus()}
}

func (req *ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Code:      req.Code,
		Name:      req.Name,
		Category:  req.Category,
		Unit:      req.Unit,
		Stock:     req.Stock,
		MinStock:  req.MinStock,
		CostPrice: req.CostPrice,
		SalePrice: req.SalePrice,
	}
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: viewOf(product)})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(product)})
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.List(r.Context(), q.Get("search"), q.Get("category"), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Options handles GET /api/v1/products/options
func (h *ProductHandler) Options(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Options(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: options})
}

// Update handles PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(product)})
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// Scan handles POST /api/v1/products/scan
func (h *ProductHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	var scannedBy *string
	if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
		scannedBy = &userID
	}

	product, err := h.service.Scan(r.Context(), req.Payload, scannedBy)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(product)})
}
