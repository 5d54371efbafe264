package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/repository"
)

// ProductService implements the business logic for the product catalog.
type ProductService struct {
	productRepo repository.ProductRepository
	qrLogRepo   repository.QRLogRepository
	logger      *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	qrLogRepo repository.QRLogRepository,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		qrLogRepo:   qrLogRepo,
		logger:      logger,
	}
}

// ProductInput holds the parameters for creating or updating a product.
type ProductInput struct {
	Code      string
	Name      string
	Category  string
	Unit      string
	Stock     int
	MinStock  int
	CostPrice int64
	SalePrice int64
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return apperrors.InvalidInput("code is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.InvalidInput("name is required")
	}
	if in.Stock < 0 {
		return apperrors.InvalidInput("stock cannot be negative")
	}
	if in.MinStock < 0 {
		return apperrors.InvalidInput("min_stock cannot be negative")
	}
	if in.CostPrice < 0 || in.SalePrice < 0 {
		return apperrors.InvalidInput("prices cannot be negative")
	}
	return nil
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:        uuid.New().String(),
		Code:      strings.TrimSpace(input.Code),
		Name:      strings.TrimSpace(input.Name),
		Category:  strings.TrimSpace(input.Category),
		Unit:      strings.TrimSpace(input.Unit),
		Stock:     input.Stock,
		MinStock:  input.MinStock,
		CostPrice: input.CostPrice,
		SalePrice: input.SalePrice,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("code", product.Code),
	)

	return product, nil
}

// Get retrieves a product by ID.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// List returns products matching the optional search and category filters.
func (s *ProductService) List(ctx context.Context, search, category string, params pagination.Params) (*pagination.Result[domain.Product], error) {
	products, total, err := s.productRepo.List(ctx, strings.TrimSpace(search), strings.TrimSpace(category), params)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(products, total, params)
	return &result, nil
}

// Options returns the minimal product projection for dropdowns.
func (s *ProductService) Options(ctx context.Context) ([]domain.ProductOption, error) {
	return s.productRepo.Options(ctx)
}

// Update modifies a product. Stock is not updatable here; it only moves
// through stock transactions and opnames.
func (s *ProductService) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Code = strings.TrimSpace(input.Code)
	product.Name = strings.TrimSpace(input.Name)
	product.Category = strings.TrimSpace(input.Category)
	product.Unit = strings.TrimSpace(input.Unit)
	product.MinStock = input.MinStock
	product.CostPrice = input.CostPrice
	product.SalePrice = input.SalePrice
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.productRepo.Delete(ctx, id)
}

// Scan resolves a scanned QR payload to a product and records the scan. The
// payload is matched as a product code first, then as an ID.
func (s *ProductService) Scan(ctx context.Context, payload string, scannedBy *string) (*domain.Product, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, apperrors.InvalidInput("payload is required")
	}

	product, err := s.productRepo.GetByCode(ctx, payload)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		// Not a known code; the payload may be a raw product ID.
		if _, parseErr := uuid.Parse(payload); parseErr != nil {
			return nil, apperrors.NotFound("product", payload)
		}
		product, err = s.productRepo.GetByID(ctx, payload)
		if err != nil {
			return nil, err
		}
	}

	scan := &domain.QRLog{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		ScannedBy: scannedBy,
		ScannedAt: time.Now().UTC(),
	}
	if err := s.qrLogRepo.Create(ctx, scan); err != nil {
		s.logger.ErrorContext(ctx, "failed to record qr scan",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	return product, nil
}
