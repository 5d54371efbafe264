package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/repository"
)

// OpnameService implements the business logic for physical stock counts.
type OpnameService struct {
	opnameRepo  repository.OpnameRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewOpnameService creates a new opname service.
func NewOpnameService(
	opnameRepo repository.OpnameRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *OpnameService {
	return &OpnameService{
		opnameRepo:  opnameRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// OpnameInput holds the parameters for recording a physical stock count.
type OpnameInput struct {
	ProductID     string
	PhysicalStock int
	Note          string
	CreatedBy     *string
}

// Record captures a physical count against the current system stock. A
// non-zero difference reconciles the product stock in the same transaction.
func (s *OpnameService) Record(ctx context.Context, input OpnameInput) (*domain.StockOpname, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if input.PhysicalStock < 0 {
		return nil, apperrors.InvalidInput("physical_stock cannot be negative")
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	// SystemStock and Difference are filled by the repository from the row
	// it locks; product.Stock read here may already be stale.
	opname := &domain.StockOpname{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		PhysicalStock: input.PhysicalStock,
		Note:          strings.TrimSpace(input.Note),
		CreatedBy:     input.CreatedBy,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.opnameRepo.Create(ctx, opname); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "stock opname recorded",
		slog.String("opname_id", opname.ID),
		slog.String("product_id", opname.ProductID),
		slog.Int("difference", opname.Difference),
	)

	return opname, nil
}

// Get returns a recorded opname.
func (s *OpnameService) Get(ctx context.Context, id string) (*domain.StockOpname, error) {
	return s.opnameRepo.GetByID(ctx, id)
}

// List returns recorded opnames, newest first.
func (s *OpnameService) List(ctx context.Context, params pagination.Params) (*pagination.Result[domain.StockOpname], error) {
	opnames, total, err := s.opnameRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(opnames, total, params)
	return &result, nil
}

// Delete removes a recorded opname from the history. Any stock correction
// the opname applied stays in effect.
func (s *OpnameService) Delete(ctx context.Context, id string) error {
	if err := s.opnameRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "stock opname deleted", slog.String("opname_id", id))
	return nil
}

// Summary aggregates recorded opnames by outcome.
func (s *OpnameService) Summary(ctx context.Context) (*domain.OpnameSummary, error) {
	return s.opnameRepo.Summary(ctx)
}
