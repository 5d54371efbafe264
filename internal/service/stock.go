package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/event"
	"github.com/prasetia/inventaris/internal/repository"
)

// StockService implements the business logic for stock movements.
type StockService struct {
	txnRepo     repository.StockTransactionRepository
	productRepo repository.ProductRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewStockService creates a new stock service.
func NewStockService(
	txnRepo repository.StockTransactionRepository,
	productRepo repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *StockService {
	return &StockService{
		txnRepo:     txnRepo,
		productRepo: productRepo,
		producer:    producer,
		logger:      logger,
	}
}

// TransactionInput holds the parameters for recording a stock movement.
type TransactionInput struct {
	ProductID string
	Type      string
	Quantity  int
	Note      string
	CreatedBy *string
}

// Record applies a stock movement to a product. The transaction row and the
// stock adjustment commit atomically; an OUT that would drive stock negative
// is rejected.
func (s *StockService) Record(ctx context.Context, input TransactionInput) (*domain.StockTransaction, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if !domain.IsValidTransactionType(input.Type) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("type must be one of %s", strings.Join(domain.ValidTransactionTypes(), ", ")))
	}
	if input.Type != domain.TransactionAdjust && input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}
	if input.Quantity == 0 {
		return nil, apperrors.InvalidInput("quantity cannot be zero")
	}

	txn := &domain.StockTransaction{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Note:      strings.TrimSpace(input.Note),
		CreatedBy: input.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.txnRepo.CreateWithAdjustment(ctx, txn); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, txn.ProductID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load product after stock movement",
			slog.String("product_id", txn.ProductID),
			slog.String("error", err.Error()),
		)
		return txn, nil
	}

	if err := s.producer.PublishStockMovement(ctx, txn, product.Stock); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish stock.movement event",
			slog.String("transaction_id", txn.ID),
			slog.String("error", err.Error()),
		)
	}

	if product.Stock <= product.MinStock {
		if err := s.producer.PublishStockLow(ctx, product); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish stock.low event",
				slog.String("product_id", product.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "stock movement recorded",
		slog.String("transaction_id", txn.ID),
		slog.String("product_id", txn.ProductID),
		slog.String("type", txn.Type),
		slog.Int("quantity", txn.Quantity),
	)

	return txn, nil
}

// List returns the transaction history across all products, newest first,
// narrowed by the optional filter.
func (s *StockService) List(ctx context.Context, filter repository.TransactionFilter, params pagination.Params) (*pagination.Result[domain.StockTransaction], error) {
	if filter.Type != "" && !domain.IsValidTransactionType(filter.Type) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("type must be one of %s", strings.Join(domain.ValidTransactionTypes(), ", ")))
	}

	txns, total, err := s.txnRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(txns, total, params)
	return &result, nil
}

// Get returns a single stock transaction.
func (s *StockService) Get(ctx context.Context, id string) (*domain.StockTransaction, error) {
	return s.txnRepo.GetByID(ctx, id)
}

// Card returns a product's stock card: transactions in chronological order
// with the running balance.
func (s *StockService) Card(ctx context.Context, productID string, params pagination.Params) (*pagination.Result[domain.StockCardEntry], error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	entries, total, err := s.txnRepo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(entries, total, params)
	return &result, nil
}

// Summary aggregates a product's movements between from and to.
func (s *StockService) Summary(ctx context.Context, productID string, from, to time.Time) (*domain.StockSummary, error) {
	if !to.After(from) {
		return nil, apperrors.InvalidInput("to must be after from")
	}
	return s.txnRepo.Summary(ctx, productID, from, to)
}

// SummaryAll aggregates movements across all products. Zero bounds leave the
// period open on that side.
func (s *StockService) SummaryAll(ctx context.Context, from, to time.Time) (*domain.TransactionSummary, error) {
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return nil, apperrors.InvalidInput("to must be after from")
	}
	return s.txnRepo.SummaryAll(ctx, from, to)
}
