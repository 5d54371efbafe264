package service

import (
	"context"
	"log/slog"

	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/repository"
)

// QRLogService exposes the append-only QR scan history.
type QRLogService struct {
	qrLogRepo   repository.QRLogRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewQRLogService creates a new QR log service.
func NewQRLogService(
	qrLogRepo repository.QRLogRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *QRLogService {
	return &QRLogService{
		qrLogRepo:   qrLogRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// ScanStats aggregates scan activity across the catalog.
type ScanStats struct {
	TotalScans int                 `json:"total_scans"`
	Products   []domain.QRScanStat `json:"products"`
}

// Get returns a single scan log.
func (s *QRLogService) Get(ctx context.Context, id string) (*domain.QRLog, error) {
	return s.qrLogRepo.GetByID(ctx, id)
}

// List returns scan logs across all products, newest first.
func (s *QRLogService) List(ctx context.Context, params pagination.Params) (*pagination.Result[domain.QRLog], error) {
	logs, total, err := s.qrLogRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(logs, total, params)
	return &result, nil
}

// Stats returns per-product scan counts plus the catalog-wide total.
func (s *QRLogService) Stats(ctx context.Context) (*ScanStats, error) {
	perProduct, err := s.qrLogRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ScanStats{Products: perProduct}
	for _, p := range perProduct {
		stats.TotalScans += p.ScanCount
	}
	return stats, nil
}

// ListByProduct returns scan logs for a product, newest first.
func (s *QRLogService) ListByProduct(ctx context.Context, productID string, params pagination.Params) (*pagination.Result[domain.QRLog], error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	logs, total, err := s.qrLogRepo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(logs, total, params)
	return &result, nil
}
