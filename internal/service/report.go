package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/pagination"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/repository"
)

// ReportService implements the business logic for profit reports.
type ReportService struct {
	reportRepo repository.ProfitReportRepository
	logger     *slog.Logger
	nowFunc    func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(reportRepo repository.ProfitReportRepository, logger *slog.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// Generate computes and stores a profit report for an explicit period.
// Regenerating the same type and period replaces the stored row.
func (s *ReportService) Generate(ctx context.Context, reportType string, periodStart, periodEnd time.Time) (*domain.ProfitReport, error) {
	if !domain.IsValidReportType(reportType) {
		return nil, apperrors.InvalidInput("report_type must be one of DAILY, WEEKLY, MONTHLY")
	}
	if !periodEnd.After(periodStart) {
		return nil, apperrors.InvalidInput("period_end must be after period_start")
	}

	totalCost, totalSales, err := s.reportRepo.Compute(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	report := &domain.ProfitReport{
		ID:          uuid.New().String(),
		ReportType:  reportType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		TotalCost:   totalCost,
		TotalSales:  totalSales,
		TotalProfit: totalSales - totalCost,
		CreatedAt:   s.nowFunc().UTC(),
	}

	if err := s.reportRepo.Upsert(ctx, report); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "profit report generated",
		slog.String("report_type", reportType),
		slog.Time("period_start", periodStart),
		slog.Time("period_end", periodEnd),
		slog.Int64("total_profit", report.TotalProfit),
	)

	return report, nil
}

// GenerateFor computes the report covering the canonical period containing
// the reference time: the calendar day, the Monday-based week, or the
// calendar month.
func (s *ReportService) GenerateFor(ctx context.Context, reportType string, at time.Time) (*domain.ProfitReport, error) {
	start, end, err := PeriodBounds(reportType, at)
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, reportType, start, end)
}

// List returns stored reports of the given type, newest first.
func (s *ReportService) List(ctx context.Context, reportType string, params pagination.Params) (*pagination.Result[domain.ProfitReport], error) {
	if !domain.IsValidReportType(reportType) {
		return nil, apperrors.InvalidInput("report_type must be one of DAILY, WEEKLY, MONTHLY")
	}

	reports, total, err := s.reportRepo.List(ctx, reportType, params)
	if err != nil {
		return nil, err
	}
	result := pagination.NewResult(reports, total, params)
	return &result, nil
}

// Get returns a stored report.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.ProfitReport, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Delete removes a stored report. Regenerating the period recreates it.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.reportRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "profit report deleted", slog.String("report_id", id))
	return nil
}

// Summary sums the stored reports of the given type. An empty type spans
// all report types.
func (s *ReportService) Summary(ctx context.Context, reportType string) (*domain.ProfitSummary, error) {
	if reportType != "" && !domain.IsValidReportType(reportType) {
		return nil, apperrors.InvalidInput("report_type must be one of DAILY, WEEKLY, MONTHLY")
	}
	return s.reportRepo.Summary(ctx, reportType)
}

// PeriodBounds returns the half-open [start, end) period of the given type
// containing the reference time, in the reference time's location.
func PeriodBounds(reportType string, at time.Time) (time.Time, time.Time, error) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())

	switch reportType {
	case domain.ReportDaily:
		return day, day.AddDate(0, 0, 1), nil
	case domain.ReportWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), nil
	case domain.ReportMonthly:
		start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
		return start, start.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, apperrors.InvalidInput("report_type must be one of DAILY, WEEKLY, MONTHLY")
	}
}
