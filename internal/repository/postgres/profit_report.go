package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/pkg/database"
	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/pagination"
)

// ProfitReportRepository implements repository.ProfitReportRepository using PostgreSQL.
type ProfitReportRepository struct {
	db database.DBTX
}

// NewProfitReportRepository creates a new PostgreSQL-backed profit report repository.
func NewProfitReportRepository(db database.DBTX) *ProfitReportRepository {
	return &ProfitReportRepository{db: db}
}

// Compute aggregates cost and sales from OUT transactions within the period,
// valued at the product's current prices.
func (r *ProfitReportRepository) Compute(ctx context.Context, from, to time.Time) (int64, int64, error) {
	query := `
		SELECT
		    COALESCE(SUM(t.quantity * p.cost_price), 0),
		    COALESCE(SUM(t.quantity * p.sale_price), 0)
		FROM stock_transactions t
		JOIN products p ON p.id = t.product_id
		WHERE t.type = 'OUT' AND t.created_at >= $1 AND t.created_at < $2`

	var totalCost, totalSales int64
	if err := r.db.QueryRow(ctx, query, from, to).Scan(&totalCost, &totalSales); err != nil {
		return 0, 0, fmt.Errorf("compute profit totals: %w", err)
	}

	return totalCost, totalSales, nil
}

// Upsert stores the report, replacing an existing report for the same type
// and period.
func (r *ProfitReportRepository) Upsert(ctx context.Context, rep *domain.ProfitReport) error {
	query := `
		INSERT INTO profit_reports (id, report_type, period_start, period_end, total_cost, total_sales, total_profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (report_type, period_start, period_end)
		DO UPDATE SET total_cost = $5, total_sales = $6, total_profit = $7, created_at = $8`

	_, err := r.db.Exec(ctx, query,
		rep.ID,
		rep.ReportType,
		rep.PeriodStart,
		rep.PeriodEnd,
		rep.TotalCost,
		rep.TotalSales,
		rep.TotalProfit,
		rep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profit report: %w", err)
	}

	return nil
}

// List returns stored reports of the given type, newest first. An empty type
// returns all reports.
func (r *ProfitReportRepository) List(ctx context.Context, reportType string, params pagination.Params) ([]domain.ProfitReport, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM profit_reports WHERE ($1 = '' OR report_type = $1)`, reportType,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profit reports: %w", err)
	}

	query := `
		SELECT id, report_type, period_start, period_end, total_cost, total_sales, total_profit, created_at
		FROM profit_reports
		WHERE ($1 = '' OR report_type = $1)
		ORDER BY period_start DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, reportType, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list profit reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.ProfitReport
	for rows.Next() {
		var rep domain.ProfitReport
		if err := rows.Scan(
			&rep.ID, &rep.ReportType, &rep.PeriodStart, &rep.PeriodEnd,
			&rep.TotalCost, &rep.TotalSales, &rep.TotalProfit, &rep.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan profit report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate profit reports: %w", err)
	}

	return reports, total, nil
}

// GetByID returns a stored report.
func (r *ProfitReportRepository) GetByID(ctx context.Context, id string) (*domain.ProfitReport, error) {
	query := `
		SELECT id, report_type, period_start, period_end, total_cost, total_sales, total_profit, created_at
		FROM profit_reports
		WHERE id = $1`

	var rep domain.ProfitReport
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rep.ID, &rep.ReportType, &rep.PeriodStart, &rep.PeriodEnd,
		&rep.TotalCost, &rep.TotalSales, &rep.TotalProfit, &rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get profit report: %w", err)
	}

	return &rep, nil
}

// Delete removes a stored report.
func (r *ProfitReportRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profit_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profit report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Summary sums stored reports of the given type. An empty type sums all
// reports.
func (r *ProfitReportRepository) Summary(ctx context.Context, reportType string) (*domain.ProfitSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_cost), 0), COALESCE(SUM(total_sales), 0), COALESCE(SUM(total_profit), 0)
		FROM profit_reports
		WHERE ($1 = '' OR report_type = $1)`

	var s domain.ProfitSummary
	if err := r.db.QueryRow(ctx, query, reportType).Scan(
		&s.ReportCount, &s.TotalCost, &s.TotalSales, &s.TotalProfit,
	); err != nil {
		return nil, fmt.Errorf("summarize profit reports: %w", err)
	}
	s.ReportType = reportType

	return &s, nil
}
