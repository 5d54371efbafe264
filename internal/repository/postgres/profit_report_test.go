package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasetia/inventaris/internal/domain"
	apperrors "github.com/prasetia/inventaris/pkg/errors"
)

func newReportTestFixture(t *testing.T) (*ProfitReportRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewProfitReportRepository(mock), mock
}

func TestProfitReportRepository_Compute(t *testing.T) {
	repo, mock := newReportTestFixture(t)
	defer mock.Close()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery("SELECT").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"cost", "sales"}).AddRow(int64(500000), int64(720000)))

	cost, sales, err := repo.Compute(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, int64(500000), cost)
	assert.Equal(t, int64(720000), sales)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfitReportRepository_Upsert(t *testing.T) {
	repo, mock := newReportTestFixture(t)
	defer mock.Close()

	rep := &domain.ProfitReport{
		ID:          "report-1",
		ReportType:  domain.ReportMonthly,
		PeriodStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		TotalCost:   500000,
		TotalSales:  720000,
		TotalProfit: 220000,
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO profit_reports").
		WithArgs(rep.ID, rep.ReportType, rep.PeriodStart, rep.PeriodEnd,
			rep.TotalCost, rep.TotalSales, rep.TotalProfit, rep.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Upsert(context.Background(), rep))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfitReportRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newReportTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, report_type").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "report_type", "period_start", "period_end", "total_cost", "total_sales", "total_profit", "created_at"}))

	_, err := repo.GetByID(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfitReportRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newReportTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM profit_reports").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfitReportRepository_Summary(t *testing.T) {
	repo, mock := newReportTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(domain.ReportDaily).
		WillReturnRows(pgxmock.NewRows([]string{"count", "cost", "sales", "profit"}).
			AddRow(3, int64(1000), int64(1500), int64(500)))

	s, err := repo.Summary(context.Background(), domain.ReportDaily)

	require.NoError(t, err)
	assert.Equal(t, 3, s.ReportCount)
	assert.Equal(t, int64(500), s.TotalProfit)
	assert.Equal(t, domain.ReportDaily, s.ReportType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
