package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/repository"
	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/database"
	"github.com/prasetia/inventaris/pkg/pagination"
)

// nullableTime maps the zero time to NULL so open-ended period bounds can be
// disabled inside the query itself.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// StockTransactionRepository implements repository.StockTransactionRepository using PostgreSQL.
type StockTransactionRepository struct {
	db database.DBTX
}

// NewStockTransactionRepository creates a new PostgreSQL-backed stock transaction repository.
func NewStockTransactionRepository(db database.DBTX) *StockTransactionRepository {
	return &StockTransactionRepository{db: db}
}

// CreateWithAdjustment inserts the transaction and applies its stock delta to
// the product inside a single database transaction. OUT movements that would
// drive stock negative are rejected without touching the product.
func (r *StockTransactionRepository) CreateWithAdjustment(ctx context.Context, t *domain.StockTransaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	delta := t.Quantity
	switch t.Type {
	case domain.TransactionOut:
		delta = -t.Quantity
	case domain.TransactionAdjust:
		// ADJUST quantity is already a signed delta.
	}

	// The stock check and update happen in one statement so concurrent
	// movements cannot oversell.
	ct, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3 AND stock + $1 >= 0`,
		delta, time.Now().UTC(), t.ProductID,
	)
	if err != nil {
		return fmt.Errorf("adjust product stock: %w", err)
	}

	if ct.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, t.ProductID).Scan(&exists); err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return apperrors.NotFound("product", t.ProductID)
		}
		return apperrors.New("INSUFFICIENT_STOCK", "stock is not sufficient for this movement", 422)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO stock_transactions (id, product_id, type, quantity, note, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.ProductID, t.Type, t.Quantity, t.Note, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a single stock transaction.
func (r *StockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.StockTransaction, error) {
	query := `
		SELECT id, product_id, type, quantity, COALESCE(note, ''), created_by, created_at
		FROM stock_transactions
		WHERE id = $1`

	var t domain.StockTransaction
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.ProductID, &t.Type, &t.Quantity, &t.Note, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("stock transaction", id)
		}
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}

	return &t, nil
}

// List returns transactions across all products matching the filter, newest first.
func (r *StockTransactionRepository) List(ctx context.Context, filter repository.TransactionFilter, params pagination.Params) ([]domain.StockTransaction, int, error) {
	from := nullableTime(filter.From)
	to := nullableTime(filter.To)

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM stock_transactions
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR product_id = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)`,
		filter.Type, filter.ProductID, from, to,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock transactions: %w", err)
	}

	query := `
		SELECT id, product_id, type, quantity, COALESCE(note, ''), created_by, created_at
		FROM stock_transactions
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR product_id = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6`

	rows, err := r.db.Query(ctx, query, filter.Type, filter.ProductID, from, to, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.StockTransaction
	for rows.Next() {
		var t domain.StockTransaction
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Type, &t.Quantity, &t.Note, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan stock transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stock transactions: %w", err)
	}

	return txns, total, nil
}

// ListByProduct returns the stock card for a product: transactions in
// chronological order with a running balance computed in SQL.
func (r *StockTransactionRepository) ListByProduct(ctx context.Context, productID string, params pagination.Params) ([]domain.StockCardEntry, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_transactions WHERE product_id = $1`, productID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock transactions: %w", err)
	}

	query := `
		SELECT id, product_id, type, quantity, COALESCE(note, ''), created_by, created_at,
		       SUM(CASE type
		               WHEN 'IN' THEN quantity
		               WHEN 'OUT' THEN -quantity
		               ELSE quantity
		           END) OVER (ORDER BY created_at, id) AS balance
		FROM stock_transactions
		WHERE product_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, productID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()

	var entries []domain.StockCardEntry
	for rows.Next() {
		var e domain.StockCardEntry
		if err := rows.Scan(
			&e.ID, &e.ProductID, &e.Type, &e.Quantity, &e.Note,
			&e.CreatedBy, &e.CreatedAt, &e.Balance,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock card entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stock card: %w", err)
	}

	return entries, total, nil
}

// Summary aggregates transaction totals for a product between from and to.
func (r *StockTransactionRepository) Summary(ctx context.Context, productID string, from, to time.Time) (*domain.StockSummary, error) {
	query := `
		SELECT
		    COALESCE(SUM(CASE WHEN t.type = 'IN' THEN t.quantity ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN t.type = 'OUT' THEN t.quantity ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN t.type = 'ADJUST' THEN t.quantity ELSE 0 END), 0),
		    p.stock
		FROM products p
		LEFT JOIN stock_transactions t
		    ON t.product_id = p.id AND t.created_at >= $2 AND t.created_at < $3
		WHERE p.id = $1
		GROUP BY p.stock`

	s := domain.StockSummary{ProductID: productID}
	err := r.db.QueryRow(ctx, query, productID, from, to).Scan(
		&s.TotalIn, &s.TotalOut, &s.Adjusted, &s.Current,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("stock summary: %w", err)
	}

	return &s, nil
}

// SummaryAll aggregates movements across all products. Zero bounds leave the
// period open on that side. ADJUST rows are counted, not summed, because
// their quantities are signed deltas.
func (r *StockTransactionRepository) SummaryAll(ctx context.Context, from, to time.Time) (*domain.TransactionSummary, error) {
	query := `
		SELECT
		    COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0),
		    COUNT(*) FILTER (WHERE type = 'ADJUST'),
		    COUNT(*)
		FROM stock_transactions
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)`

	var s domain.TransactionSummary
	err := r.db.QueryRow(ctx, query, nullableTime(from), nullableTime(to)).Scan(
		&s.TotalIn, &s.TotalOut, &s.TotalAdjust, &s.TotalTransactions,
	)
	if err != nil {
		return nil, fmt.Errorf("stock transaction summary: %w", err)
	}

	return &s, nil
}
