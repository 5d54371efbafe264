package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/pkg/database"
	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/pagination"
)

// OpnameRepository implements repository.OpnameRepository using PostgreSQL.
type OpnameRepository struct {
	db database.DBTX
}

// NewOpnameRepository creates a new PostgreSQL-backed opname repository.
func NewOpnameRepository(db database.DBTX) *OpnameRepository {
	return &OpnameRepository{db: db}
}

// Create records the opname and reconciles the product stock to the physical
// count in one transaction. A non-zero difference also produces an ADJUST
// stock transaction so the correction shows up on the stock card.
//
// SystemStock and Difference are derived from the row locked inside the
// transaction, not from whatever the caller read earlier. A stock movement
// committing between the caller's read and this commit would otherwise be
// erased by the reconcile.
func (r *OpnameRepository) Create(ctx context.Context, o *domain.StockOpname) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var systemStock int
	err = tx.QueryRow(ctx,
		`SELECT stock FROM products WHERE id = $1 FOR UPDATE`, o.ProductID,
	).Scan(&systemStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", o.ProductID)
		}
		return fmt.Errorf("lock product stock: %w", err)
	}

	o.SystemStock = systemStock
	o.Difference = o.PhysicalStock - systemStock

	_, err = tx.Exec(ctx,
		`INSERT INTO stock_opnames (id, product_id, system_stock, physical_stock, difference, note, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.ProductID, o.SystemStock, o.PhysicalStock, o.Difference, o.Note, o.CreatedBy, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock opname: %w", err)
	}

	if o.Difference != 0 {
		_, err = tx.Exec(ctx,
			`UPDATE products SET stock = $1, updated_at = $2 WHERE id = $3`,
			o.PhysicalStock, time.Now().UTC(), o.ProductID,
		)
		if err != nil {
			return fmt.Errorf("reconcile product stock: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO stock_transactions (id, product_id, type, quantity, note, created_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), o.ProductID, domain.TransactionAdjust, o.Difference,
			fmt.Sprintf("stock opname %s", o.ID), o.CreatedBy, o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert adjust transaction: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a recorded opname.
func (r *OpnameRepository) GetByID(ctx context.Context, id string) (*domain.StockOpname, error) {
	query := `
		SELECT id, product_id, system_stock, physical_stock, difference, COALESCE(note, ''), created_by, created_at
		FROM stock_opnames
		WHERE id = $1`

	var o domain.StockOpname
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.ProductID, &o.SystemStock, &o.PhysicalStock,
		&o.Difference, &o.Note, &o.CreatedBy, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("stock opname", id)
		}
		return nil, fmt.Errorf("get stock opname: %w", err)
	}

	return &o, nil
}

// List returns recorded opnames, newest first.
func (r *OpnameRepository) List(ctx context.Context, params pagination.Params) ([]domain.StockOpname, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM stock_opnames`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock opnames: %w", err)
	}

	query := `
		SELECT id, product_id, system_stock, physical_stock, difference, COALESCE(note, ''), created_by, created_at
		FROM stock_opnames
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock opnames: %w", err)
	}
	defer rows.Close()

	var opnames []domain.StockOpname
	for rows.Next() {
		var o domain.StockOpname
		if err := rows.Scan(
			&o.ID, &o.ProductID, &o.SystemStock, &o.PhysicalStock,
			&o.Difference, &o.Note, &o.CreatedBy, &o.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock opname: %w", err)
		}
		opnames = append(opnames, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stock opnames: %w", err)
	}

	return opnames, total, nil
}

// Delete removes a recorded opname. The stock correction it already applied
// stays in place; only the history row goes.
func (r *OpnameRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM stock_opnames WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock opname: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("stock opname", id)
	}
	return nil
}

// Summary aggregates recorded opnames by outcome.
func (r *OpnameRepository) Summary(ctx context.Context) (*domain.OpnameSummary, error) {
	query := `
		SELECT
		    COUNT(*),
		    COUNT(*) FILTER (WHERE difference = 0),
		    COUNT(*) FILTER (WHERE difference < 0),
		    COUNT(*) FILTER (WHERE difference > 0),
		    COALESCE(SUM(difference), 0)
		FROM stock_opnames`

	var s domain.OpnameSummary
	err := r.db.QueryRow(ctx, query).Scan(
		&s.TotalOpnames, &s.Matched, &s.Shortage, &s.Surplus, &s.TotalDifference,
	)
	if err != nil {
		return nil, fmt.Errorf("stock opname summary: %w", err)
	}

	return &s, nil
}
