package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/pkg/database"
	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/pagination"
)

// QRLogRepository implements repository.QRLogRepository using PostgreSQL.
type QRLogRepository struct {
	db database.DBTX
}

// NewQRLogRepository creates a new PostgreSQL-backed QR log repository.
func NewQRLogRepository(db database.DBTX) *QRLogRepository {
	return &QRLogRepository{db: db}
}

// Create records a QR scan of a product.
func (r *QRLogRepository) Create(ctx context.Context, l *domain.QRLog) error {
	query := `
		INSERT INTO product_qr_logs (id, product_id, scanned_by, scanned_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, l.ID, l.ProductID, l.ScannedBy, l.ScannedAt)
	if err != nil {
		return fmt.Errorf("insert qr log: %w", err)
	}

	return nil
}

// GetByID retrieves a single scan log.
func (r *QRLogRepository) GetByID(ctx context.Context, id string) (*domain.QRLog, error) {
	var l domain.QRLog
	err := r.db.QueryRow(ctx,
		`SELECT id, product_id, scanned_by, scanned_at FROM product_qr_logs WHERE id = $1`, id,
	).Scan(&l.ID, &l.ProductID, &l.ScannedBy, &l.ScannedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("qr log", id)
		}
		return nil, fmt.Errorf("get qr log: %w", err)
	}

	return &l, nil
}

// ListByProduct returns scan logs for a product, newest first.
func (r *QRLogRepository) ListByProduct(ctx context.Context, productID string, params pagination.Params) ([]domain.QRLog, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM product_qr_logs WHERE product_id = $1`, productID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count qr logs: %w", err)
	}

	query := `
		SELECT id, product_id, scanned_by, scanned_at
		FROM product_qr_logs
		WHERE product_id = $1
		ORDER BY scanned_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, productID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list qr logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.QRLog
	for rows.Next() {
		var l domain.QRLog
		if err := rows.Scan(&l.ID, &l.ProductID, &l.ScannedBy, &l.ScannedAt); err != nil {
			return nil, 0, fmt.Errorf("scan qr log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate qr logs: %w", err)
	}

	return logs, total, nil
}

// List returns scan logs across all products, newest first.
func (r *QRLogRepository) List(ctx context.Context, params pagination.Params) ([]domain.QRLog, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM product_qr_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count qr logs: %w", err)
	}

	query := `
		SELECT id, product_id, scanned_by, scanned_at
		FROM product_qr_logs
		ORDER BY scanned_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list qr logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.QRLog
	for rows.Next() {
		var l domain.QRLog
		if err := rows.Scan(&l.ID, &l.ProductID, &l.ScannedBy, &l.ScannedAt); err != nil {
			return nil, 0, fmt.Errorf("scan qr log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate qr logs: %w", err)
	}

	return logs, total, nil
}

// Stats returns per-product scan counts, most scanned first.
func (r *QRLogRepository) Stats(ctx context.Context) ([]domain.QRScanStat, error) {
	query := `
		SELECT l.product_id, p.name, COUNT(*) AS scans
		FROM product_qr_logs l
		JOIN products p ON p.id = l.product_id
		GROUP BY l.product_id, p.name
		ORDER BY scans DESC, p.name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("qr log stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.QRScanStat
	for rows.Next() {
		var s domain.QRScanStat
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.ScanCount); err != nil {
			return nil, fmt.Errorf("scan qr stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate qr stats: %w", err)
	}

	return stats, nil
}
