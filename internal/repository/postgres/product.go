package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prasetia/inventaris/internal/domain"
	apperrors "github.com/prasetia/inventaris/pkg/errors"
	"github.com/prasetia/inventaris/pkg/database"
	"github.com/prasetia/inventaris/pkg/pagination"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, code, name, category, unit, stock, min_stock, cost_price, sale_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Code,
		p.Name,
		p.Category,
		p.Unit,
		p.Stock,
		p.MinStock,
		p.CostPrice,
		p.SalePrice,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "code", p.Code)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, code, name, category, unit, stock, min_stock, cost_price, sale_price, created_at, updated_at
		FROM products
		WHERE id = $1`

	return r.scanProduct(ctx, query, id)
}

// GetByCode retrieves a product by its unique code.
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	query := `
		SELECT id, code, name, category, unit, stock, min_stock, cost_price, sale_price, created_at, updated_at
		FROM products
		WHERE code = $1`

	return r.scanProduct(ctx, query, code)
}

// List returns products matching the filters with the total count.
func (r *ProductRepository) List(ctx context.Context, search, category string, params pagination.Params) ([]domain.Product, int, error) {
	where := ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%')
		AND ($2 = '' OR category = $2)`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, search, category).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `
		SELECT id, code, name, category, unit, stock, min_stock, cost_price, sale_price, created_at, updated_at
		FROM products` + where + `
		ORDER BY name
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, search, category, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Category, &p.Unit,
			&p.Stock, &p.MinStock, &p.CostPrice, &p.SalePrice,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

// Options returns the minimal projection of all products for dropdowns.
func (r *ProductRepository) Options(ctx context.Context) ([]domain.ProductOption, error) {
	query := `SELECT id, code, name FROM products ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list product options: %w", err)
	}
	defer rows.Close()

	var options []domain.ProductOption
	for rows.Next() {
		var o domain.ProductOption
		if err := rows.Scan(&o.ID, &o.Code, &o.Name); err != nil {
			return nil, fmt.Errorf("scan product option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product options: %w", err)
	}

	return options, nil
}

// Update modifies an existing product in the database. Stock is adjusted only
// through stock transactions, never here.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET code = $1, name = $2, category = $3, unit = $4, min_stock = $5,
		    cost_price = $6, sale_price = $7, updated_at = $8
		WHERE id = $9`

	ct, err := r.db.Exec(ctx, query,
		p.Code,
		p.Name,
		p.Category,
		p.Unit,
		p.MinStock,
		p.CostPrice,
		p.SalePrice,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "code", p.Code)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// scanProduct is a helper that executes a query expected to return a single product row.
func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var p domain.Product

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.Category,
		&p.Unit,
		&p.Stock,
		&p.MinStock,
		&p.CostPrice,
		&p.SalePrice,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}
