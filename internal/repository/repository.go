package repository

import (
	"context"
	"time"

	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/pkg/pagination"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address. Emails are stored
	// lower-cased, so callers must fold the input before lookup.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// MarkEmailVerified stamps the verification time. It does not overwrite
	// an existing timestamp.
	MarkEmailVerified(ctx context.Context, id string, verifiedAt time.Time) error

	// UpdatePassword replaces the password hash and rotates the remember token.
	UpdatePassword(ctx context.Context, id, passwordHash, rememberToken string) error
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// RevokeByUserID revokes all refresh tokens for the given user.
	RevokeByUserID(ctx context.Context, userID string) error

	// Revoke revokes a specific refresh token by its hash.
	Revoke(ctx context.Context, tokenHash string) error
}

// PasswordResetRepository defines the interface for password reset token records.
// At most one live record exists per email.
type PasswordResetRepository interface {
	// Upsert stores the token hash for the email, replacing any previous record.
	Upsert(ctx context.Context, email, tokenHash string, createdAt time.Time) error

	// GetByEmail retrieves the reset record for the email.
	GetByEmail(ctx context.Context, email string) (*domain.PasswordResetToken, error)

	// DeleteByEmail removes the reset record for the email.
	DeleteByEmail(ctx context.Context, email string) error
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetByCode retrieves a product by its unique code.
	GetByCode(ctx context.Context, code string) (*domain.Product, error)

	// List returns products matching the optional search and category
	// filters, with the total count for pagination.
	List(ctx context.Context, search, category string, params pagination.Params) ([]domain.Product, int, error)

	// Options returns the minimal projection of all products for dropdowns.
	Options(ctx context.Context) ([]domain.ProductOption, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// TransactionFilter narrows the global transaction history. Zero values
// disable the corresponding condition.
type TransactionFilter struct {
	Type      string
	ProductID string
	From      time.Time
	To        time.Time
}

// StockTransactionRepository defines the interface for stock transaction operations.
type StockTransactionRepository interface {
	// CreateWithAdjustment atomically inserts the transaction and applies
	// its stock delta to the product. It rejects OUT transactions that
	// would drive stock negative.
	CreateWithAdjustment(ctx context.Context, txn *domain.StockTransaction) error

	// GetByID retrieves a single stock transaction.
	GetByID(ctx context.Context, id string) (*domain.StockTransaction, error)

	// List returns transactions across all products matching the filter,
	// newest first.
	List(ctx context.Context, filter TransactionFilter, params pagination.Params) ([]domain.StockTransaction, int, error)

	// ListByProduct returns the stock card for a product: transactions in
	// chronological order with the running balance.
	ListByProduct(ctx context.Context, productID string, params pagination.Params) ([]domain.StockCardEntry, int, error)

	// Summary aggregates transaction totals for a product between from and to.
	Summary(ctx context.Context, productID string, from, to time.Time) (*domain.StockSummary, error)

	// SummaryAll aggregates movements across all products. Zero bounds
	// leave the period open on that side.
	SummaryAll(ctx context.Context, from, to time.Time) (*domain.TransactionSummary, error)
}

// OpnameRepository defines the interface for stock opname persistence operations.
type OpnameRepository interface {
	// Create atomically records the opname and, when the difference is
	// non-zero, reconciles the product stock with an ADJUST transaction.
	// SystemStock and Difference are populated from the stock value read
	// under lock inside the transaction.
	Create(ctx context.Context, opname *domain.StockOpname) error

	// GetByID retrieves a recorded opname.
	GetByID(ctx context.Context, id string) (*domain.StockOpname, error)

	// List returns recorded opnames, newest first.
	List(ctx context.Context, params pagination.Params) ([]domain.StockOpname, int, error)

	// Delete removes a recorded opname. Stock corrections the opname
	// already applied are left in place.
	Delete(ctx context.Context, id string) error

	// Summary aggregates recorded opnames by outcome.
	Summary(ctx context.Context) (*domain.OpnameSummary, error)
}

// ProfitReportRepository defines the interface for profit report operations.
type ProfitReportRepository interface {
	// Compute aggregates cost, sales, and profit from OUT transactions
	// within the period.
	Compute(ctx context.Context, from, to time.Time) (totalCost, totalSales int64, err error)

	// Upsert stores the report, replacing an existing report for the same
	// type and period.
	Upsert(ctx context.Context, report *domain.ProfitReport) error

	// List returns stored reports of the given type, newest first.
	List(ctx context.Context, reportType string, params pagination.Params) ([]domain.ProfitReport, int, error)

	// GetByID returns a stored report.
	GetByID(ctx context.Context, id string) (*domain.ProfitReport, error)

	// Delete removes a stored report.
	Delete(ctx context.Context, id string) error

	// Summary sums stored reports of the given type. An empty type sums
	// all reports.
	Summary(ctx context.Context, reportType string) (*domain.ProfitSummary, error)
}

// QRLogRepository defines the interface for product QR scan logs.
type QRLogRepository interface {
	// Create records a QR scan of a product.
	Create(ctx context.Context, log *domain.QRLog) error

	// GetByID retrieves a single scan log.
	GetByID(ctx context.Context, id string) (*domain.QRLog, error)

	// ListByProduct returns scan logs for a product, newest first.
	ListByProduct(ctx context.Context, productID string, params pagination.Params) ([]domain.QRLog, int, error)

	// List returns scan logs across all products, newest first.
	List(ctx context.Context, params pagination.Params) ([]domain.QRLog, int, error)

	// Stats returns per-product scan counts, most scanned first.
	Stats(ctx context.Context) ([]domain.QRScanStat, error)
}
