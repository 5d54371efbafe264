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
)

// PasswordResetRepository implements repository.PasswordResetRepository using PostgreSQL.
type PasswordResetRepository struct {
	db database.DBTX
}

// NewPasswordResetRepository creates a new PostgreSQL-backed password reset repository.
func NewPasswordResetRepository(db database.DBTX) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Upsert stores the token hash for the email. The email is the primary key,
// so issuing a new token replaces the previous record.
func (r *PasswordResetRepository) Upsert(ctx context.Context, email, tokenHash string, createdAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (email, token_hash, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET token_hash = $2, created_at = $3`

	_, err := r.db.Exec(ctx, query, email, tokenHash, createdAt)
	if err != nil {
		return fmt.Errorf("upsert password reset token: %w", err)
	}

	return nil
}

// GetByEmail retrieves the reset record for the email.
func (r *PasswordResetRepository) GetByEmail(ctx context.Context, email string) (*domain.PasswordResetToken, error) {
	query := `
		SELECT email, token_hash, created_at
		FROM password_reset_tokens
		WHERE email = $1`

	var t domain.PasswordResetToken
	err := r.db.QueryRow(ctx, query, email).Scan(&t.Email, &t.TokenHash, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan password reset token: %w", err)
	}

	return &t, nil
}

// DeleteByEmail removes the reset record for the email. Deleting an absent
// record is not an error.
func (r *PasswordResetRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM password_reset_tokens WHERE email = $1`

	_, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return fmt.Errorf("delete password reset token: %w", err)
	}

	return nil
}
