package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/prasetia/inventaris/pkg/errors"
)

func newResetTestFixture(t *testing.T) (*PasswordResetRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPasswordResetRepository(mock), mock
}

func TestPasswordResetRepository_Upsert(t *testing.T) {
	repo, mock := newResetTestFixture(t)
	defer mock.Close()

	createdAt := time.Now().UTC()

	mock.ExpectExec("INSERT INTO password_reset_tokens").
		WithArgs("budi@example.com", "hash-1", createdAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Upsert(context.Background(), "budi@example.com", "hash-1", createdAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepository_GetByEmail_Found(t *testing.T) {
	repo, mock := newResetTestFixture(t)
	defer mock.Close()

	createdAt := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM password_reset_tokens").
		WithArgs("budi@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"email", "token_hash", "created_at"}).
			AddRow("budi@example.com", "hash-1", createdAt))

	tok, err := repo.GetByEmail(context.Background(), "budi@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", tok.TokenHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newResetTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM password_reset_tokens").
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepository_DeleteByEmail(t *testing.T) {
	repo, mock := newResetTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM password_reset_tokens").
		WithArgs("budi@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.DeleteByEmail(context.Background(), "budi@example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
