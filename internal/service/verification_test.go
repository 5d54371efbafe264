package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/prasetia/inventaris/pkg/errors"

	"github.com/prasetia/inventaris/internal/auth"
	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/event"
	"github.com/prasetia/inventaris/internal/lock"
)

func newVerificationFixture(userRepo *mockUserRepository) (*VerificationService, *lock.MemoryStore, *capturePublisher, *captureDispatcher) {
	locks := lock.NewMemoryStore()
	pub := &capturePublisher{}
	mail := &captureDispatcher{}
	svc := NewVerificationService(userRepo, locks, newTestSigner(), newTestProducer(pub), mail, newTestLogger())
	return svc, locks, pub, mail
}

// signParams signs the verification path for the user and returns the
// expires and signature query parameters of the minted link.
func signParams(t *testing.T, signer *auth.URLSigner, userID, proofHash string) (string, string) {
	t.Helper()

	link := signer.Sign(fmt.Sprintf(VerifyPathFormat, userID, proofHash))
	u, err := url.Parse(link)
	require.NoError(t, err)

	return u.Query().Get("expires"), u.Query().Get("signature")
}

func unverifiedUser() *domain.User {
	return &domain.User{
		ID:           "user-123",
		Username:     "budi",
		Email:        "budi@example.com",
		PasswordHash: hashForTest("Sup3rSecret"),
		Role:         domain.RoleUser,
	}
}

func TestVerify_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, locks, pub, _ := newVerificationFixture(userRepo)

	user := unverifiedUser()
	proof := auth.EmailHash(user.Email)
	expires, signature := signParams(t, newTestSigner(), user.ID, proof)

	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("MarkEmailVerified", mock.Anything, user.ID, mock.Anything).Return(nil)

	result, err := svc.Verify(context.Background(), user.ID, proof, expires, signature)

	require.NoError(t, err)
	assert.False(t, result.AlreadyVerified)
	assert.NotZero(t, result.VerifiedAt)
	assert.True(t, pub.published(event.TopicUserVerified))

	held, err := locks.Exists(context.Background(), "email_verification_lock_"+user.ID)
	require.NoError(t, err)
	assert.False(t, held, "lock must be released after verification")

	userRepo.AssertExpectations(t)
}

func TestVerify_TamperedSignature(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, _, _ := newVerificationFixture(userRepo)

	user := unverifiedUser()
	proof := auth.EmailHash(user.Email)
	expires, _ := signParams(t, newTestSigner(), user.ID, proof)

	_, err := svc.Verify(context.Background(), user.ID, proof, expires, "forged")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_LINK", appErr.Code)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestVerify_ExpiredLink(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, _, _ := newVerificationFixture(userRepo)

	user := unverifiedUser()
	proof := auth.EmailHash(user.Email)
	expired := auth.NewURLSigner("http://localhost:8080", "test-signing-secret", -time.Minute)
	expires, signature := signParams(t, expired, user.ID, proof)

	_, err := svc.Verify(context.Background(), user.ID, proof, expires, signature)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_LINK", appErr.Code)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestVerify_UserNotFound(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, _, _ := newVerificationFixture(userRepo)

	proof := auth.EmailHash("ghost@example.com")
	expires, signature := signParams(t, newTestSigner(), "user-404", proof)

	userRepo.On("GetByID", mock.Anything, "user-404").Return(nil, apperrors.NotFound("user", "user-404"))

	_, err := svc.Verify(context.Background(), "user-404", proof, expires, signature)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVerify_AlreadyVerified_Idempotent(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, pub, _ := newVerificationFixture(userRepo)

	verifiedAt := time.Now().Add(-time.Hour)
	user := unverifiedUser()
	user.EmailVerifiedAt = timePtr(verifiedAt)
	proof := auth.EmailHash(user.Email)
	expires, signature := signParams(t, newTestSigner(), user.ID, proof)

	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	result, err := svc.Verify(context.Background(), user.ID, proof, expires, signature)

	require.NoError(t, err)
	assert.True(t, result.AlreadyVerified)
	assert.Equal(t, verifiedAt, result.VerifiedAt)
	assert.False(t, pub.published(event.TopicUserVerified))
	userRepo.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_ProofMismatch(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, _, _ := newVerificationFixture(userRepo)

	user := unverifiedUser()
	// A validly signed link minted for a different email address.
	proof := auth.EmailHash("other@example.com")
	expires, signature := signParams(t, newTestSigner(), user.ID, proof)

	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.Verify(context.Background(), user.ID, proof, expires, signature)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_PROOF", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	userRepo.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_LockHeld(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, locks, _, _ := newVerificationFixture(userRepo)

	user := unverifiedUser()
	proof := auth.EmailHash(user.Email)
	expires, signature := signParams(t, newTestSigner(), user.ID, proof)

	acquired, err := locks.TryAcquire(context.Background(), "email_verification_lock_"+user.ID, 10*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err = svc.Verify(context.Background(), user.ID, proof, expires, signature)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VERIFICATION_IN_PROGRESS", appErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
	assert.Equal(t, 10, appErr.RetryAfter)
	userRepo.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_ConcurrentWinnerDetectedUnderLock(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, pub, _ := newVerificationFixture(userRepo)

	user := unverifiedUser()
	proof := auth.EmailHash(user.Email)
	expires, signature := signParams(t, newTestSigner(), user.ID, proof)

	verified := unverifiedUser()
	verified.EmailVerifiedAt = timePtr(time.Now())

	// First read sees an unverified user; the re-read under the lock sees
	// that a concurrent request already verified it.
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	userRepo.On("GetByID", mock.Anything, user.ID).Return(verified, nil).Once()

	result, err := svc.Verify(context.Background(), user.ID, proof, expires, signature)

	require.NoError(t, err)
	assert.True(t, result.AlreadyVerified)
	assert.False(t, pub.published(event.TopicUserVerified))
	userRepo.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestResend_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, _, mail := newVerificationFixture(userRepo)

	user := unverifiedUser()
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	err := svc.Resend(context.Background(), "Budi@Example.com")

	require.NoError(t, err)
	sent := mail.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, user.Email, sent[0].To)
	assert.Contains(t, sent[0].Body, "/api/v1/email/verify/"+user.ID+"/"+auth.EmailHash(user.Email))
	assert.Contains(t, sent[0].Body, "signature=")
}

func TestResend_AlreadyVerified(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, _, mail := newVerificationFixture(userRepo)

	user := unverifiedUser()
	user.EmailVerifiedAt = timePtr(time.Now())
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	err := svc.Resend(context.Background(), user.Email)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ALREADY_VERIFIED", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Empty(t, mail.sent())
}

func TestResend_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, _, _ := newVerificationFixture(userRepo)

	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	err := svc.Resend(context.Background(), "ghost@example.com")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResend_Throttled(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc, _, _, mail := newVerificationFixture(userRepo)

	user := unverifiedUser()
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	require.NoError(t, svc.Resend(context.Background(), user.Email))

	err := svc.Resend(context.Background(), user.Email)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "RATE_LIMITED", appErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
	assert.Greater(t, appErr.RetryAfter, 0)
	assert.LessOrEqual(t, appErr.RetryAfter, 60)
	assert.Len(t, mail.sent(), 1, "second request must not send another email")
}
