package service

import (
	"context"
	"net/http"
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

func newAuthFixture(
	userRepo *mockUserRepository,
	tokenRepo *mockRefreshTokenRepository,
) (*AuthService, *capturePublisher, *captureDispatcher) {
	pub := &capturePublisher{}
	mail := &captureDispatcher{}
	producer := newTestProducer(pub)
	verification := NewVerificationService(userRepo, lock.NewMemoryStore(), newTestSigner(), producer, mail, newTestLogger())
	svc := NewAuthService(userRepo, tokenRepo, newTestJWTManager(), producer, verification, newTestLogger())
	return svc, pub, mail
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, pub, mail := newAuthFixture(userRepo, tokenRepo)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "budi",
		Email:    "Budi@Example.com",
		Password: "Sup3rSecret",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "budi@example.com", user.Email, "email must be stored case-folded")
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Nil(t, user.EmailVerifiedAt)
	assert.True(t, pub.published(event.TopicUserRegistered))

	sent := mail.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "budi@example.com", sent[0].To)
	assert.Contains(t, sent[0].Body, "/api/v1/email/verify/"+user.ID+"/")

	userRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, mail := newAuthFixture(userRepo, tokenRepo)

	userRepo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("user", "email", "budi@example.com"))

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "budi",
		Email:    "budi@example.com",
		Password: "Sup3rSecret",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Empty(t, mail.sent())
}

func TestRegister_WeakPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	for _, password := range []string{"short", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		user, err := svc.Register(context.Background(), RegisterInput{
			Username: "budi",
			Email:    "budi@example.com",
			Password: password,
		})

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "password %q must be rejected", password)
	}

	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	user := verifiedUser()
	user.PasswordHash = hashForTest("Sup3rSecret")
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	tokenRepo.On("Create", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(nil)

	loggedIn, tokens, err := svc.Login(context.Background(), LoginInput{
		Email:    "Budi@Example.com",
		Password: "Sup3rSecret",
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	tokenRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	user := verifiedUser()
	user.PasswordHash = hashForTest("Sup3rSecret")
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	loggedIn, tokens, err := svc.Login(context.Background(), LoginInput{
		Email:    user.Email,
		Password: "WrongPassw0rd",
	})

	assert.Nil(t, loggedIn)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "Sup3rSecret",
	})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnverifiedEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	user := unverifiedUser()
	user.PasswordHash = hashForTest("Sup3rSecret")
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	loggedIn, tokens, err := svc.Login(context.Background(), LoginInput{
		Email:    user.Email,
		Password: "Sup3rSecret",
	})

	assert.Nil(t, loggedIn)
	assert.Nil(t, tokens)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", appErr.Code)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshToken_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	user := verifiedUser()
	refreshToken, err := newTestJWTManager().GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	tokenRepo.On("GetByHash", mock.Anything, auth.HashToken(refreshToken)).Return(&domain.RefreshToken{
		ID:        "token-1",
		UserID:    user.ID,
		TokenHash: auth.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil)
	tokenRepo.On("Revoke", mock.Anything, auth.HashToken(refreshToken)).Return(nil)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	tokenRepo.On("Create", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(nil)

	tokens, err := svc.RefreshToken(context.Background(), refreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, refreshToken, tokens.RefreshToken, "refresh token must rotate")
	tokenRepo.AssertExpectations(t)
}

func TestRefreshToken_Revoked(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	user := verifiedUser()
	refreshToken, err := newTestJWTManager().GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	tokenRepo.On("GetByHash", mock.Anything, auth.HashToken(refreshToken)).Return(&domain.RefreshToken{
		ID:        "token-1",
		UserID:    user.ID,
		TokenHash: auth.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(24 * time.Hour),
		RevokedAt: timePtr(time.Now().Add(-time.Minute)),
	}, nil)

	tokens, err := svc.RefreshToken(context.Background(), refreshToken)

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefreshToken_Garbage(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	tokens, err := svc.RefreshToken(context.Background(), "not-a-jwt")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	tokenRepo.AssertNotCalled(t, "GetByHash", mock.Anything, mock.Anything)
}

func TestLogout_RevokesToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc, _, _ := newAuthFixture(userRepo, tokenRepo)

	tokenRepo.On("Revoke", mock.Anything, auth.HashToken("some-refresh-token")).Return(nil)

	err := svc.Logout(context.Background(), "some-refresh-token")

	require.NoError(t, err)
	tokenRepo.AssertExpectations(t)
}
