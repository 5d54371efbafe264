package service

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/prasetia/inventaris/pkg/errors"

	"github.com/prasetia/inventaris/internal/auth"
	"github.com/prasetia/inventaris/internal/event"
	"github.com/prasetia/inventaris/internal/lock"
	"github.com/prasetia/inventaris/internal/mailer"
	"github.com/prasetia/inventaris/internal/repository"
)

// forgotThrottleTTL is the minimum interval between reset emails for the
// same address.
const forgotThrottleTTL = 60 * time.Second

// PasswordResetService drives the password reset lifecycle.
type PasswordResetService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	tokenRepo repository.RefreshTokenRepository
	locks     lock.Store
	producer  *event.Producer
	mail      MailDispatcher
	appURL    string
	logger    *slog.Logger
	nowFunc   func() time.Time
}

// NewPasswordResetService creates a new password reset service. appURL is the
// external base URL used to build reset links.
func NewPasswordResetService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	tokenRepo repository.RefreshTokenRepository,
	locks lock.Store,
	producer *event.Producer,
	mail MailDispatcher,
	appURL string,
	logger *slog.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		tokenRepo: tokenRepo,
		locks:     locks,
		producer:  producer,
		mail:      mail,
		appURL:    appURL,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// Request issues a reset token for the email and dispatches the reset link.
// Issuing a new token replaces any previous one for the address.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unprocessable("EMAIL_NOT_REGISTERED", "we can't find a user with that email address")
		}
		return err
	}

	if !user.IsVerified() {
		return apperrors.New("EMAIL_NOT_VERIFIED", "email address is not verified", http.StatusForbidden)
	}

	throttleKey := "forgot_password_" + email
	acquired, err := s.locks.TryAcquire(ctx, throttleKey, forgotThrottleTTL)
	if err != nil {
		return fmt.Errorf("acquire forgot-password throttle: %w", err)
	}
	if !acquired {
		retryAfter := int(forgotThrottleTTL.Seconds())
		if remaining, err := s.locks.TTL(ctx, throttleKey); err == nil && remaining > 0 {
			retryAfter = int((remaining + time.Second - 1) / time.Second)
		}
		return apperrors.TooManyRequests("RATE_LIMITED", "a reset email was sent recently, try again later", retryAfter)
	}

	token, err := randomToken()
	if err != nil {
		return err
	}

	if err := s.resetRepo.Upsert(ctx, email, auth.HashToken(token), s.nowFunc()); err != nil {
		return err
	}

	s.mail.Dispatch(&mailer.Message{
		To:      user.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYou are receiving this email because we received a password reset request for your account.\n\n%s\n\nThis link expires in 60 minutes. If you did not request a password reset, no further action is required.\n",
			user.Username, s.resetLink(email, token),
		),
	})

	if err := s.producer.PublishPasswordResetRequested(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish password_reset_requested event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested", slog.String("user_id", user.ID))

	return nil
}

// Reset consumes a reset token and sets the new password. A mismatched token
// leaves the stored record in place; an expired one deletes it.
func (s *PasswordResetService) Reset(ctx context.Context, email, token, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(newPassword)) == nil {
		return apperrors.Unprocessable("SAME_PASSWORD", "new password must be different from the current password")
	}

	record, err := s.resetRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.New("INVALID_TOKEN", "password reset token is invalid", http.StatusBadRequest)
		}
		return err
	}

	if record.Expired(s.nowFunc()) {
		if err := s.resetRepo.DeleteByEmail(ctx, email); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete expired reset token",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
		}
		return apperrors.New("TOKEN_EXPIRED", "password reset token has expired", http.StatusBadRequest)
	}

	if !hmac.Equal([]byte(auth.HashToken(token)), []byte(record.TokenHash)) {
		return apperrors.New("INVALID_TOKEN", "password reset token is invalid", http.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	rememberToken, err := randomToken()
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash), rememberToken); err != nil {
		return err
	}

	if err := s.resetRepo.DeleteByEmail(ctx, email); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete consumed reset token",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	if err := s.tokenRepo.RevokeByUserID(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke refresh tokens after password reset",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishPasswordReset(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish password_reset event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset completed", slog.String("user_id", user.ID))

	return nil
}

func (s *PasswordResetService) resetLink(email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return fmt.Sprintf("%s/reset-password?%s", s.appURL, q.Encode())
}
