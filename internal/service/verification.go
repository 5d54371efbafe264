package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/prasetia/inventaris/pkg/errors"

	"github.com/prasetia/inventaris/internal/auth"
	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/event"
	"github.com/prasetia/inventaris/internal/lock"
	"github.com/prasetia/inventaris/internal/mailer"
	"github.com/prasetia/inventaris/internal/repository"
)

// verificationLockTTL bounds how long a verification request holds the
// per-user mutex.
const verificationLockTTL = 10 * time.Second

// resendThrottleTTL is the minimum interval between verification emails for
// the same user.
const resendThrottleTTL = 60 * time.Second

// VerifyPathFormat is the signed path for verification links. The user ID and
// the email proof hash are both covered by the signature.
const VerifyPathFormat = "/api/v1/email/verify/%s/%s"

// VerifyResult is the outcome of a verification attempt.
type VerifyResult struct {
	AlreadyVerified bool      `json:"already_verified"`
	VerifiedAt      time.Time `json:"verified_at"`
}

// VerificationService drives the email verification lifecycle.
type VerificationService struct {
	userRepo repository.UserRepository
	locks    lock.Store
	signer   *auth.URLSigner
	producer *event.Producer
	mail     MailDispatcher
	logger   *slog.Logger
	nowFunc  func() time.Time
}

// NewVerificationService creates a new verification service.
func NewVerificationService(
	userRepo repository.UserRepository,
	locks lock.Store,
	signer *auth.URLSigner,
	producer *event.Producer,
	mail MailDispatcher,
	logger *slog.Logger,
) *VerificationService {
	return &VerificationService{
		userRepo: userRepo,
		locks:    locks,
		signer:   signer,
		producer: producer,
		mail:     mail,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Verify completes email verification for a signed link. The signature is
// checked before any database lookup; verifying an already verified user is
// an idempotent success.
func (s *VerificationService) Verify(ctx context.Context, userID, proofHash, expires, signature string) (*VerifyResult, error) {
	path := fmt.Sprintf(VerifyPathFormat, userID, proofHash)
	if err := s.signer.Validate(path, expires, signature); err != nil {
		return nil, apperrors.New("INVALID_LINK", "verification link is invalid or has expired", http.StatusForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.IsVerified() {
		return &VerifyResult{AlreadyVerified: true, VerifiedAt: *user.EmailVerifiedAt}, nil
	}

	if !auth.VerifyEmailHash(user.Email, proofHash) {
		return nil, apperrors.New("INVALID_PROOF", "verification link does not match this account", http.StatusBadRequest)
	}

	lockKey := "email_verification_lock_" + userID
	acquired, err := s.locks.TryAcquire(ctx, lockKey, verificationLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire verification lock: %w", err)
	}
	if !acquired {
		return nil, apperrors.TooManyRequests("VERIFICATION_IN_PROGRESS", "verification is already in progress", int(verificationLockTTL.Seconds()))
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logger.ErrorContext(ctx, "failed to release verification lock",
				slog.String("key", lockKey),
				slog.String("error", err.Error()),
			)
		}
	}()

	// Re-check under the lock: a concurrent request may have won the race
	// between the first read and the acquire.
	user, err = s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified() {
		return &VerifyResult{AlreadyVerified: true, VerifiedAt: *user.EmailVerifiedAt}, nil
	}

	verifiedAt := s.nowFunc()
	if err := s.userRepo.MarkEmailVerified(ctx, userID, verifiedAt); err != nil {
		return nil, err
	}

	user.EmailVerifiedAt = &verifiedAt
	if err := s.producer.PublishUserVerified(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.verified event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "email verified", slog.String("user_id", userID))

	return &VerifyResult{VerifiedAt: verifiedAt}, nil
}

// Resend sends a fresh verification link, throttled to one per minute per
// user.
func (s *VerificationService) Resend(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsVerified() {
		return apperrors.New("ALREADY_VERIFIED", "email address is already verified", http.StatusBadRequest)
	}

	throttleKey := "resend_verification_" + user.ID
	acquired, err := s.locks.TryAcquire(ctx, throttleKey, resendThrottleTTL)
	if err != nil {
		return fmt.Errorf("acquire resend throttle: %w", err)
	}
	if !acquired {
		retryAfter := int(resendThrottleTTL.Seconds())
		if remaining, err := s.locks.TTL(ctx, throttleKey); err == nil && remaining > 0 {
			retryAfter = int((remaining + time.Second - 1) / time.Second)
		}
		return apperrors.TooManyRequests("RATE_LIMITED", "verification email was sent recently, try again later", retryAfter)
	}

	s.SendLink(ctx, user)

	return nil
}

// SendLink dispatches a signed verification link to the user. Delivery is
// fire and forget; a provider failure never fails the triggering request.
func (s *VerificationService) SendLink(ctx context.Context, user *domain.User) {
	path := fmt.Sprintf(VerifyPathFormat, user.ID, auth.EmailHash(user.Email))
	link := s.signer.Sign(path)

	s.mail.Dispatch(&mailer.Message{
		To:      user.Email,
		Subject: "Verify your email address",
		Body: fmt.Sprintf(
			"Hi %s,\n\nPlease verify your email address by opening the link below:\n\n%s\n\nIf you did not create an account, no further action is required.\n",
			user.Username, link,
		),
	})

	s.logger.InfoContext(ctx, "verification email dispatched", slog.String("user_id", user.ID))
}
