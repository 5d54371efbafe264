package domain

import "time"

// PasswordResetToken is the stored record for a pending password reset.
// Only one live record exists per email; issuing a new token replaces the
// previous one. The raw token is never stored, only its SHA-256 digest.
type PasswordResetToken struct {
	Email     string    `json:"email"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = 60 * time.Minute

// Expired reports whether the token was created more than the TTL ago.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > ResetTokenTTL
}
