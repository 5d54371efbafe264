// Package service implements the business logic for accounts, the email
// verification and password reset lifecycles, and the inventory operations.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"unicode"

	apperrors "github.com/prasetia/inventaris/pkg/errors"

	"github.com/prasetia/inventaris/internal/mailer"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// MailDispatcher delivers transactional mail without blocking the caller.
type MailDispatcher interface {
	Dispatch(msg *mailer.Message)
}

// randomToken returns a 64-character hex token from 32 random bytes.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// validatePassword checks that the password meets minimum complexity requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
