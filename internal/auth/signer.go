package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// URLSigner issues and validates temporary signed URLs for email verification
// links. The signature covers the URL path and the expiry timestamp, so any
// change to either invalidates the link.
type URLSigner struct {
	baseURL string
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewURLSigner creates a signer that issues links valid for the given TTL.
func NewURLSigner(baseURL, secret string, ttl time.Duration) *URLSigner {
	return &URLSigner{
		baseURL: baseURL,
		secret:  []byte(secret),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Sign builds a signed URL for the given path. The result carries `expires`
// and `signature` query parameters.
func (s *URLSigner) Sign(path string) string {
	expires := s.nowFunc().Add(s.ttl).Unix()
	sig := s.signature(path, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", sig)

	return fmt.Sprintf("%s%s?%s", s.baseURL, path, q.Encode())
}

// Validate checks the signature and expiry for the given path. The signature
// is verified first, in constant time, before the expiry is consulted; a
// tampered link is rejected without revealing whether it had expired.
func (s *URLSigner) Validate(path, expiresParam, signature string) error {
	expires, err := strconv.ParseInt(expiresParam, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed expires parameter")
	}

	expected := s.signature(path, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}

	if s.nowFunc().Unix() > expires {
		return fmt.Errorf("link expired")
	}

	return nil
}

// signature computes the hex HMAC-SHA256 digest over the canonical signed string.
func (s *URLSigner) signature(path string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s?expires=%d", path, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// EmailHash returns the hex SHA-1 digest of the email address. It is embedded
// in verification links as proof that the recipient controls the address the
// link was issued for.
func EmailHash(email string) string {
	sum := sha1.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

// VerifyEmailHash compares a presented hash against the expected digest of
// the email in constant time.
func VerifyEmailHash(email, presented string) bool {
	expected := EmailHash(email)
	return hmac.Equal([]byte(expected), []byte(presented))
}

// HashToken returns the hex SHA-256 digest of a raw token. Tokens are stored
// hashed so a database leak does not expose live credentials.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
