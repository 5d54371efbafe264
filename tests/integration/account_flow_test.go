package integration

import (
	"net/http"
	"testing"
)

// TestRegisterAndLoginBeforeVerification walks the registration flow up to
// the verification gate: a fresh account registers, then login is refused
// with EMAIL_NOT_VERIFIED until the emailed link is followed.
func TestRegisterAndLoginBeforeVerification(t *testing.T) {
	skipIfNotRunning(t)

	email := uniqueEmail("register")
	password := "Sup3rSecret"

	status, body := httpPost(t, baseURL()+"/api/v1/auth/register", map[string]string{
		"username":              "integration-user",
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	})
	requireStatus(t, status, http.StatusCreated)
	if got := extractString(t, body, "data.email"); got != email {
		t.Errorf("registered email = %q, want %q", got, email)
	}

	status, body = httpPost(t, baseURL()+"/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	requireStatus(t, status, http.StatusForbidden)
	if got := extractString(t, body, "error.code"); got != "EMAIL_NOT_VERIFIED" {
		t.Errorf("error code = %q, want EMAIL_NOT_VERIFIED", got)
	}
}

// TestRegisterPasswordMismatch exercises request validation.
func TestRegisterPasswordMismatch(t *testing.T) {
	skipIfNotRunning(t)

	status, body := httpPost(t, baseURL()+"/api/v1/auth/register", map[string]string{
		"username":              "integration-user",
		"email":                 uniqueEmail("mismatch"),
		"password":              "Sup3rSecret",
		"password_confirmation": "Different1",
	})
	requireStatus(t, status, http.StatusUnprocessableEntity)
	if got := extractString(t, body, "error.code"); got != "VALIDATION_ERROR" {
		t.Errorf("error code = %q, want VALIDATION_ERROR", got)
	}
}

// TestVerifyTamperedSignature hits the signed verification endpoint with a
// forged signature and expects a flat rejection.
func TestVerifyTamperedSignature(t *testing.T) {
	skipIfNotRunning(t)

	url := baseURL() + "/api/v1/email/verify/bogus-id/bogus-hash?expires=9999999999&signature=deadbeef"
	status, body := httpGet(t, url)
	requireStatus(t, status, http.StatusForbidden)
	if got := extractString(t, body, "error.code"); got != "INVALID_LINK" {
		t.Errorf("error code = %q, want INVALID_LINK", got)
	}
}

// TestResendVerificationThrottle issues two back-to-back resend requests for
// the same unverified account. The second must hit the 60 second throttle and
// carry a Retry-After header.
func TestResendVerificationThrottle(t *testing.T) {
	skipIfNotRunning(t)

	email := uniqueEmail("resend")
	password := "Sup3rSecret"
	status, _ := httpPost(t, baseURL()+"/api/v1/auth/register", map[string]string{
		"username":              "integration-user",
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	})
	requireStatus(t, status, http.StatusCreated)

	status, _ = httpPost(t, baseURL()+"/api/v1/email/resend", map[string]string{"email": email})
	requireStatus(t, status, http.StatusOK)

	status, body, headers := httpPostResponse(t, baseURL()+"/api/v1/email/resend", map[string]string{"email": email})
	requireStatus(t, status, http.StatusTooManyRequests)
	if got := extractString(t, body, "error.code"); got != "RATE_LIMITED" {
		t.Errorf("error code = %q, want RATE_LIMITED", got)
	}
	if headers.Get("Retry-After") == "" {
		t.Error("expected Retry-After header on throttled resend")
	}
}

// TestForgotPasswordUnknownEmail checks that resets for unregistered
// addresses are reported, matching the admin-facing nature of the system.
func TestForgotPasswordUnknownEmail(t *testing.T) {
	skipIfNotRunning(t)

	status, body := httpPost(t, baseURL()+"/api/v1/auth/forgot-password", map[string]string{
		"email": uniqueEmail("unknown"),
	})
	requireStatus(t, status, http.StatusUnprocessableEntity)
	if got := extractString(t, body, "error.code"); got != "EMAIL_NOT_REGISTERED" {
		t.Errorf("error code = %q, want EMAIL_NOT_REGISTERED", got)
	}
}

// TestForgotPasswordUnverifiedEmail checks the verified-account gate on the
// reset flow.
func TestForgotPasswordUnverifiedEmail(t *testing.T) {
	skipIfNotRunning(t)

	email := uniqueEmail("forgot-unverified")
	password := "Sup3rSecret"
	status, _ := httpPost(t, baseURL()+"/api/v1/auth/register", map[string]string{
		"username":              "integration-user",
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	})
	requireStatus(t, status, http.StatusCreated)

	status, body := httpPost(t, baseURL()+"/api/v1/auth/forgot-password", map[string]string{"email": email})
	requireStatus(t, status, http.StatusForbidden)
	if got := extractString(t, body, "error.code"); got != "EMAIL_NOT_VERIFIED" {
		t.Errorf("error code = %q, want EMAIL_NOT_VERIFIED", got)
	}
}

// TestProtectedRoutesRequireAuth confirms the inventory surface sits behind
// JWT auth.
func TestProtectedRoutesRequireAuth(t *testing.T) {
	skipIfNotRunning(t)

	status, _ := httpGet(t, baseURL()+"/api/v1/products")
	requireStatus(t, status, http.StatusUnauthorized)

	status, _ = httpGetWithAuth(t, baseURL()+"/api/v1/products", "not-a-valid-token")
	requireStatus(t, status, http.StatusUnauthorized)
}
