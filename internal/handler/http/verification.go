package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prasetia/inventaris/internal/service"
)

// VerificationHandler handles HTTP requests for email verification endpoints.
type VerificationHandler struct {
	service *service.VerificationService
	logger  *slog.Logger
}

// NewVerificationHandler creates a new verification HTTP handler.
func NewVerificationHandler(svc *service.VerificationService, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{service: svc, logger: logger}
}

// ResendRequest is the JSON request body for resending the verification email.
type ResendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Verify handles GET /api/v1/email/verify/{id}/{hash}
func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	hash := chi.URLParam(r, "hash")
	q := r.URL.Query()

	result, err := h.service.Verify(r.Context(), userID, hash, q.Get("expires"), q.Get("signature"))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: result})
}

// Resend handles POST /api/v1/email/resend
func (h *VerificationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.service.Resend(r.Context(), req.Email); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{
		"message": "verification email sent",
	}})
}
