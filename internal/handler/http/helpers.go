// Package http exposes the REST API over chi.
package http

import (
	"log/slog"
	"net/http"

	"github.com/prasetia/inventaris/pkg/httputil"
	"github.com/prasetia/inventaris/pkg/validator"
)

type response = httputil.Response

type errorResponse = httputil.ErrorResponse

func writeJSON(w http.ResponseWriter, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

// writeAppError renders err through the shared error envelope. The handler's
// injected logger is the fallback when the request carries no scoped logger.
func writeAppError(w http.ResponseWriter, r *http.Request, err error, l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	httputil.WriteError(w, r, err, l)
}

func writeValidationError(w http.ResponseWriter, err error) {
	httputil.WriteValidationError(w, err)
}

// decodeBody decodes a size-limited JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	return validator.DecodeAndValidate(r, dst)
}
