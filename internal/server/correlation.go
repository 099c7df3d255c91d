package server

import (
	"net/http"

	"github.com/ecosystem/web-bff/internal/correlation"
)

// CorrelationMiddleware derives the correlation context from inbound headers,
// stores it in the request context, and echoes the resolved request ID on the
// response. It runs first in the chain so every later stage, including error
// paths, sees the identifiers.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr := correlation.Derive(r.Header)

		w.Header().Set(correlation.HeaderRequestID, corr.RequestID)

		ctx := correlation.WithContext(r.Context(), corr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
