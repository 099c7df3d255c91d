package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds each request's context lifetime. Handlers observe
// the deadline cooperatively through context.Done(); the detached analytics
// forwards are unaffected because they run on their own context.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
