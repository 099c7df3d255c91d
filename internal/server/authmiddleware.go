package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecosystem/web-bff/internal/auth"
	"github.com/ecosystem/web-bff/internal/correlation"
)

// DefaultPublicPaths are the path prefixes that bypass credential extraction
// entirely: login, health and readiness, operational metrics, and
// feature-flag discovery.
var DefaultPublicPaths = []string{
	"/api/user/session/login",
	"/health",
	"/ready",
	"/metrics",
	"/api/feature-flags",
}

const bearerPrefix = "Bearer "

// AuthMiddleware reads the bearer credential, decodes it via the codec, and
// enriches the correlation context with the resolved identity. It is
// deliberately fail-open: a missing, malformed, or expired credential leaves
// the context unauthenticated and the request proceeds. Requests to public
// path prefixes skip extraction entirely.
func AuthMiddleware(codec auth.Codec, publicPaths []string, logger *slog.Logger) func(http.Handler) http.Handler {
	if publicPaths == nil {
		publicPaths = DefaultPublicPaths
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path, publicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				logger.Debug("no bearer credential", slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			cred, ok := codec.Decode(strings.TrimPrefix(header, bearerPrefix))
			if !ok {
				logger.Debug("invalid or expired credential", slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			corr := correlation.FromContext(r.Context())
			corr.UserID = cred.UserID
			corr.Username = cred.Username
			corr.Role = string(cred.Role)

			AddLogField(r.Context(), "user_ecosystem_id", cred.UserID)

			ctx := correlation.WithContext(r.Context(), corr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublicPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
