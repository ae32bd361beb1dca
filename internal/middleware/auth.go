package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// OpsAuthMiddleware guards the operational API with a static bearer token.
// An empty configured token disables the surface entirely rather than
// leaving it open.
type OpsAuthMiddleware struct {
	token string
}

func NewOpsAuthMiddleware(token string) *OpsAuthMiddleware {
	return &OpsAuthMiddleware{token: token}
}

func (m *OpsAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" {
			log.Warn().Msg("ops auth middleware: OPS_TOKEN is not configured, refusing request")
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "Not found",
			})
			return
		}

		token := extractToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing authentication token",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
			log.Warn().Msg("ops auth middleware: invalid token attempt")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid token",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
