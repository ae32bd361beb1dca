package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

// secretTokenHeader is the header the chat platform echoes back on every
// webhook delivery when a secret token was registered with setWebhook.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecretMiddleware rejects webhook deliveries that do not carry the
// registered secret token.
type WebhookSecretMiddleware struct {
	secret string
}

func NewWebhookSecretMiddleware(secret string) *WebhookSecretMiddleware {
	return &WebhookSecretMiddleware{secret: secret}
}

func (m *WebhookSecretMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			log.Warn().Msg("webhook secret verification bypassed: WEBHOOK_SECRET is not configured")
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get(secretTokenHeader)
		if token == "" {
			log.Warn().Msg("webhook secret middleware: missing secret token header")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing secret token",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.secret)) != 1 {
			log.Warn().Msg("webhook secret middleware: invalid secret token")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid secret token",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
