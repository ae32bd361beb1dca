package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestOpsAuthMiddleware(t *testing.T) {
	t.Run("valid bearer token passes", func(t *testing.T) {
		m := NewOpsAuthMiddleware("secret-token")
		req := httptest.NewRequest(http.MethodGet, "/v1/stock", nil)
		req.Header.Set("Authorization", "Bearer secret-token")
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		m := NewOpsAuthMiddleware("secret-token")
		req := httptest.NewRequest(http.MethodGet, "/v1/stock", nil)
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		m := NewOpsAuthMiddleware("secret-token")
		req := httptest.NewRequest(http.MethodGet, "/v1/stock", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unconfigured token hides the surface", func(t *testing.T) {
		m := NewOpsAuthMiddleware("")
		req := httptest.NewRequest(http.MethodGet, "/v1/stock", nil)
		req.Header.Set("Authorization", "Bearer anything")
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestWebhookSecretMiddleware(t *testing.T) {
	t.Run("matching secret passes", func(t *testing.T) {
		m := NewWebhookSecretMiddleware("hook-secret")
		req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
		req.Header.Set(secretTokenHeader, "hook-secret")
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		m := NewWebhookSecretMiddleware("hook-secret")
		req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		m := NewWebhookSecretMiddleware("hook-secret")
		req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
		req.Header.Set(secretTokenHeader, "guessed")
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty configuration bypasses verification", func(t *testing.T) {
		m := NewWebhookSecretMiddleware("")
		req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
