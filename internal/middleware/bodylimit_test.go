package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	t.Run("small body passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()

		BodyLimit(1024)(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("oversized body is rejected up front", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), 2048)
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(big))
		rec := httptest.NewRecorder()

		BodyLimit(1024)(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}
