package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, cfg HeadersConfig, req *http.Request) http.Header {
	t.Helper()
	h := NewHeadersMiddleware(cfg).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Header()
}

func TestHeadersMiddleware(t *testing.T) {
	headers := serve(t, DefaultHeadersConfig(), httptest.NewRequest(http.MethodGet, "/api/goals", nil))

	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", headers.Get("Cache-Control"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", headers.Get("Content-Security-Policy"))
	assert.Empty(t, headers.Get("Strict-Transport-Security"))
}

func TestHeadersMiddleware_HSTSOnTLS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com/api/goals", nil)
	req.TLS = &tls.ConnectionState{}

	headers := serve(t, DefaultHeadersConfig(), req)
	assert.Equal(t, "max-age=31536000; includeSubDomains", headers.Get("Strict-Transport-Security"))
}

func TestHeadersMiddleware_EmptyValuesSkipped(t *testing.T) {
	headers := serve(t, HeadersConfig{XContentTypeOptions: "nosniff"}, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	_, hasCSP := headers["Content-Security-Policy"]
	assert.False(t, hasCSP)
}
