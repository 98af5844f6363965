package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/shelfbot/internal/api/middlewares"
)

var secHeadersOKHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	mw.SecurityHeaders(false)(secHeadersOKHandler).ServeHTTP(rec, req)

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
		{"Cache-Control", "no-store"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"Strict-Transport-Security", ""},
		{"Cross-Origin-Opener-Policy", ""},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.expected {
			t.Errorf("Header %s: expected %q, got %q", tt.header, tt.expected, got)
		}
	}
}

func TestSecurityHeaders_HSTSOverTLS(t *testing.T) {
	// httptest populates r.TLS for https targets.
	req := httptest.NewRequest(http.MethodGet, "https://shelf.example/books", nil)
	rec := httptest.NewRecorder()
	mw.SecurityHeaders(false)(secHeadersOKHandler).ServeHTTP(rec, req)

	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("Expected HSTS over TLS")
	}
}

func TestSecurityHeaders_Strict(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	mw.SecurityHeaders(true)(secHeadersOKHandler).ServeHTTP(rec, req)

	if rec.Header().Get("Cross-Origin-Resource-Policy") != "same-origin" {
		t.Error("Expected CORP in strict mode")
	}
}
