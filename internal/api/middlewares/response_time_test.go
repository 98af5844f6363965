package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/5w1tchy/shelfbot/internal/api/middlewares"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResponseTimeMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	mw.ResponseTimeMiddleware(handler).ServeHTTP(rec, req)

	rt := rec.Header().Get("X-Response-Time")
	if _, err := time.ParseDuration(rt); err != nil {
		t.Errorf("X-Response-Time %q is not a duration: %v", rt, err)
	}
}

func TestResponseTimeMiddleware_NoWrite(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodHead, "/books", nil)
	rec := httptest.NewRecorder()
	mw.ResponseTimeMiddleware(handler).ServeHTTP(rec, req)

	if rec.Header().Get("X-Response-Time") == "" {
		t.Error("Expected X-Response-Time header when nothing was written")
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/books/missing", nil)
	rec := httptest.NewRecorder()
	mw.RequestID(mw.AccessLog(zap.New(core))(handler)).ServeHTTP(rec, req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel {
		t.Errorf("Expected warn level for 404, got %s", e.Level)
	}
	fields := e.ContextMap()
	if fields["status"] != int64(http.StatusNotFound) {
		t.Errorf("status field = %v", fields["status"])
	}
	if fields["path"] != "/books/missing" {
		t.Errorf("path field = %v", fields["path"])
	}
	if fields["request_id"] == "" {
		t.Error("Expected request_id field")
	}
}
