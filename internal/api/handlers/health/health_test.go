package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLive(t *testing.T) {
	rec := serve(New(nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec := serve(New(map[string]Check{"db": ok, "redis": ok, "s3": nil}), "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(New(map[string]Check{"db": ok, "redis": down}), "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body.Status)
	assert.Equal(t, map[string]string{"db": "ok", "redis": "connection refused"}, body.Checks)
}

func TestReady_RespectsDeadline(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	h := New(map[string]Check{"db": slow})
	h.timeout = 5 * time.Millisecond
	rec := serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
