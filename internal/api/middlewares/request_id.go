package middlewares

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const ctxKeyRequestID ctxKey = iota

var ridRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// RequestID accepts a well-formed inbound X-Request-ID or mints a
// time-ordered UUID, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if !ridRe.MatchString(rid) {
			rid = genRID()
		}
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, rid))
		r.Header.Set("X-Request-ID", rid)
		w.Header().Set("X-Request-ID", rid)

		next.ServeHTTP(w, r)
	})
}

// GetRequestID extracts the value previously set by RequestID.
func GetRequestID(r *http.Request) string {
	if v, _ := r.Context().Value(ctxKeyRequestID).(string); v != "" {
		return v
	}
	return r.Header.Get("X-Request-ID")
}

// Logger returns log tagged with the request ID.
func Logger(r *http.Request, log *zap.Logger) *zap.Logger {
	if log == nil {
		log = zap.L()
	}
	if rid := GetRequestID(r); rid != "" {
		return log.With(zap.String("request_id", rid))
	}
	return log
}

func genRID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
