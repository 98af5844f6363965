package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"go.uber.org/zap"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				rid := GetRequestID(r)
				if rid == "" {
					rid = "unknown"
				}
				zap.L().Error("panic in handler",
					zap.String("request_id", rid),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", err),
					zap.ByteString("stack", debug.Stack()))
				apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
