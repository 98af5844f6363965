package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	jwtutil "github.com/5w1tchy/shelfbot/internal/security/jwt"
	"go.uber.org/zap"
)

// RequireAuth verifies the Bearer access token with iss and injects its
// subject into the request context.
func RequireAuth(iss *jwtutil.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				unauthorized(w, r, "missing Authorization header")
				return
			}
			tokenStr, err := bearer(raw)
			if err != nil {
				unauthorized(w, r, "invalid Authorization header")
				return
			}
			claims, err := iss.ParseAccess(tokenStr)
			if err != nil {
				zap.L().Debug("rejected access token", zap.String("request_id", GetRequestID(r)), zap.Error(err))
				unauthorized(w, r, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), claims.Subject)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="shelfbot"`)
	apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", detail)
}

func bearer(h string) (string, error) {
	const prefix = "bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", errors.New("no bearer")
	}
	tok := strings.TrimSpace(h[len(prefix):])
	if tok == "" {
		return "", errors.New("empty bearer")
	}
	return tok, nil
}
