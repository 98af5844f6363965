package middlewares

import (
	"net/http"
)

// DefaultMaxBody covers chat messages with history and book JSON. Covers go
// straight to object storage through presigned URLs.
const DefaultMaxBody int64 = 1 << 20

// BodySizeLimit caps request bodies on write methods. limit <= 0 uses
// DefaultMaxBody.
func BodySizeLimit(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
