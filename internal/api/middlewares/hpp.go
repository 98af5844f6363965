package middlewares

import (
	"net/http"
	"slices"
)

// BookQueryParams are the filters GET /books understands.
var BookQueryParams = []string{"q", "title", "author", "genre", "mood", "year", "after", "before", "limit", "offset"}

// HPP collapses repeated query parameters to their first value and drops
// parameters outside whitelist.
func HPP(whitelist []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				query := r.URL.Query()
				for k, v := range query {
					if !slices.Contains(whitelist, k) {
						query.Del(k)
						continue
					}
					if len(v) > 1 {
						query.Set(k, v[0])
					}
				}
				r.URL.RawQuery = query.Encode()
			}
			next.ServeHTTP(w, r)
		})
	}
}
