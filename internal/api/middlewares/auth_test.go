package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mw "github.com/5w1tchy/shelfbot/internal/api/middlewares"
	jwtutil "github.com/5w1tchy/shelfbot/internal/security/jwt"
)

func newIssuer(t *testing.T, secret string) *jwtutil.Issuer {
	t.Helper()
	iss, err := jwtutil.New(jwtutil.Config{Secret: []byte(strings.Repeat(secret, jwtutil.MinSecretLen)), AccessTTL: time.Hour})
	if err != nil {
		t.Fatalf("jwtutil.New: %v", err)
	}
	return iss
}

func TestRequireAuth(t *testing.T) {
	iss := newIssuer(t, "s")
	good, _, err := iss.SignAccess("owner")
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	forged, _, _ := newIssuer(t, "f").SignAccess("owner")

	var sub string
	h := mw.RequireAuth(iss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, _ = mw.SubjectFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong key", "Bearer " + forged, http.StatusUnauthorized},
		{"ok", "Bearer " + good, http.StatusOK},
		{"lowercase scheme", "bearer " + good, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub = ""
			req := httptest.NewRequest(http.MethodPost, "/books", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusUnauthorized {
				if rec.Header().Get("WWW-Authenticate") == "" {
					t.Error("missing WWW-Authenticate")
				}
				return
			}
			if sub != "owner" {
				t.Errorf("subject = %q", sub)
			}
		})
	}
}
