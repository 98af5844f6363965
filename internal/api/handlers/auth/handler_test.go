package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtutil "github.com/5w1tchy/shelfbot/internal/security/jwt"
	"github.com/5w1tchy/shelfbot/internal/security/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, plain string) *Handler {
	t.Helper()
	iss, err := jwtutil.New(jwtutil.Config{Secret: []byte(strings.Repeat("z", jwtutil.MinSecretLen)), AccessTTL: time.Hour})
	require.NoError(t, err)
	var hash string
	if plain != "" {
		hash, err = password.Hash(plain)
		require.NoError(t, err)
	}
	return New(iss, hash, nil)
}

func login(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	return rec
}

func TestLogin(t *testing.T) {
	h := newHandler(t, "correct horse battery staple")

	rec := login(h, `{"password":"correct horse battery staple"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := h.issuer.ParseAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, OwnerSubject, claims.Subject)
}

func TestLogin_Failures(t *testing.T) {
	h := newHandler(t, "correct horse battery staple")

	assert.Equal(t, http.StatusUnauthorized, login(h, `{"password":"wrong"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(h, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(h, `not json`).Code)

	disabled := newHandler(t, "")
	assert.Equal(t, http.StatusServiceUnavailable, login(disabled, `{"password":"anything"}`).Code)
}
